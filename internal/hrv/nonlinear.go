// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package hrv

import "math"

const (
	entropyDimension = 2
	entropyTolerance = 0.2 // times the series standard deviation
)

// poincare returns SD1, SD2 and the area of the fitted ellipse of the
// Poincaré plot of successive intervals.
func poincare(nn []float64) ([]float64, error) {
	if len(nn) < 3 {
		return nil, ErrSeriesTooShort
	}

	minus := make([]float64, len(nn)-1)
	plus := make([]float64, len(nn)-1)
	for i := range minus {
		minus[i] = nn[i+1] - nn[i]
		plus[i] = nn[i+1] + nn[i]
	}

	sd1 := populationStd(minus) / math.Sqrt2
	sd2 := populationStd(plus) / math.Sqrt2

	return []float64{sd1, sd2, math.Pi * sd1 * sd2}, nil
}

// sampleEntropy returns SampEn(2, 0.2*std). It is NaN when no template of
// either length matches, which happens for short or strictly monotonic
// series.
func sampleEntropy(nn []float64) (float64, error) {
	if len(nn) <= entropyDimension+1 {
		return 0, ErrSeriesTooShort
	}

	std, err := sampleStd(nn)
	if err != nil {
		return 0, err
	}
	r := entropyTolerance * std

	// Both template lengths use the same N-m starting points.
	n := len(nn) - entropyDimension
	var b, a int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !within(nn[i:i+entropyDimension], nn[j:j+entropyDimension], r) {
				continue
			}
			b++
			if math.Abs(nn[i+entropyDimension]-nn[j+entropyDimension]) <= r {
				a++
			}
		}
	}

	if a == 0 || b == 0 {
		return math.NaN(), nil
	}
	return -math.Log(float64(a) / float64(b)), nil
}

// within reports whether the Chebyshev distance of x and y is at most r.
func within(x, y []float64, r float64) bool {
	for i := range x {
		if math.Abs(x[i]-y[i]) > r {
			return false
		}
	}
	return true
}
