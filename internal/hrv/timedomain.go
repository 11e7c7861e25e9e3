// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package hrv

import (
	"errors"
	"math"

	stats "github.com/cwbudde/algo-dsp/stats/time"
)

// ErrSeriesTooShort is returned when a series has too few intervals for a
// metric.
var ErrSeriesTooShort = errors.New("series too short")

// sampleStd returns the standard deviation with Bessel's correction.
func sampleStd(x []float64) (float64, error) {
	n := len(x)
	if n < 2 {
		return 0, ErrSeriesTooShort
	}
	s := stats.Calculate(x)
	return math.Sqrt(s.Variance * float64(n) / float64(n-1)), nil
}

// populationStd returns the standard deviation without correction.
func populationStd(x []float64) float64 {
	return math.Sqrt(stats.Calculate(x).Variance)
}

func diffs(nn []float64) []float64 {
	if len(nn) < 2 {
		return nil
	}
	d := make([]float64, len(nn)-1)
	for i := range d {
		d[i] = nn[i+1] - nn[i]
	}
	return d
}

// sdnn is the standard deviation of the NN intervals.
func sdnn(nn []float64) (float64, error) {
	return sampleStd(nn)
}

// sdsd is the standard deviation of successive differences.
func sdsd(nn []float64) (float64, error) {
	return sampleStd(diffs(nn))
}

// rmssd is the root mean square of successive differences.
func rmssd(nn []float64) (float64, error) {
	d := diffs(nn)
	if len(d) == 0 {
		return 0, ErrSeriesTooShort
	}
	return stats.RMS(d), nil
}
