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
	"fmt"

	"github.com/cwbudde/algo-dsp/dsp/spectrum"
	"github.com/cwbudde/algo-dsp/dsp/window"
	stats "github.com/cwbudde/algo-dsp/stats/time"
)

const (
	// resampleRate is the rate of the evenly sampled tachogram, in Hz.
	resampleRate = 4.0
	// welchSegment is the Welch segment length in resampled points.
	welchSegment = 256
	// minSegment is the shortest tachogram a spectrum is estimated from.
	minSegment = 16
)

// band is a half-open frequency interval in Hz.
type band struct {
	lo, hi float64
}

var (
	bandVLF = band{0, 0.04}
	bandLF  = band{0.04, 0.15}
	bandHF  = band{0.15, 0.4}
)

// welchBands returns the absolute power (ms^2) of the VLF, LF and HF bands
// followed by their share of the total in percent.
func welchBands(nn []float64) ([]float64, error) {
	tachogram, err := resample(nn, resampleRate)
	if err != nil {
		return nil, err
	}

	freqs, psd, err := welch(tachogram, resampleRate)
	if err != nil {
		return nil, err
	}

	df := resampleRate / float64(min(welchSegment, len(tachogram)))

	abs := make([]float64, 3)
	for i, b := range []band{bandVLF, bandLF, bandHF} {
		for k, f := range freqs {
			if f >= b.lo && f < b.hi {
				abs[i] += psd[k] * df
			}
		}
	}

	total := abs[0] + abs[1] + abs[2]
	out := append([]float64(nil), abs...)
	for _, p := range abs {
		rel := 0.0
		if total > 0 {
			rel = p / total * 100
		}
		out = append(out, rel)
	}

	return out, nil
}

// resample linearly interpolates the NN series, placed at the cumulative
// beat times, onto an even grid of the given rate.
func resample(nn []float64, rate float64) ([]float64, error) {
	if len(nn) < 2 {
		return nil, ErrSeriesTooShort
	}

	t := make([]float64, len(nn))
	var elapsed float64
	for i, v := range nn {
		if v <= 0 {
			return nil, fmt.Errorf("interval %d is not positive: %v", i, v)
		}
		elapsed += v / 1000
		t[i] = elapsed
	}

	n := int((t[len(t)-1]-t[0])*rate) + 1
	if n < minSegment {
		return nil, fmt.Errorf("%w: %d resampled points, need %d", ErrSeriesTooShort, n, minSegment)
	}

	out := make([]float64, n)
	j := 0
	for i := range out {
		x := t[0] + float64(i)/rate
		for j < len(t)-2 && t[j+1] < x {
			j++
		}
		frac := (x - t[j]) / (t[j+1] - t[j])
		out[i] = nn[j] + frac*(nn[j+1]-nn[j])
	}

	return out, nil
}

// welch estimates the one-sided power spectral density of x with Hann
// windowed, half overlapping segments. Only bins up to the HF band edge are
// evaluated, each with a Goertzel filter.
func welch(x []float64, rate float64) ([]float64, []float64, error) {
	size := min(welchSegment, len(x))
	step := size / 2

	coeffs := window.Generate(window.TypeHann, size, window.WithPeriodic())
	var norm float64
	for _, w := range coeffs {
		norm += w * w
	}
	norm *= rate

	bins := int(bandHF.hi*float64(size)/rate) + 1
	freqs := make([]float64, bins)
	for k := range freqs {
		freqs[k] = float64(k) * rate / float64(size)
	}

	bank, err := spectrum.NewMultiGoertzel(freqs, rate)
	if err != nil {
		return nil, nil, err
	}

	psd := make([]float64, bins)
	segment := make([]float64, size)
	segments := 0
	for start := 0; start+size <= len(x); start += step {
		copy(segment, x[start:start+size])

		mean := stats.DC(segment)
		for i := range segment {
			segment[i] = (segment[i] - mean) * coeffs[i]
		}

		bank.Reset()
		bank.ProcessBlock(segment)
		for k, p := range bank.Powers() {
			scale := 2.0
			if k == 0 {
				scale = 1
			}
			psd[k] += scale * p / norm
		}
		segments++
	}

	for k := range psd {
		psd[k] /= float64(segments)
	}

	return freqs, psd, nil
}
