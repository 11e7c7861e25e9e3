// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package hrv_test

import (
	"math"
	"testing"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/hrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nn = []float64{800, 810, 790, 820}

func TestTimeDomain(t *testing.T) {
	tests := []struct {
		metric hrv.Metric
		want   float64
	}{
		{hrv.SDNN, 12.9099},
		{hrv.SDSD, 25.1661},
		{hrv.RMSSD, 21.6025},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			got, err := tt.metric.Compute(nn)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.InDelta(t, tt.want, got[0], 1e-3)
		})
	}
}

func TestTooShort(t *testing.T) {
	for _, m := range []hrv.Metric{hrv.SDNN, hrv.SDSD, hrv.RMSSD, hrv.PSD, hrv.Poincare, hrv.SampleEntropy} {
		_, err := m.Compute([]float64{800})
		assert.ErrorIs(t, err, hrv.ErrSeriesTooShort, m.String())
	}
}

func TestPoincare(t *testing.T) {
	got, err := hrv.Poincare.Compute(nn)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.InDelta(t, 14.5297, got[0], 1e-3)
	assert.InDelta(t, 3.3333, got[1], 1e-3)
	assert.InDelta(t, math.Pi*got[0]*got[1], got[2], 1e-9)
}

func TestSampleEntropy(t *testing.T) {
	t.Run("Periodic", func(t *testing.T) {
		series := make([]float64, 20)
		for i := range series {
			series[i] = 800 + 50*float64(i%2)
		}

		got, err := hrv.SampleEntropy.Compute(series)
		require.NoError(t, err)
		assert.InDelta(t, 0, got[0], 1e-12)
	})

	t.Run("NoMatches", func(t *testing.T) {
		series := []float64{700, 750, 800, 850, 900, 950, 1000}

		got, err := hrv.SampleEntropy.Compute(series)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got[0]))
	})
}

func TestPSD(t *testing.T) {
	// 0.25 Hz respiratory modulation sits in the HF band.
	var series []float64
	var elapsed float64
	for elapsed < 300 {
		v := 1000 + 50*math.Sin(2*math.Pi*0.25*elapsed)
		series = append(series, v)
		elapsed += v / 1000
	}

	got, err := hrv.PSD.Compute(series)
	require.NoError(t, err)
	require.Len(t, got, 6)

	for _, v := range got[:3] {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.InDelta(t, 100, got[3]+got[4]+got[5], 1e-6)
	assert.Greater(t, got[5], 80.0)
	assert.Greater(t, got[2], got[1])
}

func TestPSDRejectsBadIntervals(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = 800
	}
	series[10] = 0

	_, err := hrv.PSD.Compute(series)
	assert.Error(t, err)
}

func TestParseMetrics(t *testing.T) {
	got, err := hrv.ParseMetrics([]string{"SDNN", " rmssd", "sample_entropy"})
	require.NoError(t, err)
	assert.Equal(t, []hrv.Metric{hrv.SDNN, hrv.RMSSD, hrv.SampleEntropy}, got)

	got, err = hrv.ParseMetrics(nil)
	require.NoError(t, err)
	assert.Equal(t, hrv.DefaultMetrics, got)

	_, err = hrv.ParseMetrics([]string{"sdnn", "lomb"})
	assert.ErrorIs(t, err, common.ErrConfig)
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"SD1", "SD2", "Area"}, hrv.Poincare.Columns())
	assert.Equal(t, []string{
		"FFT_abs_low", "FFT_abs_mid", "FFT_abs_high",
		"FFT_rel_low", "FFT_rel_mid", "FFT_rel_high",
	}, hrv.PSD.Columns())
}
