// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package hrv computes heart rate variability metrics over a series of NN
// intervals in milliseconds and collects them, one row per series, into a
// table.
package hrv

import (
	"fmt"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
)

// Metric is one supported HRV measure.
type Metric int

const (
	SDNN Metric = iota
	SDSD
	RMSSD
	PSD
	Poincare
	SampleEntropy
)

type metricInfo struct {
	name    string
	columns []string
	compute func(nn []float64) ([]float64, error)
}

var metrics = map[Metric]metricInfo{
	SDNN:  {"sdnn", []string{"SDNN"}, single(sdnn)},
	SDSD:  {"sdsd", []string{"SDSD"}, single(sdsd)},
	RMSSD: {"rmssd", []string{"RMSSD"}, single(rmssd)},
	PSD: {"psd", []string{
		"FFT_abs_low", "FFT_abs_mid", "FFT_abs_high",
		"FFT_rel_low", "FFT_rel_mid", "FFT_rel_high",
	}, welchBands},
	Poincare:      {"poincare", []string{"SD1", "SD2", "Area"}, poincare},
	SampleEntropy: {"sample_entropy", []string{"Entropy"}, single(sampleEntropy)},
}

// DefaultMetrics is used when no metric is requested.
var DefaultMetrics = []Metric{SDNN}

func single(f func([]float64) (float64, error)) func([]float64) ([]float64, error) {
	return func(nn []float64) ([]float64, error) {
		v, err := f(nn)
		if err != nil {
			return nil, err
		}
		return []float64{v}, nil
	}
}

func (m Metric) valid() bool {
	_, ok := metrics[m]
	return ok
}

func (m Metric) String() string {
	if info, ok := metrics[m]; ok {
		return info.name
	}
	return fmt.Sprintf("Metric(%d)", int(m))
}

// Columns returns the names of the values m contributes to a result row.
func (m Metric) Columns() []string {
	return append([]string(nil), metrics[m].columns...)
}

// Compute evaluates m over the NN series.
func (m Metric) Compute(nn []float64) ([]float64, error) {
	info, ok := metrics[m]
	if !ok {
		return nil, common.Configf("unknown metric %d", int(m))
	}

	values, err := info.compute(nn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", info.name, err)
	}
	return values, nil
}

// ParseMetric resolves a metric by name, ignoring case.
func ParseMetric(name string) (Metric, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for m, info := range metrics {
		if info.name == name {
			return m, nil
		}
	}
	return 0, common.Configf("unknown metric %q", name)
}

// ParseMetrics resolves every name, failing on the first unknown one. No
// names selects DefaultMetrics.
func ParseMetrics(names []string) ([]Metric, error) {
	if len(names) == 0 {
		return append([]Metric(nil), DefaultMetrics...), nil
	}

	out := make([]Metric, 0, len(names))
	for _, name := range names {
		m, err := ParseMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
