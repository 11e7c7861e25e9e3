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

	"github.com/OpenPSG/sigconv/internal/common"
)

// Smooth returns the moving average of series over windows of n values.
// The result has len(series)-n+1 values; n <= 1 returns a copy.
func Smooth(series []float64, n int) ([]float64, error) {
	if n <= 1 {
		return append([]float64(nil), series...), nil
	}
	if n > len(series) {
		return nil, fmt.Errorf("%w: smoothing window %d exceeds %d values", ErrSeriesTooShort, n, len(series))
	}

	cum := make([]float64, len(series)+1)
	for i, v := range series {
		cum[i+1] = cum[i] + v
	}

	out := make([]float64, len(series)-n+1)
	for i := range out {
		out[i] = (cum[i+n] - cum[i]) / float64(n)
	}
	return out, nil
}

// Accumulator evaluates a fixed list of metrics over successive series and
// appends one row per series to its table.
type Accumulator struct {
	smooth  int
	metrics []Metric
	table   *Table
}

// NewAccumulator creates an accumulator. Unknown metrics are rejected here
// so that a run never fails half way on a bad name.
func NewAccumulator(ms []Metric, smooth int) (*Accumulator, error) {
	if len(ms) == 0 {
		ms = DefaultMetrics
	}
	if smooth < 0 {
		return nil, common.Configf("smoothing window must not be negative, got %d", smooth)
	}

	var columns []string
	for _, m := range ms {
		if !m.valid() {
			return nil, common.Configf("unknown metric %d", int(m))
		}
		columns = append(columns, m.Columns()...)
	}

	return &Accumulator{
		smooth:  smooth,
		metrics: append([]Metric(nil), ms...),
		table:   NewTable(columns),
	}, nil
}

// Compute evaluates every metric over series and appends the row, labelled
// with label, to the table. The row is returned as well.
func (a *Accumulator) Compute(label string, series []float64) ([]float64, error) {
	series, err := Smooth(series, a.smooth)
	if err != nil {
		return nil, err
	}

	row := make([]float64, 0, len(a.table.Columns))
	for _, m := range a.metrics {
		values, err := m.Compute(series)
		if err != nil {
			return nil, err
		}
		row = append(row, values...)
	}

	if err := a.table.Append(label, row); err != nil {
		return nil, err
	}
	return row, nil
}

// Table returns the accumulated results.
func (a *Accumulator) Table() *Table {
	return a.table
}
