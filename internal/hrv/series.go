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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
)

// ReadSeries reads one column of a CSV export. column is matched against the
// header names, or taken as a zero-based index when it is a number.
func ReadSeries(r io.Reader, column string, comma rune) ([]float64, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	idx := -1
	for i, name := range header {
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		n, err := strconv.Atoi(column)
		if err != nil || n < 0 || n >= len(header) {
			return nil, common.Configf("column %q not found in %v", column, header)
		}
		idx = n
	}

	var series []float64
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.Parsef("%v", err)
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			line, _ := cr.FieldPos(idx)
			return nil, common.Parsef("line %d: %q is not numeric", line, record[idx])
		}
		series = append(series, v)
	}

	return series, nil
}
