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
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	labelColumn = "file"
	sheetName   = "HRV"
)

// Table holds one labelled row of metric values per analysed series.
type Table struct {
	Columns []string
	Labels  []string
	Rows    [][]float64
}

// NewTable creates an empty table with the given value columns.
func NewTable(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row. It must have one value per column.
func (t *Table) Append(label string, row []float64) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d values for %d columns", len(row), len(t.Columns))
	}
	t.Labels = append(t.Labels, label)
	t.Rows = append(t.Rows, append([]float64(nil), row...))
	return nil
}

// WriteCSV writes the table with a header row. NaN values are left empty.
func (t *Table) WriteCSV(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(append([]string{labelColumn}, t.Columns...)); err != nil {
		return err
	}

	record := make([]string, len(t.Columns)+1)
	for i, row := range t.Rows {
		record[0] = t.Labels[i]
		for j, v := range row {
			record[j+1] = ""
			if !math.IsNaN(v) {
				record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX saves the table as a workbook with a single sheet.
func (t *Table) WriteXLSX(path string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]any, 0, len(t.Columns)+1)
	header = append(header, labelColumn)
	for _, c := range t.Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range t.Rows {
		cells := make([]any, 0, len(row)+1)
		cells = append(cells, t.Labels[i])
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, v)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
