// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/cwbudde/algo-vecmath"
)

// maxLineBytes bounds a single text line; wide recordings have long rows.
const maxLineBytes = 16 * 1024 * 1024

// Matrix is a dense row-major matrix of samples. As read from a recording
// rows are samples and columns are channels; after Transpose rows are
// channels.
type Matrix struct {
	Rows int
	Cols int
	Data []float64
}

// NewMatrix allocates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int) *Matrix {
	return &Matrix{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// Row returns row i as a slice aliasing the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	return m.Data[i*m.Cols : (i+1)*m.Cols]
}

// At returns the value at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	return m.Data[i*m.Cols+j]
}

// ReadMatrixFile reads the sample rows of the recording at path.
func ReadMatrixFile(path string, skip int) (*Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	return ReadMatrix(f, skip)
}

// ReadMatrix skips the first skip lines of r and parses every following
// non-blank line as one row of whitespace separated numbers. All rows must
// have the same number of finite values.
func ReadMatrix(r io.Reader, skip int) (*Matrix, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if err := skipLines(scanner, skip); err != nil {
		return nil, err
	}

	m := &Matrix{}
	lineNo := skip
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		if m.Rows == 0 {
			m.Cols = len(fields)
		} else if len(fields) != m.Cols {
			return nil, common.Parsef("line %d: expected %d values, got %d", lineNo, m.Cols, len(fields))
		}

		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, common.Parsef("line %d: %q is not numeric", lineNo, field)
			}
			m.Data = append(m.Data, v)
		}
		m.Rows++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}

	if m.Rows == 0 {
		return nil, common.Parsef("no sample rows after line %d", skip)
	}

	return m, nil
}

func skipLines(scanner *bufio.Scanner, n int) error {
	for i := 0; i < n; i++ {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read header block: %w", err)
			}
			return common.Parsef("file ends after %d of %d header lines", i, n)
		}
	}
	return nil
}

// SelectColumns returns a matrix holding the columns listed in cols, in that
// order. An empty cols returns m unchanged.
func (m *Matrix) SelectColumns(cols []int) (*Matrix, error) {
	if len(cols) == 0 {
		return m, nil
	}

	for _, col := range cols {
		if col < 0 || col >= m.Cols {
			return nil, common.Configf("column index %d out of range for %d columns", col, m.Cols)
		}
	}

	out := NewMatrix(m.Rows, len(cols))
	for i := 0; i < m.Rows; i++ {
		src, dst := m.Row(i), out.Row(i)
		for j, col := range cols {
			dst[j] = src[col]
		}
	}

	return out, nil
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	out := NewMatrix(m.Cols, m.Rows)
	for i := 0; i < m.Rows; i++ {
		for j := 0; j < m.Cols; j++ {
			out.Data[j*m.Rows+i] = m.At(i, j)
		}
	}
	return out
}

// Scale multiplies every row of the channel-major matrix m by the matching
// entry of multiplier. An empty multiplier leaves m untouched.
func Scale(m *Matrix, multiplier []float64) error {
	if len(multiplier) == 0 {
		return nil
	}
	if len(multiplier) != m.Rows {
		return common.Configf("multiplier has %d entries for %d channels", len(multiplier), m.Rows)
	}

	coeffs := make([]float64, m.Cols)
	for ch, k := range multiplier {
		for i := range coeffs {
			coeffs[i] = k
		}
		vecmath.MulBlockInPlace(m.Row(ch), coeffs)
	}

	return nil
}
