// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Writer writes EDF files.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	dataRecords int // Number of data records written so far.
}

// Create creates a new EDF writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	if hdr.SignalCount != len(hdr.Signals) {
		return nil, fmt.Errorf("signal count %d does not match %d signal headers", hdr.SignalCount, len(hdr.Signals))
	}
	if hdr.DataRecordDuration <= 0 {
		return nil, fmt.Errorf("data record duration must be positive, got %s", hdr.DataRecordDuration)
	}
	if size := hdr.recordBytes(); size > maxRecordBytes {
		return nil, fmt.Errorf("data record too large: %d bytes, max is %d bytes", size, maxRecordBytes)
	}
	for i, sig := range hdr.Signals {
		if !PhysicalValueFits(sig.PhysicalMin) || !PhysicalValueFits(sig.PhysicalMax) {
			return nil, fmt.Errorf("signal %d: physical range %v..%v does not fit the header", i, sig.PhysicalMin, sig.PhysicalMax)
		}
	}

	hdr.DataRecords = -1 // Unknown number of data records (at this time).
	hdr.Signals = append([]Signal(nil), hdr.Signals...)

	ew := &Writer{w: w, hdr: &hdr}

	// Write the initial header
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the EDF file by updating the header with the total number of data records.
// The underlying writer is left open.
func (ew *Writer) Close() error {
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}

	// Leave the offset at the end of the data so further writes append.
	if _, err := ew.w.Seek(0, io.SeekEnd); err != nil {
		return fmt.Errorf("error seeking to end of data: %w", err)
	}

	return nil
}

// Records returns the number of data records written so far.
func (ew *Writer) Records() int {
	return ew.dataRecords
}

// WriteRecord writes a single data record to the EDF file.
func (ew *Writer) WriteRecord(signals [][]float64) error {
	if len(signals) != ew.hdr.SignalCount {
		return fmt.Errorf("expected %d signals, got %d", ew.hdr.SignalCount, len(signals))
	}

	for i, signal := range signals {
		if want := ew.hdr.Signals[i].SamplesPerRecord; len(signal) != want {
			return fmt.Errorf("signal %d: expected %d samples, got %d", i, want, len(signal))
		}
		for j, v := range signal {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("signal %d: sample %d is not finite", i, j)
			}
		}
	}

	writer := bufio.NewWriter(ew.w)

	buf := make([]byte, 2)
	for i, signal := range ew.hdr.Signals {
		for _, sample := range signals[i] {
			digital := convertPhysicalToDigital(sample, signal.PhysicalMin, signal.PhysicalMax, signal.DigitalMin, signal.DigitalMax)
			binary.LittleEndian.PutUint16(buf, uint16(digital))
			if _, err := writer.Write(buf); err != nil {
				return fmt.Errorf("error writing sample data: %w", err)
			}
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("error writing sample data: %w", err)
	}

	ew.dataRecords++
	return nil
}

func (ew *Writer) writeHeader() error {
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}

	ew.hdr.HeaderBytes = fixedHeaderBytes + ew.hdr.SignalCount*signalHeaderBytes

	writer := bufio.NewWriter(ew.w)

	fixed := []struct {
		value string
		width int
	}{
		{string(ew.hdr.Version), 8},
		{ew.hdr.PatientID, 80},
		{ew.hdr.RecordingID, 80},
		{ew.hdr.StartTime.Format("02.01.06"), 8},
		{ew.hdr.StartTime.Format("15.04.05"), 8},
		{strconv.Itoa(ew.hdr.HeaderBytes), 8},
		{"", 44},
		{strconv.Itoa(ew.hdr.DataRecords), 8},
		{formatDuration(ew.hdr.DataRecordDuration.Seconds()), 8},
		{strconv.Itoa(ew.hdr.SignalCount), 4},
	}
	for _, f := range fixed {
		if _, err := writer.WriteString(fit(f.value, f.width)); err != nil {
			return err
		}
	}

	for _, field := range signalFields {
		for i := range ew.hdr.Signals {
			if _, err := writer.WriteString(fit(field.format(&ew.hdr.Signals[i]), field.width)); err != nil {
				return err
			}
		}
	}

	return writer.Flush()
}

// fit left-justifies s in a field of the given width, truncating if needed.
func fit(s string, width int) string {
	if len(s) > width {
		s = s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}

// convertPhysicalToDigital converts a physical value to a digital value using the calibration factors.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin {
		return 0 // Avoid division by zero
	}
	digital := math.Round(((physical-pmin)*float64(dmax-dmin))/(pmax-pmin) + float64(dmin))
	digital = math.Max(float64(dmin), math.Min(float64(dmax), digital))
	return int16(digital)
}

// formatPhysicalValue renders val in the shortest form, dropping decimals
// until it fits the 8 character field.
func formatPhysicalValue(val float64) string {
	s := strconv.FormatFloat(val, 'f', -1, 64)
	for prec := 7; len(s) > physicalValueBytes && prec >= 0; prec-- {
		s = strconv.FormatFloat(val, 'f', prec, 64)
	}
	return s
}

// PhysicalValueFits reports whether val is written to the header exactly,
// without losing decimals or digits.
func PhysicalValueFits(val float64) bool {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return false
	}
	return len(strconv.FormatFloat(val, 'f', -1, 64)) <= physicalValueBytes
}

func formatDuration(seconds float64) string {
	s := strconv.FormatFloat(seconds, 'f', -1, 64)
	if len(s) > 8 {
		prec := max(0, 8-len(strconv.Itoa(int(seconds)))-1)
		s = strconv.FormatFloat(seconds, 'f', prec, 64)
	}
	return s
}
