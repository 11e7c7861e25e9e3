// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package recording parses the text recordings produced by the acquisition
// software: a block of "# key: value" header lines followed by one
// whitespace separated row of samples per line.
package recording

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
)

const (
	commentMarker = "# "
	keySeparator  = ": "
	// fancyNameSeparator cannot occur in a header line.
	fancyNameSeparator = "\x00"
)

// Well known header keys.
const (
	KeySampleFrequency  = "sampleFrequency"
	KeyFancyNames       = "fancyNames"
	KeyColumns          = "columns"
	KeyUnits            = "units"
	KeyCalibrationSlots = "calibrationSlots"
)

// Header is the parsed header block of one recording.
type Header struct {
	SampleFrequency  int      // Samples per second, integer part only
	Columns          []string // Raw channel identifiers
	FancyNames       []string // Human readable channel names
	Units            []string // Unit per channel
	CalibrationSlots []string // Calibration identifier per channel

	// Extra holds every other key as its space separated tokens. Keys keeps
	// the order in which all keys appeared.
	Extra map[string][]string
	Keys  []string

	Lines      int // Comment lines parsed
	DataOffset int // Lines to skip before the first sample row
}

// Channels returns the number of channels described by the header.
func (h *Header) Channels() int {
	return len(h.Columns)
}

// ReadHeader parses the header of the recording at path.
func ReadHeader(path string, s config.Settings, headerSize int) (*Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording: %w", err)
	}
	defer f.Close()

	return ParseHeader(f, s, headerSize)
}

// ParseHeader reads "# key: value" lines from r until the first line that is
// not a comment, then applies the column selection from s. headerSize is
// the fixed number of lines that precede the sample rows; a comment block
// longer than that is rejected.
func ParseHeader(r io.Reader, s config.Settings, headerSize int) (*Header, error) {
	hdr := &Header{
		SampleFrequency: -1,
		Extra:           make(map[string][]string),
		DataOffset:      headerSize,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if !strings.HasPrefix(line, commentMarker) {
			break
		}
		hdr.Lines++

		if err := hdr.parseLine(line); err != nil {
			return nil, fmt.Errorf("header line %d: %w", hdr.Lines, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if hdr.Lines > headerSize {
		return nil, common.Parsef("header has %d comment lines, expected at most %d", hdr.Lines, headerSize)
	}
	if hdr.SampleFrequency < 0 {
		return nil, common.Parsef("header has no %s entry", KeySampleFrequency)
	}
	if hdr.Columns == nil {
		return nil, common.Parsef("header has no %s entry", KeyColumns)
	}

	for key, list := range map[string][]string{
		KeyFancyNames:       hdr.FancyNames,
		KeyUnits:            hdr.Units,
		KeyCalibrationSlots: hdr.CalibrationSlots,
	} {
		if list != nil && len(list) != len(hdr.Columns) {
			return nil, common.Parsef("header lists %d %s for %d columns", len(list), key, len(hdr.Columns))
		}
	}

	if err := hdr.filter(s); err != nil {
		return nil, err
	}

	return hdr, nil
}

func (h *Header) parseLine(line string) error {
	key, value, ok := strings.Cut(strings.TrimLeft(line, "# "), keySeparator)
	if !ok {
		return common.Parsef("missing %q separator in %q", keySeparator, line)
	}
	h.Keys = append(h.Keys, key)

	switch key {
	case KeySampleFrequency:
		whole, _, _ := strings.Cut(value, ".")
		fs, err := strconv.Atoi(strings.TrimSpace(whole))
		if err != nil {
			return common.Parsef("invalid sample frequency %q", value)
		}
		h.SampleFrequency = fs
	case KeyFancyNames:
		h.FancyNames = parseFancyNames(value)
	case KeyColumns:
		h.Columns = strings.Split(value, " ")
	case KeyUnits:
		h.Units = strings.Split(value, " ")
	case KeyCalibrationSlots:
		h.CalibrationSlots = strings.Split(value, " ")
	default:
		h.Extra[key] = strings.Split(value, " ")
	}

	return nil
}

// parseFancyNames splits `"A B" "C D"` into ["A B", "C D"].
func parseFancyNames(value string) []string {
	value = strings.ReplaceAll(value, `" "`, fancyNameSeparator)
	value = strings.ReplaceAll(value, `"`, "")
	return strings.Split(value, fancyNameSeparator)
}

// filter narrows and reorders the channel lists to s.ValidCols. Columns and
// units take the overrides from s verbatim when given.
func (h *Header) filter(s config.Settings) error {
	if len(s.ValidCols) == 0 {
		return nil
	}

	var err error
	if h.Columns, err = Select(h.Columns, s.ValidCols, s.ChannelNames); err != nil {
		return fmt.Errorf("columns: %w", err)
	}
	if h.Units != nil || len(s.Units) > 0 {
		if h.Units, err = Select(h.Units, s.ValidCols, s.Units); err != nil {
			return fmt.Errorf("units: %w", err)
		}
	}
	if h.FancyNames != nil {
		if h.FancyNames, err = Select(h.FancyNames, s.ValidCols, nil); err != nil {
			return fmt.Errorf("fancy names: %w", err)
		}
	}
	if h.CalibrationSlots != nil {
		if h.CalibrationSlots, err = Select(h.CalibrationSlots, s.ValidCols, nil); err != nil {
			return fmt.Errorf("calibration slots: %w", err)
		}
	}

	return nil
}
