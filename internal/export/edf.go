// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package export

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/edf"
)

const (
	edfDigitalMin = math.MinInt16
	edfDigitalMax = math.MaxInt16
	// edfMaxRecordBytes is the data record size recommended by the EDF
	// standard.
	edfMaxRecordBytes = 61440
	// samplesTag prefixes the true sample count kept in each signal's
	// reserved field, since the last data record is padded.
	samplesTag = "samples="
)

// EDFContainer stores a single dataset in an EDF file. The dataset name is
// kept as the recording identification, channel names as signal labels,
// units as physical dimensions, fancy names as transducer types and
// calibration slots in the prefiltering field. The number of samples before
// padding is kept in the reserved field as "samples=<n>".
type EDFContainer struct {
	f               *os.File
	sampleFrequency int
	start           time.Time
	datasets        int
}

// CreateEDF creates an EDF container at path. It satisfies Opener.
func CreateEDF(path string, sampleFrequency int) (Container, error) {
	if sampleFrequency <= 0 {
		return nil, common.Parsef("sample frequency must be positive, got %d", sampleFrequency)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return &EDFContainer{
		f:               f,
		sampleFrequency: sampleFrequency,
		start:           time.Now().UTC().Truncate(time.Second),
	}, nil
}

// CreateDataset writes ds as the signals of the file. EDF holds one set of
// signals per file, so a second dataset is rejected. Samples are split into
// data records of at most one second; the final record is padded by holding
// the last sample.
func (c *EDFContainer) CreateDataset(ds Dataset) error {
	if c.f == nil {
		return errors.New("container is closed")
	}
	if c.datasets > 0 {
		return fmt.Errorf("container already holds a dataset, cannot add %q", ds.Name)
	}

	channels, samples := ds.Data.Rows, ds.Data.Cols
	if len(ds.Channels) != channels {
		return common.Configf("%d channel names for %d channels", len(ds.Channels), channels)
	}
	if len(ds.Units) > 0 && len(ds.Units) != channels {
		return common.Configf("%d units for %d channels", len(ds.Units), channels)
	}

	perRecord := recordSamples(c.sampleFrequency, channels)

	hdr := edf.Header{
		Version:            edf.Version0,
		PatientID:          "X",
		RecordingID:        ds.Name,
		StartTime:          c.start,
		DataRecordDuration: time.Duration(perRecord) * time.Second / time.Duration(c.sampleFrequency),
		SignalCount:        channels,
		Signals:            make([]edf.Signal, channels),
	}
	for ch := range hdr.Signals {
		pmin, pmax, err := physicalRange(ds.Data.Row(ch))
		if err != nil {
			return fmt.Errorf("channel %q: %w", ds.Channels[ch], err)
		}
		hdr.Signals[ch] = edf.Signal{
			Label:             ds.Channels[ch],
			TransducerType:    entry(ds.FancyNames, ch),
			PhysicalDimension: entry(ds.Units, ch),
			PhysicalMin:       pmin,
			PhysicalMax:       pmax,
			DigitalMin:        edfDigitalMin,
			DigitalMax:        edfDigitalMax,
			Prefiltering:      entry(ds.CalibrationSlots, ch),
			SamplesPerRecord:  perRecord,
			Reserved:          samplesTag + strconv.Itoa(samples),
		}
	}

	w, err := edf.Create(c.f, hdr)
	if err != nil {
		return err
	}

	record := make([][]float64, channels)
	for ch := range record {
		record[ch] = make([]float64, perRecord)
	}

	for off := 0; off < samples; off += perRecord {
		for ch := range record {
			row := ds.Data.Row(ch)
			n := copy(record[ch], row[off:])
			for i := n; i < perRecord; i++ {
				record[ch][i] = row[samples-1]
			}
		}
		if err := w.WriteRecord(record); err != nil {
			return fmt.Errorf("record %d: %w", w.Records(), err)
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	c.datasets++
	return nil
}

// Flush commits the file contents to stable storage.
func (c *EDFContainer) Flush() error {
	if c.f == nil {
		return errors.New("container is closed")
	}
	return c.f.Sync()
}

// Close closes the underlying file.
func (c *EDFContainer) Close() error {
	if c.f == nil {
		return nil
	}
	err := c.f.Close()
	c.f = nil
	return err
}

// recordSamples picks the largest divisor of the sample frequency whose data
// record fits the recommended record size, so records cover at most one
// second and their duration is exact.
func recordSamples(sampleFrequency, channels int) int {
	for d := 1; d <= sampleFrequency; d++ {
		if sampleFrequency%d != 0 {
			continue
		}
		n := sampleFrequency / d
		if channels*n*2 <= edfMaxRecordBytes {
			return n
		}
	}
	return 1
}

// physicalRange returns bounds covering every sample that the EDF header
// stores exactly. Bounds are rounded outward, to two decimals when the field
// has room for them and to fewer otherwise. Samples too large for the field
// at any precision give ErrConfig.
func physicalRange(row []float64) (float64, float64, error) {
	lo, hi := row[0], row[0]
	for _, v := range row[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	for decimals := 2; decimals >= 0; decimals-- {
		scale := math.Pow10(decimals)
		l := math.Floor(lo*scale) / scale
		h := math.Ceil(hi*scale) / scale
		if l == h {
			l, h = l-1, h+1
		}
		if edf.PhysicalValueFits(l) && edf.PhysicalValueFits(h) {
			return l, h, nil
		}
	}

	return 0, 0, common.Configf("values %v..%v do not fit the EDF physical range fields", lo, hi)
}

func entry(list []string, i int) string {
	if i < len(list) {
		return list[i]
	}
	return ""
}
