// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package edf reads and writes EDF files, the binary time-series container
// produced by the converter.
package edf

import (
	"strconv"
	"time"
)

type Version string

const (
	// Version0 represents the version of the EDF/EDF+ standard.
	Version0 Version = "0"
)

const (
	fixedHeaderBytes  = 256
	signalHeaderBytes = 256
	// maxRecordBytes is the data record size recommended by the EDF standard.
	maxRecordBytes = 61440
	// physicalValueBytes is the width of the physical minimum and maximum.
	physicalValueBytes = 8
)

// Header represents the EDF/EDF+ file header.
type Header struct {
	Version            Version       // Version of the EDF/EDF+ standard (usually "0")
	PatientID          string        // Identification of the patient
	RecordingID        string        // Identification of the recording session
	StartTime          time.Time     // Start date of the recording
	HeaderBytes        int           // Number of bytes in the header
	DataRecordDuration time.Duration // Duration of a single data record
	DataRecords        int           // Number of data records, -1 if unknown
	SignalCount        int           // Number of signals in each data record
	Signals            []Signal      // Details of each signal
}

// Signal represents the characteristics of each signal in the EDF/EDF+ file.
type Signal struct {
	Label             string  // Label of the signal (e.g., EEG Fpz-Cz)
	TransducerType    string  // Type of transducer used
	PhysicalDimension string  // Physical dimension (e.g., uV, mV)
	PhysicalMin       float64 // Minimum physical value
	PhysicalMax       float64 // Maximum physical value
	DigitalMin        int     // Minimum digital value
	DigitalMax        int     // Maximum digital value
	Prefiltering      string  // Pre-filtering information
	SamplesPerRecord  int     // Number of samples in each data record for this signal
	Reserved          string  // Reserved for future use
}

// signalField describes one column of the per-signal header block. The EDF
// layout stores each field for all signals before moving on to the next one.
type signalField struct {
	name   string
	width  int
	format func(s *Signal) string
	parse  func(s *Signal, v string)
}

var signalFields = []signalField{
	{"label", 16,
		func(s *Signal) string { return s.Label },
		func(s *Signal, v string) { s.Label = v }},
	{"transducer type", 80,
		func(s *Signal) string { return s.TransducerType },
		func(s *Signal, v string) { s.TransducerType = v }},
	{"physical dimension", 8,
		func(s *Signal) string { return s.PhysicalDimension },
		func(s *Signal, v string) { s.PhysicalDimension = v }},
	{"physical minimum", 8,
		func(s *Signal) string { return formatPhysicalValue(s.PhysicalMin) },
		func(s *Signal, v string) { s.PhysicalMin = parseFloat(v) }},
	{"physical maximum", 8,
		func(s *Signal) string { return formatPhysicalValue(s.PhysicalMax) },
		func(s *Signal, v string) { s.PhysicalMax = parseFloat(v) }},
	{"digital minimum", 8,
		func(s *Signal) string { return strconv.Itoa(s.DigitalMin) },
		func(s *Signal, v string) { s.DigitalMin = parseInt(v) }},
	{"digital maximum", 8,
		func(s *Signal) string { return strconv.Itoa(s.DigitalMax) },
		func(s *Signal, v string) { s.DigitalMax = parseInt(v) }},
	{"prefiltering", 80,
		func(s *Signal) string { return s.Prefiltering },
		func(s *Signal, v string) { s.Prefiltering = v }},
	{"samples per record", 8,
		func(s *Signal) string { return strconv.Itoa(s.SamplesPerRecord) },
		func(s *Signal, v string) { s.SamplesPerRecord = parseInt(v) }},
	{"reserved", 32,
		func(s *Signal) string { return s.Reserved },
		func(s *Signal, v string) { s.Reserved = v }},
}

// recordBytes returns the size in bytes of one data record.
func (h *Header) recordBytes() int {
	var n int
	for _, sig := range h.Signals {
		n += sig.SamplesPerRecord * 2
	}
	return n
}
