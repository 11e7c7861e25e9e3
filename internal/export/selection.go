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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"github.com/OpenPSG/sigconv/internal/recording"
)

// SignalPlantVersion is the viewer version the selection file declares.
const SignalPlantVersion = "1.2.7.3"

var selectionTemplate = template.Must(template.New("sel").Parse(
	"%SignalPlant ver.:{{.Version}}\n" +
		"%Selection export from file:\n" +
		"%{{.CSVName}}\n" +
		"%SAMPLING_FREQ [Hz]:{{.SampleFrequency}}\n" +
		"%CHANNELS_VALIDITY-----------------------\n" +
		"{{range .Channels}}%{{.}}\t1\n{{end}}" +
		"%----------------------------------------\n" +
		"%Structure:\n" +
		"%Index[-], Start[sample], End[sample], Group[-], Validity[-], Channel Index[-], Channel name[string], Info[string]\n" +
		"%Divided by: ASCII char no. 9\n" +
		"%DATA------------------------------------\n" +
		"1\t1\t2\t0\t0.00000\t1\t%time\t1\n",
))

// ToSelection writes the selection file for the CSV export csvName. It marks
// every channel of hdr valid and carries one placeholder annotation spanning
// samples 1 to 2.
func ToSelection(w io.Writer, hdr *recording.Header, csvName string) error {
	return selectionTemplate.Execute(w, struct {
		Version         string
		CSVName         string
		SampleFrequency int
		Channels        []string
	}{
		Version:         SignalPlantVersion,
		CSVName:         csvName,
		SampleFrequency: hdr.SampleFrequency,
		Channels:        hdr.Columns,
	})
}

// WriteSelection writes <dir>/<name>.sel describing <name>.csv.
func WriteSelection(dir, name string, hdr *recording.Header) (err error) {
	path := filepath.Join(dir, name+".sel")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := ToSelection(f, hdr, name+".csv"); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}
