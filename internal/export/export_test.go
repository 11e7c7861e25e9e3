// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/recording"
	"github.com/stretchr/testify/require"
)

// writeRecording writes a recording with a six line header block and
// returns its path.
func writeRecording(t *testing.T, rows string) string {
	t.Helper()

	doc := "# sampleFrequency: 4.000\n" +
		"# columns: ECG EEG Resp Marker\n" +
		"# fancyNames: \"Lead II\" \"Fz Cz\" \"Chest belt\" \"Event\"\n" +
		"# units: mV uV a.u. -\n" +
		"# calibrationSlots: c0 c1 c2 c3\n" +
		"time ECG EEG Resp Marker\n" +
		rows

	path := filepath.Join(t.TempDir(), "rec.out")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func parse(t *testing.T, path string, s config.Settings) *recording.Header {
	t.Helper()

	hdr, err := recording.ReadHeader(path, s, 6)
	require.NoError(t, err)
	return hdr
}

func newMatrix(t *testing.T, path string, skip int) *recording.Matrix {
	t.Helper()

	m, err := recording.ReadMatrixFile(path, skip)
	require.NoError(t, err)
	return m.Transpose()
}
