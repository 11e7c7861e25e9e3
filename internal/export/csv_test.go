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
	"strings"
	"testing"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCSV(t *testing.T) {
	src := writeRecording(t, "0.1 0.2 0.3 0.4\n1.1 1.2 1.3 1.4\n2.1 2.2 2.3 2.4\n")

	cfg := config.Default()
	cfg.Output.ValidCols = []int{1, 3}
	hdr := parse(t, src, cfg.Output)

	dst := filepath.Join(t.TempDir(), "rec.csv")
	require.NoError(t, export.ToCSV(src, dst, hdr, cfg))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "EEG, Marker", lines[0])

	rows := lines[1:]
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, 1, strings.Count(row, ","), row)
		assert.Equal(t, []string{
			[]string{"0.2", "1.2", "2.2"}[i],
			[]string{"0.4", "1.4", "2.4"}[i],
		}, strings.Split(row, ","))
	}
}

func TestToCSVAllColumns(t *testing.T) {
	src := writeRecording(t, "1 2 3 4\r\n\n5 6 7 8\n")

	cfg := config.Default()
	cfg.CSVSeparator = ";"
	hdr := parse(t, src, cfg.Output)

	dst := filepath.Join(t.TempDir(), "rec.csv")
	require.NoError(t, export.ToCSV(src, dst, hdr, cfg))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "ECG; EEG; Resp; Marker\n1;2;3;4\n5;6;7;8\n", string(data))
}

func TestToCSVShortRow(t *testing.T) {
	src := writeRecording(t, "1 2 3 4\n5 6\n")

	cfg := config.Default()
	cfg.Output.ValidCols = []int{3}
	hdr := parse(t, src, cfg.Output)

	dst := filepath.Join(t.TempDir(), "rec.csv")
	err := export.ToCSV(src, dst, hdr, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrParse)
	assert.Contains(t, err.Error(), "line 8")

	_, err = os.Stat(dst)
	assert.True(t, os.IsNotExist(err), "partial csv should be removed")
}
