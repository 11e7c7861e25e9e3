// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/recording"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHeader = `# sampleFrequency: 1000.000
# columns: ECG EEG Resp Marker
# fancyNames: "Lead II" "Fz Cz" "Chest belt" "Event"
# units: mV uV a.u. -
# calibrationSlots: c0 c1 c2 c3
# device: BioAmp 3 rev2
0.10 0.20 0.30 0.40
1.10 1.20 1.30 1.40
`

func TestParseHeader(t *testing.T) {
	hdr, err := recording.ParseHeader(strings.NewReader(sampleHeader), config.Settings{}, 6)
	require.NoError(t, err)

	assert.Equal(t, 1000, hdr.SampleFrequency)
	assert.Equal(t, []string{"ECG", "EEG", "Resp", "Marker"}, hdr.Columns)
	assert.Equal(t, []string{"Lead II", "Fz Cz", "Chest belt", "Event"}, hdr.FancyNames)
	assert.Equal(t, []string{"mV", "uV", "a.u.", "-"}, hdr.Units)
	assert.Equal(t, []string{"c0", "c1", "c2", "c3"}, hdr.CalibrationSlots)
	assert.Equal(t, []string{"BioAmp", "3", "rev2"}, hdr.Extra["device"])
	assert.Equal(t, []string{"sampleFrequency", "columns", "fancyNames", "units", "calibrationSlots", "device"}, hdr.Keys)
	assert.Equal(t, 6, hdr.Lines)
	assert.Equal(t, 6, hdr.DataOffset)
	assert.Equal(t, 4, hdr.Channels())

	// Balanced channel lists.
	n := len(hdr.Columns)
	assert.Len(t, hdr.Units, n)
	assert.Len(t, hdr.FancyNames, n)
	assert.Len(t, hdr.CalibrationSlots, n)
}

func TestParseHeaderFiltered(t *testing.T) {
	s := config.Settings{ValidCols: []int{2, 0}}

	hdr, err := recording.ParseHeader(strings.NewReader(sampleHeader), s, 6)
	require.NoError(t, err)

	assert.Equal(t, []string{"Resp", "ECG"}, hdr.Columns)
	assert.Equal(t, []string{"a.u.", "mV"}, hdr.Units)
	assert.Equal(t, []string{"Chest belt", "Lead II"}, hdr.FancyNames)
	assert.Equal(t, []string{"c2", "c0"}, hdr.CalibrationSlots)
}

func TestParseHeaderOverrides(t *testing.T) {
	s := config.Settings{
		ValidCols:    []int{1, 1},
		ChannelNames: []string{"EEG1", "EEG2"},
		Units:        []string{"V", "V"},
	}

	hdr, err := recording.ParseHeader(strings.NewReader(sampleHeader), s, 6)
	require.NoError(t, err)

	assert.Equal(t, []string{"EEG1", "EEG2"}, hdr.Columns)
	assert.Equal(t, []string{"V", "V"}, hdr.Units)
	assert.Equal(t, []string{"Fz Cz", "Fz Cz"}, hdr.FancyNames)
	assert.Equal(t, []string{"c1", "c1"}, hdr.CalibrationSlots)
}

func TestParseHeaderShortBlock(t *testing.T) {
	// Two comment lines followed by non-comment header content.
	doc := "# sampleFrequency: 250\n# columns: A B\ntime A B\n\n\n\n1 2\n"

	hdr, err := recording.ParseHeader(strings.NewReader(doc), config.Settings{}, 6)
	require.NoError(t, err)

	assert.Equal(t, 250, hdr.SampleFrequency)
	assert.Equal(t, 2, hdr.Lines)
	assert.Equal(t, 6, hdr.DataOffset)
	assert.Nil(t, hdr.Units)
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		settings config.Settings
		want     error
	}{
		{
			name: "missing separator",
			doc:  "# sampleFrequency 1000\n# columns: A\n",
			want: common.ErrParse,
		},
		{
			name: "bad frequency",
			doc:  "# sampleFrequency: fast\n# columns: A\n",
			want: common.ErrParse,
		},
		{
			name: "no columns",
			doc:  "# sampleFrequency: 10\n",
			want: common.ErrParse,
		},
		{
			name: "unbalanced units",
			doc:  "# sampleFrequency: 10\n# columns: A B\n# units: mV\n",
			want: common.ErrParse,
		},
		{
			name: "comment block longer than header",
			doc:  "# sampleFrequency: 10\n# columns: A\n# a: 1\n# b: 2\n# c: 3\n# d: 4\n# e: 5\n",
			want: common.ErrParse,
		},
		{
			name:     "column out of range",
			doc:      "# sampleFrequency: 10\n# columns: A B\n",
			settings: config.Settings{ValidCols: []int{5}},
			want:     common.ErrConfig,
		},
		{
			name:     "override length",
			doc:      "# sampleFrequency: 10\n# columns: A B\n",
			settings: config.Settings{ValidCols: []int{0, 1}, ChannelNames: []string{"X"}},
			want:     common.ErrConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := recording.ParseHeader(strings.NewReader(tt.doc), tt.settings, 6)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.out")
	require.NoError(t, os.WriteFile(path, []byte(sampleHeader), 0o644))

	hdr, err := recording.ReadHeader(path, config.Settings{ValidCols: []int{3}}, 6)
	require.NoError(t, err)
	assert.Equal(t, []string{"Marker"}, hdr.Columns)

	_, err = recording.ReadHeader(filepath.Join(t.TempDir(), "missing.out"), config.Settings{}, 6)
	require.Error(t, err)
}
