// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config_test

import (
	"bytes"
	"testing"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, doc string) (config.Config, error) {
	t.Helper()

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(doc)))

	return config.Load(v)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, config.FormatEDF, cfg.Format)
	assert.Equal(t, "*.out", cfg.Pattern)
	assert.Equal(t, ",", cfg.CSVSeparator)
	assert.Equal(t, 6, cfg.HeaderSize)
	assert.Equal(t, "RAW", cfg.DataCache)
	assert.Empty(t, cfg.Output.ValidCols)
}

func TestLoadFile(t *testing.T) {
	cfg, err := loadYAML(t, `
format: csv
csv_separator: ";"
output:
  valid_cols: [2, 0]
  channel_names: [ECG, Resp]
  units: [mV, a.u.]
  multiplier: [1000, 0.5]
`)
	require.NoError(t, err)

	assert.Equal(t, config.FormatCSV, cfg.Format)
	assert.Equal(t, ";", cfg.CSVSeparator)
	assert.Equal(t, []int{2, 0}, cfg.Output.ValidCols)
	assert.Equal(t, []string{"ECG", "Resp"}, cfg.Output.ChannelNames)
	assert.Equal(t, []string{"mV", "a.u."}, cfg.Output.Units)
	assert.Equal(t, []float64{1000, 0.5}, cfg.Output.Multiplier)
}

func TestLoadH5Alias(t *testing.T) {
	cfg, err := loadYAML(t, "format: h5\n")
	require.NoError(t, err)
	assert.Equal(t, config.FormatEDF, cfg.Format)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "channel names length",
			doc:  "output:\n  valid_cols: [0, 1]\n  channel_names: [A]\n",
			want: "channel_names must have one entry per selected column (2)",
		},
		{
			name: "units without selection",
			doc:  "output:\n  units: [mV]\n",
			want: "units must have one entry per selected column (0)",
		},
		{
			name: "multiplier length",
			doc:  "output:\n  valid_cols: [0]\n  multiplier: [1, 2]\n",
			want: "multiplier",
		},
		{
			name: "negative column",
			doc:  "output:\n  valid_cols: [-1]\n",
			want: "greater than or equal to 0",
		},
		{
			name: "header size",
			doc:  "header_size: 0\n",
			want: "header_size",
		},
		{
			name: "unknown format",
			doc:  "format: parquet\n",
			want: "unknown output format",
		},
		{
			name: "log level",
			doc:  "logging:\n  level: loud\n",
			want: "level must be one of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadYAML(t, tt.doc)
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrConfig)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettingsValidateMultiplierWithoutSelection(t *testing.T) {
	// Checked later against the channel count of each file.
	s := config.Settings{Multiplier: []float64{2, 3}}
	require.NoError(t, s.Validate())
}
