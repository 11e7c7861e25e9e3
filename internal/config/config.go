// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package config holds the output settings shared by every conversion step.
// A Config is built once per run and passed by value; nothing mutates it
// after Load returns.
package config

import (
	"fmt"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/spf13/viper"
)

// Format selects the export path for a batch.
type Format string

const (
	// FormatEDF writes the binary container.
	FormatEDF Format = "edf"
	// FormatCSV writes a CSV file and its companion selection file.
	FormatCSV Format = "csv"
)

// ParseFormat normalizes a user supplied format name. "h5" is accepted as
// an alias of the binary container format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "edf", "h5":
		return FormatEDF, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", common.Configf("unknown output format %q (want edf or csv)", s)
	}
}

// Settings selects, reorders, renames and scales the channels of a
// recording.
type Settings struct {
	// ValidCols lists the zero-based columns to keep, in output order. Empty
	// keeps every column in file order.
	ValidCols []int `mapstructure:"valid_cols" validate:"dive,gte=0"`
	// ChannelNames replaces the selected channel names verbatim.
	ChannelNames []string `mapstructure:"channel_names"`
	// Units replaces the selected units verbatim.
	Units []string `mapstructure:"units"`
	// Multiplier scales each selected channel on the binary path only.
	Multiplier []float64 `mapstructure:"multiplier"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// Config is the complete conversion configuration.
type Config struct {
	Output       Settings      `mapstructure:"output"`
	Format       Format        `mapstructure:"format" validate:"oneof=edf csv"`
	Pattern      string        `mapstructure:"pattern" validate:"required"`
	CSVSeparator string        `mapstructure:"csv_separator" validate:"required"`
	HeaderSize   int           `mapstructure:"header_size" validate:"gte=1"`
	DataCache    string        `mapstructure:"data_cache" validate:"required,max=80"`
	Logging      LoggingConfig `mapstructure:"logging"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Format:       FormatEDF,
		Pattern:      "*.out",
		CSVSeparator: ",",
		HeaderSize:   6,
		DataCache:    "RAW",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// SetDefaults registers the defaults with v so that environment variables
// and config files override them key by key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("format", string(d.Format))
	v.SetDefault("pattern", d.Pattern)
	v.SetDefault("csv_separator", d.CSVSeparator)
	v.SetDefault("header_size", d.HeaderSize)
	v.SetDefault("data_cache", d.DataCache)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("output.valid_cols", []int{})
	v.SetDefault("output.channel_names", []string{})
	v.SetDefault("output.units", []string{})
	v.SetDefault("output.multiplier", []float64{})
}

// Load builds a validated Config from v.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	format, err := ParseFormat(string(cfg.Format))
	if err != nil {
		return Config{}, err
	}
	cfg.Format = format

	if cfg.Pattern == "" {
		cfg.Pattern = Default().Pattern
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
