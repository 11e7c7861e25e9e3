// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/hrv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func hrvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hrv",
		Short: "Compute heart rate variability metrics",
		Long: `Compute heart rate variability metrics over one column of NN intervals,
in milliseconds, from each converted CSV file. Every input contributes one
row to the results table.

Available metrics: sdnn, sdsd, rmssd, psd, poincare, sample_entropy.`,
		RunE: runHRV,
	}

	cmd.Flags().StringSliceP("input", "i", nil, "CSV files to analyse")
	cmd.Flags().String("column", "", "column holding the NN intervals, by name or index")
	cmd.Flags().StringSlice("metrics", []string{"sdnn"}, "metrics to compute (comma-separated)")
	cmd.Flags().Int("smooth", 0, "moving average window applied before analysis")
	cmd.Flags().StringP("output", "o", "", "results file (.xlsx or .csv, default: CSV on stdout)")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("column")

	return cmd
}

func runHRV(cmd *cobra.Command, _ []string) error {
	inputs, _ := cmd.Flags().GetStringSlice("input")
	column, _ := cmd.Flags().GetString("column")
	names, _ := cmd.Flags().GetStringSlice("metrics")
	smooth, _ := cmd.Flags().GetInt("smooth")
	output, _ := cmd.Flags().GetString("output")

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	comma, _ := utf8.DecodeRuneInString(cfg.CSVSeparator)

	metrics, err := hrv.ParseMetrics(names)
	if err != nil {
		return err
	}
	acc, err := hrv.NewAccumulator(metrics, smooth)
	if err != nil {
		return err
	}

	for _, path := range inputs {
		if err := cmd.Context().Err(); err != nil {
			return err
		}

		label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if err := analyse(acc, path, label, column, comma); err != nil {
			slog.Error("Failed to analyse file", "file", path, "error", err)
			continue
		}
		slog.Debug("Analysed file", "file", path)
	}

	return writeTable(acc.Table(), output, comma, cmd.OutOrStdout())
}

func analyse(acc *hrv.Accumulator, path, label, column string, comma rune) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	series, err := hrv.ReadSeries(f, column, comma)
	if err != nil {
		return err
	}

	_, err = acc.Compute(label, series)
	return err
}

// writeTable picks the output encoding from the file extension.
func writeTable(table *hrv.Table, output string, comma rune, stdout io.Writer) error {
	switch strings.ToLower(filepath.Ext(output)) {
	case "":
		if output != "" {
			return common.Configf("results file %q has no extension (want .xlsx or .csv)", output)
		}
		return table.WriteCSV(stdout, comma)
	case ".xlsx":
		return table.WriteXLSX(output)
	case ".csv":
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := table.WriteCSV(f, comma); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	default:
		return common.Configf("unsupported results file %q (want .xlsx or .csv)", output)
	}
}
