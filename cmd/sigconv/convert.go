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
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/OpenPSG/sigconv/internal/batch"
	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a directory of recordings",
		Long: `Convert every recording in the input directory that matches the file
pattern. Results are written to <output>/<input directory name>/, one EDF
file per recording, or a CSV file and a selection file per recording when
the output format is csv.

A recording that fails to convert is reported and skipped.`,
		RunE: runConvert,
	}

	cmd.Flags().StringP("input", "i", "", "directory containing the recordings")
	cmd.Flags().StringP("output", "o", "", "directory the export directory is created in")
	cmd.Flags().StringP("file", "f", "*.out", "glob pattern selecting the recordings")
	cmd.Flags().String("output-format", "edf", "output format (edf, csv)")
	cmd.Flags().Bool("no-progress", false, "do not render a progress bar")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	_ = viper.BindPFlag("pattern", cmd.Flags().Lookup("file"))
	_ = viper.BindPFlag("format", cmd.Flags().Lookup("output-format"))

	return cmd
}

func runConvert(cmd *cobra.Command, _ []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	opts := []batch.Option{batch.WithLogger(slog.Default())}
	if !noProgress {
		opts = append(opts, batch.WithProgress(os.Stderr))
	}

	summary, err := batch.NewRunner(cfg, opts...).Run(cmd.Context(), input, output)
	if batch.IsInputNotFound(err) {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(cmd.OutOrStdout(), userErr.UserMessage)
			return nil
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Converted %d file(s) to %s\n", len(summary.Converted), summary.ExportDir)
	for _, failed := range summary.Failed {
		fmt.Fprintf(cmd.OutOrStdout(), "  failed: %v\n", failed)
	}

	return nil
}
