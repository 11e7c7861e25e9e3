// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package batch drives the conversion of every recording in a directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/export"
	"github.com/OpenPSG/sigconv/internal/recording"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
)

// suffixLen is the length of the input suffix (".out") dropped from names.
const suffixLen = 4

var nameReplacer = strings.NewReplacer(" ", "_", "-", "_", ".", "-")

// SanitizeName turns the base name of an input file into a name the viewer
// accepts: the suffix is dropped, spaces and hyphens become underscores and
// periods become hyphens.
func SanitizeName(base string) string {
	if len(base) > suffixLen {
		base = base[:len(base)-suffixLen]
	}
	return nameReplacer.Replace(base)
}

// Discover returns the files in dir matching pattern, sorted.
func Discover(dir, pattern string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
	}

	files := matches[:0]
	for _, m := range matches {
		if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)

	return files, nil
}

// FileError records a file that could not be converted.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Summary reports the outcome of a run.
type Summary struct {
	RunID     string
	ExportDir string
	Converted []string // Output paths, in processing order
	Failed    []FileError
}

// Runner converts batches of recordings with a fixed configuration.
type Runner struct {
	cfg      config.Config
	open     export.Opener
	progress io.Writer
	logger   *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithOpener replaces the container used by the binary export path.
func WithOpener(open export.Opener) Option {
	return func(r *Runner) {
		r.open = open
	}
}

// WithProgress renders a progress bar to w.
func WithProgress(w io.Writer) Option {
	return func(r *Runner) {
		r.progress = w
	}
}

// WithLogger sets the logger used for per-file reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		open:   export.CreateEDF,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run converts every file in inputDir matching the configured pattern into
// <outputDir>/<basename of inputDir>. A file that fails is logged and
// recorded in the summary; the batch carries on with the next one. The
// returned error is only set when the run itself cannot proceed: nothing to
// convert (common.ErrInputNotFound), an unusable output directory, or a
// cancelled context.
func (r *Runner) Run(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	summary := &Summary{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", summary.RunID)

	files, err := Discover(inputDir, r.cfg.Pattern)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		return summary, common.NewUserError(
			fmt.Sprintf("InputError: no file(s) were found in %q. Check if the path or file name are correct.", inputDir),
			common.ErrInputNotFound,
		)
	}

	summary.ExportDir = filepath.Join(outputDir, filepath.Base(filepath.Clean(inputDir)))
	if err := os.MkdirAll(summary.ExportDir, 0o755); err != nil {
		return summary, fmt.Errorf("failed to create output directory: %w", err)
	}

	logger.Info("Converting recordings",
		"files", len(files),
		"format", r.cfg.Format,
		"output", summary.ExportDir)

	bar := r.newProgressBar(len(files))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		out, err := r.convert(path, summary.ExportDir)
		if err != nil {
			logger.Error("Failed to convert file", "file", path, "error", err)
			summary.Failed = append(summary.Failed, FileError{Path: path, Err: err})
		} else {
			logger.Debug("Converted file", "file", path, "output", out)
			summary.Converted = append(summary.Converted, out)
		}

		if bar != nil {
			if err := bar.Add(1); err != nil {
				logger.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	logger.Info("Conversion finished",
		"converted", len(summary.Converted),
		"failed", len(summary.Failed))

	return summary, nil
}

// convert runs one file through the pipeline and returns the main output
// path.
func (r *Runner) convert(path, exportDir string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("conversion panicked: %v", p)
		}
	}()

	hdr, err := recording.ReadHeader(path, r.cfg.Output, r.cfg.HeaderSize)
	if err != nil {
		return "", err
	}

	name := SanitizeName(filepath.Base(path))

	switch r.cfg.Format {
	case config.FormatCSV:
		if err := export.WriteSelection(exportDir, name, hdr); err != nil {
			return "", err
		}
		out = filepath.Join(exportDir, name+".csv")
		if err := export.ToCSV(path, out, hdr, r.cfg); err != nil {
			sel := filepath.Join(exportDir, name+".sel")
			if rerr := os.Remove(sel); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				r.logger.Warn("Failed to remove selection file", "path", sel, "error", rerr)
			}
			return "", err
		}
		return out, nil
	case config.FormatEDF:
		out = filepath.Join(exportDir, name+".edf")
		return out, export.ToContainer(path, out, hdr, r.cfg, r.open)
	default:
		return "", common.Configf("unknown output format %q", r.cfg.Format)
	}
}

func (r *Runner) newProgressBar(total int) *progressbar.ProgressBar {
	if r.progress == nil {
		return nil
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(r.progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(fmt.Sprintf("Converting to %s", r.cfg.Format)),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(r.progress); err != nil {
				r.logger.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// IsInputNotFound reports whether err means a run found nothing to convert.
func IsInputNotFound(err error) bool {
	return errors.Is(err, common.ErrInputNotFound)
}
