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
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/recording"
)

// maxLineBytes bounds a single text line of a recording.
const maxLineBytes = 16 * 1024 * 1024

// ToCSV streams the sample rows of src into a CSV file at dst, one row at a
// time. Tokens are copied verbatim: the row is split on whitespace, the
// selected columns are picked in cfg.Output.ValidCols order (every column when
// empty) and joined with cfg.CSVSeparator. A header line of hdr.Columns
// joined by the separator and a space is written first. A partially written
// dst is removed when the conversion fails.
func ToCSV(src, dst string, hdr *recording.Header, cfg config.Config) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open recording: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", dst, cerr)
		}
		if err != nil {
			if rerr := os.Remove(dst); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				slog.Warn("Failed to remove partial csv", "path", dst, "error", rerr)
			}
		}
	}()

	w := bufio.NewWriter(out)
	sep := cfg.CSVSeparator

	if len(hdr.Columns) > 0 {
		if _, err := w.WriteString(strings.Join(hdr.Columns, sep+" ") + "\n"); err != nil {
			return fmt.Errorf("failed to write csv header: %w", err)
		}
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo <= hdr.DataOffset {
			continue
		}

		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 {
			continue
		}

		picked, err := recording.Pick(tokens, cfg.Output.ValidCols)
		if err != nil {
			if errors.Is(err, common.ErrConfig) {
				return common.Parsef("line %d has %d values: %v", lineNo, len(tokens), err)
			}
			return err
		}

		if _, err := w.WriteString(strings.Join(picked, sep) + "\n"); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read samples: %w", err)
	}
	if lineNo < hdr.DataOffset {
		return common.Parsef("file ends after %d of %d header lines", lineNo, hdr.DataOffset)
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return nil
}
