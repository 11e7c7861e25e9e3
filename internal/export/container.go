// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package export writes parsed recordings to their output formats: the
// binary EDF container, or a CSV file with its SignalPlant selection file.
package export

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/config"
	"github.com/OpenPSG/sigconv/internal/recording"
)

// Dataset is one named block of channel-major samples.
type Dataset struct {
	Name     string            // Data cache name
	Data     *recording.Matrix // channels x samples
	Channels []string          // One name per row of Data
	Units    []string          // One unit per row of Data, may be empty

	// Optional per-channel descriptions carried by containers that have room
	// for them.
	FancyNames       []string
	CalibrationSlots []string
}

// Container is a binary time-series sink.
type Container interface {
	// CreateDataset stores ds in the container.
	CreateDataset(ds Dataset) error
	// Flush makes buffered writes durable.
	Flush() error
	// Close releases the container. It is safe to call more than once.
	Close() error
}

// Opener creates a container at path recording the sample frequency.
type Opener func(path string, sampleFrequency int) (Container, error)

// ToContainer converts the recording at src into a container at dst. The
// samples are read after hdr.DataOffset lines, narrowed to the selected
// columns, transposed to channel-major order and scaled before being stored
// under cfg.DataCache. The container is closed on every path, and a partially
// written dst is removed when the conversion fails.
func ToContainer(src, dst string, hdr *recording.Header, cfg config.Config, open Opener) (err error) {
	c, err := open(dst, hdr.SampleFrequency)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close container: %w", cerr)
		}
		if err != nil {
			if rerr := os.Remove(dst); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				slog.Warn("Failed to remove partial container", "path", dst, "error", rerr)
			}
		}
	}()

	m, err := recording.ReadMatrixFile(src, hdr.DataOffset)
	if err != nil {
		return err
	}

	m, err = m.SelectColumns(cfg.Output.ValidCols)
	if err != nil {
		return err
	}
	if m.Cols != hdr.Channels() {
		return common.Parsef("header declares %d channels, data has %d", hdr.Channels(), m.Cols)
	}

	data := m.Transpose()
	if err := recording.Scale(data, cfg.Output.Multiplier); err != nil {
		return err
	}

	err = c.CreateDataset(Dataset{
		Name:             cfg.DataCache,
		Data:             data,
		Channels:         hdr.Columns,
		Units:            hdr.Units,
		FancyNames:       hdr.FancyNames,
		CalibrationSlots: hdr.CalibrationSlots,
	})
	if err != nil {
		return fmt.Errorf("failed to write dataset: %w", err)
	}

	if err := c.Flush(); err != nil {
		return fmt.Errorf("failed to flush container: %w", err)
	}

	return nil
}
