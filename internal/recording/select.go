// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package recording

import "github.com/OpenPSG/sigconv/internal/common"

// Select returns the entries of full chosen by validCols, in validCols
// order. A non-empty override is returned verbatim instead; it must have one
// entry per selected column. With neither, full is returned unchanged.
func Select(full []string, validCols []int, override []string) ([]string, error) {
	if len(override) > 0 {
		if len(override) != len(validCols) {
			return nil, common.Configf("override has %d entries for %d selected columns", len(override), len(validCols))
		}
		return append([]string(nil), override...), nil
	}

	return Pick(full, validCols)
}

// Pick returns full[i] for each i in cols, or full itself when cols is
// empty. Indices may repeat.
func Pick[T any](full []T, cols []int) ([]T, error) {
	if len(cols) == 0 {
		return full, nil
	}

	out := make([]T, len(cols))
	for i, col := range cols {
		if col < 0 || col >= len(full) {
			return nil, common.Configf("column index %d out of range for %d columns", col, len(full))
		}
		out[i] = full[col]
	}

	return out, nil
}
