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
	"testing"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/OpenPSG/sigconv/internal/recording"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelect(t *testing.T) {
	full := []string{"a", "b", "c"}

	got, err := recording.Select(full, []int{2, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, got)

	got, err = recording.Select(full, []int{1, 1, 0}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "b", "a"}, got)

	got, err = recording.Select(full, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, full, got)

	got, err = recording.Select(full, []int{0, 2}, []string{"x", "y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestSelectErrors(t *testing.T) {
	full := []string{"a", "b", "c"}

	_, err := recording.Select(full, []int{0, 2}, []string{"x"})
	assert.ErrorIs(t, err, common.ErrConfig)

	_, err = recording.Select(full, []int{3}, nil)
	assert.ErrorIs(t, err, common.ErrConfig)

	_, err = recording.Pick([]int{1, 2}, []int{-1})
	assert.ErrorIs(t, err, common.ErrConfig)
}
