// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package common holds the error taxonomy shared by the conversion packages.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks invalid output settings: override lengths that do not
	// match the selected columns, out of range indices, or a multiplier that
	// does not fit the filtered channel count.
	ErrConfig = errors.New("configuration error")

	// ErrParse marks malformed recording content.
	ErrParse = errors.New("parse error")

	// ErrInputNotFound is returned when a batch finds nothing to convert.
	ErrInputNotFound = errors.New("input not found")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-facing error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// Configf returns an ErrConfig wrapping a formatted message.
func Configf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConfig, fmt.Sprintf(format, args...))
}

// Parsef returns an ErrParse wrapping a formatted message.
func Parsef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrParse, fmt.Sprintf(format, args...))
}
