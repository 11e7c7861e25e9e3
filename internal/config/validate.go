// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/OpenPSG/sigconv/internal/common"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report the config file key rather than the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterStructValidation(settingsStructLevel, Settings{})

	return v
}

// settingsStructLevel enforces that overrides line up with ValidCols.
func settingsStructLevel(sl validator.StructLevel) {
	s := sl.Current().Interface().(Settings)

	n := strconv.Itoa(len(s.ValidCols))
	if len(s.ChannelNames) > 0 && len(s.ChannelNames) != len(s.ValidCols) {
		sl.ReportError(s.ChannelNames, "channel_names", "ChannelNames", "matchcols", n)
	}
	if len(s.Units) > 0 && len(s.Units) != len(s.ValidCols) {
		sl.ReportError(s.Units, "units", "Units", "matchcols", n)
	}
	if len(s.Multiplier) > 0 && len(s.ValidCols) > 0 && len(s.Multiplier) != len(s.ValidCols) {
		sl.ReportError(s.Multiplier, "multiplier", "Multiplier", "matchcols", n)
	}
}

// Validate checks c against its struct tags and the Settings length rules.
// Every failure wraps common.ErrConfig.
func (c Config) Validate() error {
	return validateStruct(c)
}

// Validate checks the Settings length rules on their own.
func (s Settings) Validate() error {
	return validateStruct(s)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}

	return fmt.Errorf("%w: %s", common.ErrConfig, strings.Join(msgs, "; "))
}

func formatFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "matchcols":
		return fmt.Sprintf("%s must have one entry per selected column (%s)", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
