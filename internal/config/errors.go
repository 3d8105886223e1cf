// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package config

import "errors"

// Sentinel errors returned by Loader.Load. Match them with errors.Is.
var (
	ErrUnknownConfigField = errors.New("unknown config field")
	ErrUnsupportedFormat  = errors.New("unsupported config format")
	ErrTrailingContent    = errors.New("config file contains multiple documents or trailing content")
	// ErrInvalidConfig wraps the field errors collected by Validate.
	ErrInvalidConfig = errors.New("invalid configuration")
)
