// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"
	FieldRole      = "role"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldOperation = "operation"
	FieldLoader    = "loader"

	// Domain fields
	FieldJobID         = "job_id"
	FieldCompanyID     = "company_id"
	FieldApplicationID = "application_id"

	// HTTP fields
	FieldMethod   = "method"
	FieldPath     = "path"
	FieldRoute    = "route"
	FieldStatus   = "status"
	FieldDuration = "duration_ms"
	FieldBytes    = "bytes"
	FieldRemote   = "remote_addr"
	FieldBaseURL  = "base_url"
)
