// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import "time"

// SavedJob is a bookmark of a job by a user.
type SavedJob struct {
	ID        int64     `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	JobID     int64     `json:"job_id" db:"job_id"`
	CreatedAt time.Time `json:"created_at,omitzero" db:"created_at"`

	Job *Job `json:"job,omitempty" db:"-"`
}

// SaveRequest toggles a bookmark. AlreadySaved selects removal.
type SaveRequest struct {
	UserID       string
	JobID        int64
	AlreadySaved bool
}
