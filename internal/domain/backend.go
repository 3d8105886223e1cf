// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalid is returned when the backend rejects a payload.
	ErrInvalid = errors.New("invalid request")
)

// JobStore manages job postings.
type JobStore interface {
	ListJobs(ctx context.Context, c Caller, f JobFilter) ([]Job, error)
	GetJob(ctx context.Context, c Caller, id int64) (Job, error)
	CreateJob(ctx context.Context, c Caller, in NewJob) (Job, error)
	UpdateHiringStatus(ctx context.Context, c Caller, id int64, isOpen bool) (Job, error)
	DeleteJob(ctx context.Context, c Caller, id int64) error
	ListMyJobs(ctx context.Context, c Caller, recruiterID string) ([]Job, error)
}

// CompanyStore manages companies.
type CompanyStore interface {
	ListCompanies(ctx context.Context, c Caller) ([]Company, error)
	AddCompany(ctx context.Context, c Caller, in NewCompany) (Company, error)
}

// SavedJobStore manages bookmarks.
type SavedJobStore interface {
	// SaveJob toggles a bookmark and reports whether the job is saved afterwards.
	SaveJob(ctx context.Context, c Caller, req SaveRequest) (bool, error)
	ListSavedJobs(ctx context.Context, c Caller) ([]SavedJob, error)
}

// ApplicationStore manages applications.
type ApplicationStore interface {
	ApplyToJob(ctx context.Context, c Caller, in NewApplication) (Application, error)
	ListApplications(ctx context.Context, c Caller, candidateID string) ([]Application, error)
	UpdateApplicationStatus(ctx context.Context, c Caller, id int64, status ApplicationStatus) (Application, error)
}

// Backend is the full data contract used by pages and the JSON API.
type Backend interface {
	JobStore
	CompanyStore
	SavedJobStore
	ApplicationStore
	Ping(ctx context.Context) error
}
