// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ManuGH/jobjump/internal/domain"
)

const (
	selectJobList   = "*,saved:saved_jobs(id),company:companies(name,logo_url)"
	selectJobDetail = "*,company:companies(name,logo_url),applications:applications(*)"
)

// ListJobs returns jobs matching the filter. The saved embed is narrowed to
// the caller so Job.IsSaved reflects their bookmarks.
func (c *Client) ListJobs(ctx context.Context, caller domain.Caller, f domain.JobFilter) ([]domain.Job, error) {
	f = f.Normalize()
	q := url.Values{}
	q.Set("select", selectJobList)
	if caller.UserID != "" {
		q.Set("saved.user_id", eq(caller.UserID))
	}
	if f.Location != "" {
		q.Set("location", eq(f.Location))
	}
	if f.CompanyID != 0 {
		q.Set("company_id", eqInt(f.CompanyID))
	}
	if f.SearchQuery != "" {
		q.Set("title", ilike(f.SearchQuery))
	}

	var jobs []domain.Job
	err := c.rest(ctx, caller, request{op: "list_jobs", method: http.MethodGet, table: "jobs", query: q}, &jobs)
	return jobs, err
}

// GetJob returns a single job with its company and applications.
func (c *Client) GetJob(ctx context.Context, caller domain.Caller, id int64) (domain.Job, error) {
	q := url.Values{}
	q.Set("select", selectJobDetail)
	q.Set("id", eqInt(id))

	var job domain.Job
	err := c.rest(ctx, caller, request{op: "get_job", method: http.MethodGet, table: "jobs", query: q, single: true}, &job)
	return job, err
}

// CreateJob inserts a job and returns the stored row.
func (c *Client) CreateJob(ctx context.Context, caller domain.Caller, in domain.NewJob) (domain.Job, error) {
	var job domain.Job
	err := c.rest(ctx, caller, request{
		op:     "create_job",
		method: http.MethodPost,
		table:  "jobs",
		body:   in,
		single: true,
		prefer: preferRepresent,
	}, &job)
	return job, err
}

// UpdateHiringStatus sets isOpen and leaves every other column alone.
func (c *Client) UpdateHiringStatus(ctx context.Context, caller domain.Caller, id int64, isOpen bool) (domain.Job, error) {
	q := url.Values{}
	q.Set("id", eqInt(id))

	var job domain.Job
	err := c.rest(ctx, caller, request{
		op:     "update_hiring_status",
		method: http.MethodPatch,
		table:  "jobs",
		query:  q,
		body:   map[string]bool{"isOpen": isOpen},
		single: true,
		prefer: preferRepresent,
	}, &job)
	return job, err
}

// DeleteJob removes a job.
func (c *Client) DeleteJob(ctx context.Context, caller domain.Caller, id int64) error {
	q := url.Values{}
	q.Set("id", eqInt(id))
	return c.rest(ctx, caller, request{op: "delete_job", method: http.MethodDelete, table: "jobs", query: q}, nil)
}

// ListMyJobs returns the jobs a recruiter created.
func (c *Client) ListMyJobs(ctx context.Context, caller domain.Caller, recruiterID string) ([]domain.Job, error) {
	q := url.Values{}
	q.Set("select", selectJobDetail)
	q.Set("recruiter_id", eq(recruiterID))

	var jobs []domain.Job
	err := c.rest(ctx, caller, request{op: "list_my_jobs", method: http.MethodGet, table: "jobs", query: q}, &jobs)
	return jobs, err
}
