// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ManuGH/jobjump/internal/domain"
)

// ApplyToJob creates an application.
func (c *Client) ApplyToJob(ctx context.Context, caller domain.Caller, in domain.NewApplication) (domain.Application, error) {
	if in.Status == "" {
		in.Status = domain.StatusApplied
	}
	var app domain.Application
	err := c.rest(ctx, caller, request{
		op:     "apply_to_job",
		method: http.MethodPost,
		table:  "applications",
		body:   in,
		single: true,
		prefer: preferRepresent,
	}, &app)
	return app, err
}

// ListApplications returns a candidate's applications with job title and company.
func (c *Client) ListApplications(ctx context.Context, caller domain.Caller, candidateID string) ([]domain.Application, error) {
	q := url.Values{}
	q.Set("select", "*,job:jobs(title,company:companies(name))")
	q.Set("candidate_id", eq(candidateID))

	var apps []domain.Application
	err := c.rest(ctx, caller, request{op: "list_applications", method: http.MethodGet, table: "applications", query: q}, &apps)
	return apps, err
}

// UpdateApplicationStatus moves one application to a new status.
func (c *Client) UpdateApplicationStatus(ctx context.Context, caller domain.Caller, id int64, status domain.ApplicationStatus) (domain.Application, error) {
	q := url.Values{}
	q.Set("id", eqInt(id))

	var app domain.Application
	err := c.rest(ctx, caller, request{
		op:     "update_application_status",
		method: http.MethodPatch,
		table:  "applications",
		query:  q,
		body:   map[string]string{"status": string(status)},
		single: true,
		prefer: preferRepresent,
	}, &app)
	return app, err
}
