// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ManuGH/jobjump/internal/domain"
)

// SaveJob adds the bookmark, or removes it when req.AlreadySaved is set.
func (c *Client) SaveJob(ctx context.Context, caller domain.Caller, req domain.SaveRequest) (bool, error) {
	if req.AlreadySaved {
		q := url.Values{}
		q.Set("job_id", eqInt(req.JobID))
		q.Set("user_id", eq(req.UserID))
		if err := c.rest(ctx, caller, request{op: "unsave_job", method: http.MethodDelete, table: "saved_jobs", query: q}, nil); err != nil {
			return true, err
		}
		return false, nil
	}

	body := map[string]any{"user_id": req.UserID, "job_id": req.JobID}
	if err := c.rest(ctx, caller, request{op: "save_job", method: http.MethodPost, table: "saved_jobs", body: body}, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ListSavedJobs returns the caller's bookmarks with the embedded job.
func (c *Client) ListSavedJobs(ctx context.Context, caller domain.Caller) ([]domain.SavedJob, error) {
	q := url.Values{}
	q.Set("select", "*,job:jobs(*,company:companies(name,logo_url))")
	q.Set("user_id", eq(caller.UserID))

	var saved []domain.SavedJob
	err := c.rest(ctx, caller, request{op: "list_saved_jobs", method: http.MethodGet, table: "saved_jobs", query: q}, &saved)
	return saved, err
}
