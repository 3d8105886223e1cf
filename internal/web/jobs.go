// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package web

import (
	"context"
	"net/http"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/fetch"
	"github.com/ManuGH/jobjump/internal/metrics"
)

type jobsView struct {
	Filter         domain.JobFilter
	Jobs           []domain.Job
	Companies      []domain.Company
	Locations      []string
	UserID         string
	Return         string
	Error          string
	CompaniesError string
}

// jobsPage lists jobs for the filter in the query string. Jobs and companies
// load concurrently.
func (h *Handler) jobsPage(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r.URL.Query())

	jobs := newLoader("jobs.list", filter, func(ctx context.Context, c domain.Caller, f domain.JobFilter, _ none) ([]domain.Job, error) {
		return h.backend.ListJobs(ctx, c, f)
	})
	companies := h.companiesLoader()
	settle(r.Context(), jobs.Trigger(r.Context(), none{}), companies.Trigger(r.Context(), none{}))

	v := jobsView{
		Filter:    filter,
		Locations: domain.Locations,
		UserID:    principal(r).User.ID,
		Return:    r.URL.RequestURI(),
	}
	js := jobs.State()
	v.Jobs = js.Data
	if js.Err != nil {
		v.Error = js.Err.Message
	}
	cs := companies.State()
	v.Companies = cs.Data
	if cs.Err != nil {
		v.CompaniesError = cs.Err.Message
	}
	h.render(w, r, http.StatusOK, "jobs", "Latest Jobs", v)
}

func (h *Handler) companiesLoader() *fetch.Loader[none, none, []domain.Company] {
	return newLoader("companies.list", none{}, func(ctx context.Context, c domain.Caller, _ none, _ none) ([]domain.Company, error) {
		return h.backend.ListCompanies(ctx, c)
	})
}

// toggleSaved flips the saved state of a job and returns to the page the
// form was posted from.
func (h *Handler) toggleSaved(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "This job does not exist.")
		return
	}
	already := r.PostFormValue("saved") == "true"

	toggle := newLoader("jobs.save", none{}, func(ctx context.Context, c domain.Caller, _ none, req domain.SaveRequest) (bool, error) {
		req.UserID = c.UserID
		return h.backend.SaveJob(ctx, c, req)
	})
	saved, err := toggle.Do(r.Context(), domain.SaveRequest{JobID: id, AlreadySaved: already})
	if err != nil {
		h.fail(w, r, "jobs.save_failed", err)
		return
	}
	metrics.RecordSavedToggle(saved)
	seeOther(w, r, safeReturn(r.PostFormValue("return"), "/jobs"))
}

type savedJobsView struct {
	Saved  []domain.SavedJob
	UserID string
	Error  string
}

func (h *Handler) savedJobsPage(w http.ResponseWriter, r *http.Request) {
	saved := newLoader("saved_jobs.list", none{}, func(ctx context.Context, c domain.Caller, _ none, _ none) ([]domain.SavedJob, error) {
		return h.backend.ListSavedJobs(ctx, c)
	})
	list, err := saved.Do(r.Context(), none{})
	v := savedJobsView{Saved: list, UserID: principal(r).User.ID}
	if err != nil {
		v.Error = saved.Err().Message
	}
	h.render(w, r, http.StatusOK, "saved_jobs", "Saved Jobs", v)
}
