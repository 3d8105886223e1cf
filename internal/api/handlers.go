// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/control/http/problem"
	"github.com/ManuGH/jobjump/internal/dataapi"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/fetch"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
	"github.com/ManuGH/jobjump/internal/telemetry"
)

const maxBodyBytes = 4 << 10

// Server implements ServerInterface on a domain.Backend.
type Server struct {
	backend domain.Backend
	logger  zerolog.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates the API handlers.
func NewServer(backend domain.Backend) *Server {
	return &Server{backend: backend, logger: log.WithComponent("api")}
}

// Handler returns the validated, gated API router for mounting at BasePath.
func Handler(backend domain.Backend) (http.Handler, error) {
	validate, err := RequestValidator(BasePath)
	if err != nil {
		return nil, err
	}
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		problem.Write(w, r, http.StatusNotFound, "api/not_found", "Not Found", "NOT_FOUND", "unknown API path", nil)
	})
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(RawDocument())
	})
	r.Group(func(g chi.Router) {
		g.Use(validate)
		NewRouter(NewServer(backend), RouterOptions{BaseRouter: g})
	})
	return r, nil
}

// none is the argument type of loaders that take no per-trigger arguments.
type none struct{}

func loader[O, T any](name string, opts O, fn func(ctx context.Context, c domain.Caller, opts O) (T, error)) *fetch.Loader[O, none, T] {
	return fetch.New(name, func(ctx context.Context, c domain.Caller, o O, _ none) (T, error) {
		return fn(ctx, c, o)
	}, auth.CallerFromContext, opts)
}

// ListJobs implements GET /jobs.
func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request, params ListJobsParams) {
	var f domain.JobFilter
	if params.SearchQuery != nil {
		f.SearchQuery = *params.SearchQuery
	}
	if params.Location != nil {
		f.Location = *params.Location
	}
	if params.CompanyId != nil {
		f.CompanyID = *params.CompanyId
	}

	jobs, err := loader("api.jobs", f.Normalize(), s.backend.ListJobs).Do(r.Context(), none{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(jobs))
}

// GetJob implements GET /jobs/{id}.
func (s *Server) GetJob(w http.ResponseWriter, r *http.Request, id int64) {
	telemetry.SetJobID(r.Context(), id)
	job, err := loader("api.job", id, s.backend.GetJob).Do(r.Context(), none{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// UpdateHiringStatus implements PUT /jobs/{id}/status.
func (s *Server) UpdateHiringStatus(w http.ResponseWriter, r *http.Request, id int64) {
	var body HiringStatus
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil || body.IsOpen == nil {
		problem.Write(w, r, http.StatusBadRequest, "api/invalid_input", "Invalid Request", "INVALID_INPUT", "body must be {\"isOpen\": bool}", nil)
		return
	}
	isOpen := *body.IsOpen

	update := fetch.New("api.hiring_status", func(ctx context.Context, c domain.Caller, id int64, open bool) (domain.Job, error) {
		return s.backend.UpdateHiringStatus(ctx, c, id, open)
	}, auth.CallerFromContext, id)
	job, err := update.Do(r.Context(), isOpen)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	metrics.RecordHiringStatus(isOpen)
	writeJSON(w, http.StatusOK, job)
}

// ToggleSavedJob implements POST /jobs/{id}/save.
func (s *Server) ToggleSavedJob(w http.ResponseWriter, r *http.Request, id int64) {
	saved, err := loader("api.saved_jobs", none{}, func(ctx context.Context, c domain.Caller, _ none) ([]domain.SavedJob, error) {
		return s.backend.ListSavedJobs(ctx, c)
	}).Do(r.Context(), none{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	already := false
	for _, sj := range saved {
		if sj.JobID == id {
			already = true
			break
		}
	}

	toggle := fetch.New("api.save_job", func(ctx context.Context, c domain.Caller, _ none, req domain.SaveRequest) (bool, error) {
		req.UserID = c.UserID
		return s.backend.SaveJob(ctx, c, req)
	}, auth.CallerFromContext, none{})
	now, err := toggle.Do(r.Context(), domain.SaveRequest{JobID: id, AlreadySaved: already})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	metrics.RecordSavedToggle(now)
	writeJSON(w, http.StatusOK, SaveState{JobID: id, Saved: now})
}

// ListCompanies implements GET /companies.
func (s *Server) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := loader("api.companies", none{}, func(ctx context.Context, c domain.Caller, _ none) ([]domain.Company, error) {
		return s.backend.ListCompanies(ctx, c)
	}).Do(r.Context(), none{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(companies))
}

// ListSavedJobs implements GET /saved-jobs.
func (s *Server) ListSavedJobs(w http.ResponseWriter, r *http.Request) {
	saved, err := loader("api.saved_jobs", none{}, func(ctx context.Context, c domain.Caller, _ none) ([]domain.SavedJob, error) {
		return s.backend.ListSavedJobs(ctx, c)
	}).Do(r.Context(), none{})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(saved))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.WithContext(r.Context(), s.logger)
	logger.Warn().Err(err).Str(log.FieldEvent, "api.backend_error").Str(log.FieldPath, r.URL.Path).Msg("backend call failed")
	problem.FromError(w, r, err, dataapi.IsUnavailable)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.L().Error().Err(fmt.Errorf("encode response: %w", err)).Msg("api write failed")
	}
}
