// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package api serves the JSON API under /api/v1. Requests are validated
// against the embedded OpenAPI document before they reach a handler.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/ManuGH/jobjump/internal/control/authz"
	"github.com/ManuGH/jobjump/internal/control/http/problem"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

// ListJobsParams are the query parameters of listJobs.
type ListJobsParams struct {
	SearchQuery *string `form:"searchQuery,omitempty" json:"searchQuery,omitempty"`
	Location    *string `form:"location,omitempty" json:"location,omitempty"`
	CompanyId   *int64  `form:"companyId,omitempty" json:"companyId,omitempty"`
}

// HiringStatus is the body of updateHiringStatus.
type HiringStatus struct {
	IsOpen *bool `json:"isOpen"`
}

// SaveState is the response of toggleSavedJob.
type SaveState struct {
	JobID int64 `json:"jobId"`
	Saved bool  `json:"saved"`
}

// ServerInterface is implemented by the API handlers, one method per
// OpenAPI operation.
type ServerInterface interface {
	ListJobs(w http.ResponseWriter, r *http.Request, params ListJobsParams)
	GetJob(w http.ResponseWriter, r *http.Request, id int64)
	UpdateHiringStatus(w http.ResponseWriter, r *http.Request, id int64)
	ToggleSavedJob(w http.ResponseWriter, r *http.Request, id int64)
	ListCompanies(w http.ResponseWriter, r *http.Request)
	ListSavedJobs(w http.ResponseWriter, r *http.Request)
}

// MiddlewareFunc wraps every operation handler.
type MiddlewareFunc func(http.Handler) http.Handler

// ServerInterfaceWrapper binds path and query parameters before calling
// the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []MiddlewareFunc
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.Handler) {
	for _, mw := range siw.HandlerMiddlewares {
		h = mw(h)
	}
	h.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) bindID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return 0, false
	}
	return id, true
}

// ListJobs binds the query of GET /jobs.
func (siw *ServerInterfaceWrapper) ListJobs(w http.ResponseWriter, r *http.Request) {
	var params ListJobsParams
	query := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "searchQuery", query, &params.SearchQuery); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "searchQuery", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "location", query, &params.Location); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "location", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "companyId", query, &params.CompanyId); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "companyId", Err: err})
		return
	}

	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ListJobs(w, r, params)
	}))
}

// GetJob binds GET /jobs/{id}.
func (siw *ServerInterfaceWrapper) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetJob(w, r, id)
	}))
}

// UpdateHiringStatus binds PUT /jobs/{id}/status.
func (siw *ServerInterfaceWrapper) UpdateHiringStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.UpdateHiringStatus(w, r, id)
	}))
}

// ToggleSavedJob binds POST /jobs/{id}/save.
func (siw *ServerInterfaceWrapper) ToggleSavedJob(w http.ResponseWriter, r *http.Request) {
	id, ok := siw.bindID(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.ToggleSavedJob(w, r, id)
	}))
}

// ListCompanies serves GET /companies.
func (siw *ServerInterfaceWrapper) ListCompanies(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.ListCompanies))
}

// ListSavedJobs serves GET /saved-jobs.
func (siw *ServerInterfaceWrapper) ListSavedJobs(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, http.HandlerFunc(siw.Handler.ListSavedJobs))
}

// RouterOptions configures NewRouter.
type RouterOptions struct {
	BaseURL          string
	BaseRouter       chi.Router
	Middlewares      []MiddlewareFunc
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// NewRouter registers every operation with its authz gate.
func NewRouter(si ServerInterface, options RouterOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = defaultBindErrorHandler
	}
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	register := func(method, path, opID string, handler http.HandlerFunc) {
		r.With(authz.RequireOperation(opID)).Method(method, options.BaseURL+path, handler)
	}
	register(http.MethodGet, "/jobs", "ListJobs", wrapper.ListJobs)
	register(http.MethodGet, "/jobs/{id}", "GetJob", wrapper.GetJob)
	register(http.MethodPut, "/jobs/{id}/status", "UpdateHiringStatus", wrapper.UpdateHiringStatus)
	register(http.MethodPost, "/jobs/{id}/save", "ToggleSavedJob", wrapper.ToggleSavedJob)
	register(http.MethodGet, "/companies", "ListCompanies", wrapper.ListCompanies)
	register(http.MethodGet, "/saved-jobs", "ListSavedJobs", wrapper.ListSavedJobs)
	return r
}

func defaultBindErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	problem.Write(w, r, http.StatusBadRequest, "api/invalid_input", "Invalid Request", "INVALID_INPUT", err.Error(), nil)
}
