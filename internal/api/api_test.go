// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3filter"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/oapi-codegen/v2/pkg/codegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/jobjump/internal/control/auth"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/store/sqlite"
)

const testUserHeader = "X-Test-User"

type fixture struct {
	store   *sqlite.Store
	handler http.Handler
	company domain.Company
	job     domain.Job
}

var testUsers = map[string]domain.User{
	"recruiter": {ID: "user_recruiter", Metadata: map[string]any{"role": "recruiter"}},
	"candidate": {ID: "user_candidate", Metadata: map[string]any{"role": "candidate"}},
	"newcomer":  {ID: "user_new"},
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	companies, err := store.ListCompanies(ctx, domain.Caller{})
	require.NoError(t, err)
	require.NotEmpty(t, companies)

	rec := domain.Caller{UserID: "user_recruiter"}
	job, err := store.CreateJob(ctx, rec, domain.NewJob{
		RecruiterID:  rec.UserID,
		Title:        "Backend Engineer",
		Description:  "Own the job feed. Keep it fast.",
		Location:     "Karnataka",
		CompanyID:    companies[0].ID,
		Requirements: "- Go",
		IsOpen:       true,
	})
	require.NoError(t, err)

	h, err := Handler(store)
	require.NoError(t, err)

	root := chi.NewRouter()
	root.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if u, ok := testUsers[r.Header.Get(testUserHeader)]; ok {
				r = r.WithContext(auth.WithPrincipal(r.Context(), &auth.Principal{User: u}))
			}
			next.ServeHTTP(w, r)
		})
	})
	root.Mount(BasePath, h)

	return &fixture{store: store, handler: root, company: companies[0], job: job}
}

func (f *fixture) do(t *testing.T, user, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set(testUserHeader, user)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestGating(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.do(t, "", http.MethodGet, "/api/v1/jobs", nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, "newcomer", http.MethodGet, "/api/v1/jobs", nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, "candidate", http.MethodGet, "/api/v1/jobs", nil).Code)

	status := map[string]bool{"isOpen": false}
	assert.Equal(t, http.StatusForbidden, f.do(t, "candidate", http.MethodPut, "/api/v1/jobs/1/status", status).Code)
}

func TestListJobsFilters(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 1},
		{"?searchQuery=backend", 1},
		{"?searchQuery=frontend", 0},
		{"?location=Karnataka", 1},
		{"?location=Goa", 0},
		{"?companyId=" + jsonNumber(f.company.ID), 1},
	}
	for _, tt := range tests {
		rec := f.do(t, "candidate", http.MethodGet, "/api/v1/jobs"+tt.query, nil)
		require.Equal(t, http.StatusOK, rec.Code, tt.query)
		assert.Len(t, decode[[]domain.Job](t, rec), tt.want, tt.query)
	}
}

func TestRequestValidation(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "candidate", http.MethodGet, "/api/v1/jobs?companyId=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "companyId")

	rec = f.do(t, "candidate", http.MethodGet, "/api/v1/jobs/0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "recruiter", http.MethodPut, "/api/v1/jobs/1/status", map[string]string{"open": "no"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, "candidate", http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJob(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, "candidate", http.MethodGet, "/api/v1/jobs/"+jsonNumber(f.job.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	job := decode[domain.Job](t, rec)
	assert.Equal(t, "Backend Engineer", job.Title)
	require.NotNil(t, job.Company)
	assert.Equal(t, f.company.Name, job.Company.Name)
	validateResponse(t, http.MethodGet, "/api/v1/jobs/"+jsonNumber(f.job.ID), rec)

	rec = f.do(t, "candidate", http.MethodGet, "/api/v1/jobs/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestUpdateHiringStatus(t *testing.T) {
	f := newFixture(t)
	target := "/api/v1/jobs/" + jsonNumber(f.job.ID) + "/status"

	rec := f.do(t, "recruiter", http.MethodPut, target, map[string]bool{"isOpen": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decode[domain.Job](t, rec)
	assert.False(t, closed.IsOpen)
	assert.Equal(t, f.job.Title, closed.Title)

	rec = f.do(t, "recruiter", http.MethodPut, target, map[string]bool{"isOpen": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.Job](t, rec).IsOpen)
}

func TestToggleSavedJob(t *testing.T) {
	f := newFixture(t)
	target := "/api/v1/jobs/" + jsonNumber(f.job.ID) + "/save"

	rec := f.do(t, "candidate", http.MethodPost, target, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, SaveState{JobID: f.job.ID, Saved: true}, decode[SaveState](t, rec))

	rec = f.do(t, "candidate", http.MethodGet, "/api/v1/saved-jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	saved := decode[[]domain.SavedJob](t, rec)
	require.Len(t, saved, 1)
	assert.Equal(t, f.job.ID, saved[0].JobID)

	rec = f.do(t, "candidate", http.MethodPost, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[SaveState](t, rec).Saved)

	rec = f.do(t, "candidate", http.MethodGet, "/api/v1/saved-jobs", nil)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestListCompanies(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "recruiter", http.MethodGet, "/api/v1/companies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Company](t, rec), 8)
	validateResponse(t, http.MethodGet, "/api/v1/companies", rec)
}

func TestServesDocument(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, "", http.MethodGet, "/api/v1/openapi.yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "openapi: 3"))
}

// Every documented operation has a ServerInterface method of the same
// camel-cased name, and vice versa.
func TestOperationCoverage(t *testing.T) {
	doc, err := Document()
	require.NoError(t, err)

	ops := map[string]bool{}
	for _, item := range doc.Paths.Map() {
		for _, op := range item.Operations() {
			ops[codegen.ToCamelCase(op.OperationID)] = true
		}
	}
	iface := reflect.TypeOf((*ServerInterface)(nil)).Elem()
	methods := map[string]bool{}
	for i := range iface.NumMethod() {
		methods[iface.Method(i).Name] = true
	}
	assert.Equal(t, ops, methods)
}

func validateResponse(t *testing.T, method, target string, rec *httptest.ResponseRecorder) {
	t.Helper()
	doc, err := Document()
	require.NoError(t, err)
	local := *doc
	local.Servers = nil
	router, err := legacyrouter.NewRouter(&local)
	require.NoError(t, err)

	req := httptest.NewRequest(method, strings.TrimPrefix(target, BasePath), nil)
	route, params, err := router.FindRoute(req)
	require.NoError(t, err)

	input := &openapi3filter.ResponseValidationInput{
		RequestValidationInput: &openapi3filter.RequestValidationInput{
			Request:    req,
			PathParams: params,
			Route:      route,
			Options:    &openapi3filter.Options{AuthenticationFunc: openapi3filter.NoopAuthenticationFunc},
		},
		Status: rec.Code,
		Header: rec.Header(),
	}
	input.SetBodyBytes(rec.Body.Bytes())
	require.NoError(t, openapi3filter.ValidateResponse(context.Background(), input), "openapi response validation")
}

func jsonNumber(n int64) string {
	raw, _ := json.Marshal(n)
	return string(raw)
}
