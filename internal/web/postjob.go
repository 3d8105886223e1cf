// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package web

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
	"github.com/ManuGH/jobjump/internal/storage"
)

type postJobView struct {
	Form           PostJobForm
	Errors         FieldErrors
	Error          string
	Companies      []domain.Company
	CompaniesError string
	Locations      []string

	Company       CompanyForm
	CompanyErrors FieldErrors
	CompanyError  string
}

// showPostJob loads the companies and renders the form.
func (h *Handler) showPostJob(w http.ResponseWriter, r *http.Request, status int, v postJobView) {
	companies, err := h.companiesLoader().Do(r.Context(), none{})
	v.Companies = companies
	if err != nil {
		v.CompaniesError = "Could not load companies: " + err.Error()
	}
	v.Locations = domain.Locations
	if v.Errors == nil {
		v.Errors = FieldErrors{}
	}
	if v.CompanyErrors == nil {
		v.CompanyErrors = FieldErrors{}
	}
	h.render(w, r, status, "post_job", "Post a Job", v)
}

func (h *Handler) postJobPage(w http.ResponseWriter, r *http.Request) {
	v := postJobView{}
	if id := r.URL.Query().Get("company"); id != "" {
		v.Form.CompanyID = id
	}
	h.showPostJob(w, r, http.StatusOK, v)
}

// createJob validates every field before any backend call. On success the
// recruiter lands on the listing.
func (h *Handler) createJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "The form could not be read.")
		return
	}
	form := postJobFormFrom(r.PostForm)
	if errs := form.Validate(); errs.Any() {
		metrics.RecordJobPosted("invalid")
		h.showPostJob(w, r, http.StatusUnprocessableEntity, postJobView{Form: form, Errors: errs})
		return
	}

	create := newLoader("jobs.create", none{}, func(ctx context.Context, c domain.Caller, _ none, in domain.NewJob) (domain.Job, error) {
		return h.backend.CreateJob(ctx, c, in)
	})
	job, err := create.Do(r.Context(), form.NewJob(principal(r).User.ID))
	if err != nil {
		metrics.RecordJobPosted("error")
		logger := log.WithContext(r.Context(), h.logger)
		logger.Warn().Err(err).Str(log.FieldEvent, "jobs.create_failed").Msg("job post failed")
		h.showPostJob(w, r, statusFor(err), postJobView{Form: form, Error: create.Err().Message})
		return
	}
	metrics.RecordJobPosted("ok")
	logger := log.WithContext(r.Context(), h.logger)
	logger.Info().Str(log.FieldEvent, "jobs.created").Int64(log.FieldJobID, job.ID).Msg("job posted")
	seeOther(w, r, "/jobs")
}

// addCompany uploads the logo, creates the company and returns to the form
// with the new company selected.
func (h *Handler) addCompany(w http.ResponseWriter, r *http.Request) {
	if h.uploads == nil {
		h.showPostJob(w, r, http.StatusServiceUnavailable, postJobView{CompanyError: "Logo uploads are not available."})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		h.showPostJob(w, r, http.StatusRequestEntityTooLarge, postJobView{CompanyErrors: FieldErrors{fieldCompanyLogo: "Logo is too large"}})
		return
	}

	form := CompanyForm{Name: strings.TrimSpace(r.PostFormValue(fieldCompanyName))}
	file, _, fileErr := r.FormFile(fieldCompanyLogo)
	if fileErr == nil {
		defer func() { _ = file.Close() }()
	}
	retry := func(status int, errs FieldErrors, msg string) {
		h.showPostJob(w, r, status, postJobView{Company: form, CompanyErrors: errs, CompanyError: msg})
	}
	if errs := form.Validate(fileErr == nil); errs.Any() {
		retry(http.StatusUnprocessableEntity, errs, "")
		return
	}

	obj, err := h.uploads.Upload(r.Context(), principal(r).Caller(), storage.KindLogo, "", file)
	if err != nil {
		if storage.IsRejected(err) {
			retry(http.StatusUnprocessableEntity, FieldErrors{fieldCompanyLogo: "Only PNG or JPEG images are allowed"}, "")
			return
		}
		retry(statusFor(err), FieldErrors{}, "Could not upload the logo. Please try again.")
		return
	}

	add := newLoader("companies.add", none{}, func(ctx context.Context, c domain.Caller, _ none, in domain.NewCompany) (domain.Company, error) {
		return h.backend.AddCompany(ctx, c, in)
	})
	company, err := add.Do(r.Context(), domain.NewCompany{Name: form.Name, LogoURL: obj.URL})
	if err != nil {
		retry(statusFor(err), FieldErrors{}, add.Err().Message)
		return
	}
	metrics.RecordCompanyAdded()
	logger := log.WithContext(r.Context(), h.logger)
	logger.Info().Str(log.FieldEvent, "companies.added").Int64(log.FieldCompanyID, company.ID).Msg("company added")

	q := url.Values{"company": {strconv.FormatInt(company.ID, 10)}}
	seeOther(w, r, "/post-job?"+q.Encode())
}
