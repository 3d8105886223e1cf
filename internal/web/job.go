// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
	"github.com/ManuGH/jobjump/internal/storage"
	"github.com/ManuGH/jobjump/internal/telemetry"
)

// multipartOverhead is the allowance for form fields around an upload.
const multipartOverhead = 1 << 20

type jobView struct {
	Job             domain.Job
	UserID          string
	IsOwner         bool
	Applied         bool
	Apply           ApplyForm
	ApplyErrors     FieldErrors
	ApplyError      string
	StatusError     string
	Statuses        []domain.ApplicationStatus
	EducationLevels []string
	Return          string
}

func (h *Handler) jobLoader(id int64) func(ctx context.Context) (domain.Job, error) {
	l := newLoader("job.get", id, func(ctx context.Context, c domain.Caller, id int64, _ none) (domain.Job, error) {
		return h.backend.GetJob(ctx, c, id)
	})
	return func(ctx context.Context) (domain.Job, error) { return l.Do(ctx, none{}) }
}

func (h *Handler) jobPage(w http.ResponseWriter, r *http.Request) {
	h.showJob(w, r, http.StatusOK, nil)
}

// showJob loads the job and renders it. patch adjusts the view, e.g. to
// carry form errors back to the visitor.
func (h *Handler) showJob(w http.ResponseWriter, r *http.Request, status int, patch func(*jobView)) {
	id, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "This job does not exist.")
		return
	}
	telemetry.SetJobID(r.Context(), id)
	job, err := h.jobLoader(id)(r.Context())
	if err != nil {
		h.fail(w, r, "job.load_failed", err)
		return
	}

	userID := principal(r).User.ID
	v := jobView{
		Job:             job,
		UserID:          userID,
		IsOwner:         job.OwnedBy(userID),
		Applied:         job.AppliedBy(userID),
		ApplyErrors:     FieldErrors{},
		Statuses:        domain.ApplicationStatuses,
		EducationLevels: domain.EducationLevels,
		Return:          fmt.Sprintf("/job/%d", job.ID),
	}
	if patch != nil {
		patch(&v)
	}
	h.render(w, r, status, "job", job.Title, v)
}

// updateHiringStatus sets the job open or closed and reloads the page.
func (h *Handler) updateHiringStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "This job does not exist.")
		return
	}
	var isOpen bool
	switch r.PostFormValue("status") {
	case "open":
		isOpen = true
	case "closed":
	default:
		h.showJob(w, r, http.StatusUnprocessableEntity, func(v *jobView) { v.StatusError = "Choose Open or Closed." })
		return
	}

	update := newLoader("job.hiring_status", id, func(ctx context.Context, c domain.Caller, id int64, open bool) (domain.Job, error) {
		return h.backend.UpdateHiringStatus(ctx, c, id, open)
	})
	if _, err := update.Do(r.Context(), isOpen); err != nil {
		logger := log.WithContext(r.Context(), h.logger)
		logger.Warn().Err(err).Str(log.FieldEvent, "job.hiring_status_failed").Int64(log.FieldJobID, id).Msg("hiring status update failed")
		msg := update.Err().Message
		h.showJob(w, r, statusFor(err), func(v *jobView) { v.StatusError = msg })
		return
	}
	metrics.RecordHiringStatus(isOpen)
	seeOther(w, r, fmt.Sprintf("/job/%d", id))
}

// apply validates the form, uploads the resume and creates the application.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.renderError(w, r, http.StatusNotFound, "This job does not exist.")
		return
	}
	user := principal(r).User
	retry := func(status int, form ApplyForm, errs FieldErrors, msg string) {
		h.showJob(w, r, status, func(v *jobView) {
			v.Apply, v.ApplyErrors, v.ApplyError = form, errs, msg
		})
	}

	if h.uploads == nil {
		retry(http.StatusServiceUnavailable, ApplyForm{}, FieldErrors{}, "Resume uploads are not available.")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.uploads.MaxBytes()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		metrics.RecordApplication("rejected")
		retry(http.StatusRequestEntityTooLarge, ApplyForm{}, FieldErrors{fieldResume: "Resume is too large"}, "")
		return
	}

	form := applyFormFrom(r.PostForm)
	file, _, fileErr := r.FormFile(fieldResume)
	if fileErr == nil {
		defer func() { _ = file.Close() }()
	}
	if errs := form.Validate(fileErr == nil); errs.Any() {
		metrics.RecordApplication("invalid")
		retry(http.StatusUnprocessableEntity, form, errs, "")
		return
	}

	caller := principal(r).Caller()
	obj, err := h.uploads.Upload(r.Context(), caller, storage.KindResume, strconv.FormatInt(id, 10)+"-"+user.ID, file)
	if err != nil {
		if storage.IsRejected(err) {
			metrics.RecordApplication("rejected")
			retry(http.StatusUnprocessableEntity, form, FieldErrors{fieldResume: "Only PDF or Word documents are allowed"}, "")
			return
		}
		metrics.RecordApplication("error")
		retry(statusFor(err), form, FieldErrors{}, "Could not upload your resume. Please try again.")
		return
	}

	create := newLoader("job.apply", none{}, func(ctx context.Context, c domain.Caller, _ none, in domain.NewApplication) (domain.Application, error) {
		return h.backend.ApplyToJob(ctx, c, in)
	})
	app, err := create.Do(r.Context(), form.NewApplication(id, user, obj.URL))
	if err != nil {
		metrics.RecordApplication("error")
		retry(statusFor(err), form, FieldErrors{}, create.Err().Message)
		return
	}
	metrics.RecordApplication("ok")
	logger := log.WithContext(r.Context(), h.logger)
	logger.Info().
		Str(log.FieldEvent, "applications.created").
		Int64(log.FieldJobID, id).
		Int64(log.FieldApplicationID, app.ID).
		Msg("application submitted")
	seeOther(w, r, fmt.Sprintf("/job/%d", id))
}

// updateApplicationStatus changes one applicant's status on the owner view.
func (h *Handler) updateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	appID, ok2 := pathID(r, "appID")
	if !ok || !ok2 {
		h.renderError(w, r, http.StatusNotFound, "This application does not exist.")
		return
	}
	status, valid := domain.ParseApplicationStatus(r.PostFormValue("status"))
	if !valid {
		h.showJob(w, r, http.StatusUnprocessableEntity, func(v *jobView) { v.StatusError = "Unknown application status." })
		return
	}

	update := newLoader("application.status", appID, func(ctx context.Context, c domain.Caller, appID int64, s domain.ApplicationStatus) (domain.Application, error) {
		return h.backend.UpdateApplicationStatus(ctx, c, appID, s)
	})
	if _, err := update.Do(r.Context(), status); err != nil {
		msg := update.Err().Message
		h.showJob(w, r, statusFor(err), func(v *jobView) { v.StatusError = msg })
		return
	}
	metrics.RecordApplicationStatus(string(status))
	seeOther(w, r, fmt.Sprintf("/job/%d", id))
}
