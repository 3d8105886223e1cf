// SPDX-License-Identifier: MIT

// Package metrics holds the Prometheus collectors for jobjump.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsPosted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_jobs_posted_total",
		Help: "Job postings submitted by outcome",
	}, []string{"outcome"}) // outcome=success|invalid|failure

	jobsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobjump_jobs_deleted_total",
		Help: "Job postings deleted by their recruiter",
	})

	hiringStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_hiring_status_changes_total",
		Help: "Hiring status toggles by resulting state",
	}, []string{"state"}) // state=open|closed

	applicationsSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_applications_submitted_total",
		Help: "Job applications submitted by outcome",
	}, []string{"outcome"})

	applicationStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_application_status_changes_total",
		Help: "Application status updates by new status",
	}, []string{"status"})

	savedJobsToggled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_saved_jobs_toggled_total",
		Help: "Saved-job toggles by action",
	}, []string{"action"}) // action=save|unsave

	companiesAdded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobjump_companies_added_total",
		Help: "Companies created from the post-job page",
	})

	rolesSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_roles_selected_total",
		Help: "Onboarding role selections",
	}, []string{"role"})

	signIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_sign_ins_total",
		Help: "Sign-in callback outcomes",
	}, []string{"outcome"})

	gateRedirects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_gate_redirects_total",
		Help: "Route gate redirects by route pattern and target",
	}, []string{"route", "target"})

	uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_uploads_total",
		Help: "Blob uploads by kind and outcome",
	}, []string{"kind", "outcome"})

	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_upstream_requests_total",
		Help: "Data API requests by operation and outcome",
	}, []string{"operation", "outcome"})

	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "jobjump_upstream_request_duration_seconds",
		Help:    "Data API request latency by operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"}) // result=hit|miss

	configValidationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jobjump_config_validation_errors_total",
		Help: "Total number of configuration validation errors",
	})
)

// RecordJobPosted counts a post-job submission.
func RecordJobPosted(outcome string) { jobsPosted.WithLabelValues(outcome).Inc() }

// RecordJobDeleted counts a deleted job.
func RecordJobDeleted() { jobsDeleted.Inc() }

// RecordHiringStatus counts a hiring status toggle.
func RecordHiringStatus(open bool) {
	state := "closed"
	if open {
		state = "open"
	}
	hiringStatusChanges.WithLabelValues(state).Inc()
}

// RecordApplication counts an application submission.
func RecordApplication(outcome string) { applicationsSubmitted.WithLabelValues(outcome).Inc() }

// RecordApplicationStatus counts an application status change.
func RecordApplicationStatus(status string) { applicationStatusChanges.WithLabelValues(status).Inc() }

// RecordSavedToggle counts a save or unsave.
func RecordSavedToggle(saved bool) {
	action := "unsave"
	if saved {
		action = "save"
	}
	savedJobsToggled.WithLabelValues(action).Inc()
}

// RecordCompanyAdded counts a created company.
func RecordCompanyAdded() { companiesAdded.Inc() }

// RecordRoleSelected counts an onboarding choice.
func RecordRoleSelected(role string) { rolesSelected.WithLabelValues(role).Inc() }

// RecordSignIn counts a sign-in callback.
func RecordSignIn(outcome string) { signIns.WithLabelValues(outcome).Inc() }

// RecordGateRedirect counts a route gate redirect.
func RecordGateRedirect(route, target string) { gateRedirects.WithLabelValues(route, target).Inc() }

// RecordUpload counts a blob upload.
func RecordUpload(kind, outcome string) { uploads.WithLabelValues(kind, outcome).Inc() }

// ObserveUpstream records one data API call.
func ObserveUpstream(operation, outcome string, elapsed time.Duration) {
	upstreamRequests.WithLabelValues(operation, outcome).Inc()
	upstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordCacheLookup counts a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(cache, result).Inc()
}

// IncConfigValidationError counts a rejected configuration.
func IncConfigValidationError() { configValidationErrors.Inc() }
