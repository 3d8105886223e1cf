// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import (
	"strings"
	"time"
)

// Job is a job posting owned by a recruiter.
type Job struct {
	ID           int64     `json:"id" db:"id"`
	RecruiterID  string    `json:"recruiter_id" db:"recruiter_id"`
	Title        string    `json:"title" db:"title"`
	Description  string    `json:"description" db:"description"`
	Location     string    `json:"location" db:"location"`
	CompanyID    int64     `json:"company_id" db:"company_id"`
	Requirements string    `json:"requirements" db:"requirements"`
	IsOpen       bool      `json:"isOpen" db:"is_open"`
	CreatedAt    time.Time `json:"created_at,omitzero" db:"created_at"`

	Company      *Company      `json:"company,omitempty" db:"-"`
	Applications []Application `json:"applications,omitempty" db:"-"`
	Saved        []SavedRef    `json:"saved,omitempty" db:"-"`
}

// SavedRef marks that the caller has saved a job.
type SavedRef struct {
	ID int64 `json:"id"`
}

// NewJob is the payload for CreateJob.
type NewJob struct {
	RecruiterID  string `json:"recruiter_id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Location     string `json:"location"`
	CompanyID    int64  `json:"company_id"`
	Requirements string `json:"requirements"`
	IsOpen       bool   `json:"isOpen"`
}

// IsSaved reports whether the caller has saved this job.
func (j Job) IsSaved() bool { return len(j.Saved) > 0 }

// ApplicantCount is the number of embedded applications.
func (j Job) ApplicantCount() int { return len(j.Applications) }

// StatusLabel is "Open" or "Closed".
func (j Job) StatusLabel() string {
	if j.IsOpen {
		return "Open"
	}
	return "Closed"
}

// OwnedBy reports whether userID posted this job.
func (j Job) OwnedBy(userID string) bool {
	return userID != "" && j.RecruiterID == userID
}

// AppliedBy reports whether userID has an application on this job.
func (j Job) AppliedBy(userID string) bool {
	for _, a := range j.Applications {
		if a.CandidateID == userID {
			return true
		}
	}
	return false
}

// Excerpt returns the description up to its first full stop, or the whole
// description when it has none.
func (j Job) Excerpt() string {
	if i := strings.Index(j.Description, "."); i >= 0 {
		return j.Description[:i]
	}
	return j.Description
}

// CompanyName returns the embedded company name, if any.
func (j Job) CompanyName() string {
	if j.Company == nil {
		return ""
	}
	return j.Company.Name
}
