// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import "time"

// ApplicationStatus tracks a candidate through the hiring pipeline.
type ApplicationStatus string

const (
	StatusApplied      ApplicationStatus = "applied"
	StatusInterviewing ApplicationStatus = "interviewing"
	StatusHired        ApplicationStatus = "hired"
	StatusRejected     ApplicationStatus = "rejected"
)

// ApplicationStatuses lists statuses in pipeline order.
var ApplicationStatuses = []ApplicationStatus{StatusApplied, StatusInterviewing, StatusHired, StatusRejected}

// ParseApplicationStatus returns the status and whether it is known.
func ParseApplicationStatus(raw string) (ApplicationStatus, bool) {
	for _, s := range ApplicationStatuses {
		if string(s) == raw {
			return s, true
		}
	}
	return "", false
}

// Education levels accepted on the apply form.
const (
	EducationIntermediate = "Intermediate"
	EducationGraduate     = "Graduate"
	EducationPostGraduate = "Post Graduate"
)

// EducationLevels lists the accepted education values.
var EducationLevels = []string{EducationIntermediate, EducationGraduate, EducationPostGraduate}

// Application is a candidate's application to a job.
type Application struct {
	ID          int64             `json:"id" db:"id"`
	JobID       int64             `json:"job_id" db:"job_id"`
	CandidateID string            `json:"candidate_id" db:"candidate_id"`
	Name        string            `json:"name" db:"name"`
	Status      ApplicationStatus `json:"status" db:"status"`
	Resume      string            `json:"resume" db:"resume"`
	Skills      string            `json:"skills" db:"skills"`
	Experience  int               `json:"experience" db:"experience"`
	Education   string            `json:"education" db:"education"`
	CreatedAt   time.Time         `json:"created_at,omitzero" db:"created_at"`

	Job *Job `json:"job,omitempty" db:"-"`
}

// NewApplication is the payload for ApplyToJob.
type NewApplication struct {
	JobID       int64             `json:"job_id"`
	CandidateID string            `json:"candidate_id"`
	Name        string            `json:"name"`
	Status      ApplicationStatus `json:"status"`
	Resume      string            `json:"resume"`
	Skills      string            `json:"skills"`
	Experience  int               `json:"experience"`
	Education   string            `json:"education"`
}
