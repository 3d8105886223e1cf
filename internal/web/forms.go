// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package web

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/ManuGH/jobjump/internal/domain"
)

// FieldErrors maps form field names to the message shown next to them.
type FieldErrors map[string]string

// Any reports whether at least one field failed.
func (e FieldErrors) Any() bool { return len(e) > 0 }

// Form field names shared by handlers and templates.
const (
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldLocation     = "location"
	fieldCompanyID    = "company_id"
	fieldRequirements = "requirements"

	fieldExperience = "experience"
	fieldSkills     = "skills"
	fieldEducation  = "education"
	fieldResume     = "resume"

	fieldCompanyName = "name"
	fieldCompanyLogo = "logo"
)

// PostJobForm is the raw input of the post-job form.
type PostJobForm struct {
	Title        string
	Description  string
	Location     string
	CompanyID    string
	Requirements string
}

func postJobFormFrom(v url.Values) PostJobForm {
	return PostJobForm{
		Title:        strings.TrimSpace(v.Get(fieldTitle)),
		Description:  strings.TrimSpace(v.Get(fieldDescription)),
		Location:     strings.TrimSpace(v.Get(fieldLocation)),
		CompanyID:    strings.TrimSpace(v.Get(fieldCompanyID)),
		Requirements: strings.TrimSpace(v.Get(fieldRequirements)),
	}
}

// Validate checks every field and reports each missing one separately.
func (f PostJobForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if f.Title == "" {
		errs[fieldTitle] = "Title is required"
	}
	if f.Description == "" {
		errs[fieldDescription] = "Description is required"
	}
	if !domain.IsKnownLocation(f.Location) {
		errs[fieldLocation] = "Select a location"
	}
	if _, ok := f.companyID(); !ok {
		errs[fieldCompanyID] = "Select or Add a new Company"
	}
	if f.Requirements == "" {
		errs[fieldRequirements] = "Requirements are required"
	}
	return errs
}

func (f PostJobForm) companyID() (int64, bool) {
	id, err := strconv.ParseInt(f.CompanyID, 10, 64)
	return id, err == nil && id > 0
}

// NewJob converts a validated form. Posted jobs start open.
func (f PostJobForm) NewJob(recruiterID string) domain.NewJob {
	id, _ := f.companyID()
	return domain.NewJob{
		RecruiterID:  recruiterID,
		Title:        f.Title,
		Description:  f.Description,
		Location:     f.Location,
		CompanyID:    id,
		Requirements: f.Requirements,
		IsOpen:       true,
	}
}

// ApplyForm is the raw input of the apply form, without the resume file.
type ApplyForm struct {
	Experience string
	Skills     string
	Education  string
}

func applyFormFrom(v url.Values) ApplyForm {
	return ApplyForm{
		Experience: strings.TrimSpace(v.Get(fieldExperience)),
		Skills:     strings.TrimSpace(v.Get(fieldSkills)),
		Education:  strings.TrimSpace(v.Get(fieldEducation)),
	}
}

// Validate checks the text fields and whether a resume was attached.
func (f ApplyForm) Validate(hasResume bool) FieldErrors {
	errs := FieldErrors{}
	switch n, err := strconv.Atoi(f.Experience); {
	case f.Experience == "":
		errs[fieldExperience] = "Experience is required"
	case err != nil:
		errs[fieldExperience] = "Experience must be a whole number"
	case n < 0:
		errs[fieldExperience] = "Experience must be at least 0"
	}
	if f.Skills == "" {
		errs[fieldSkills] = "Skills are required"
	}
	if !slices.Contains(domain.EducationLevels, f.Education) {
		errs[fieldEducation] = "Education is required"
	}
	if !hasResume {
		errs[fieldResume] = "Resume is required"
	}
	return errs
}

// NewApplication converts a validated form.
func (f ApplyForm) NewApplication(jobID int64, user domain.User, resumeURL string) domain.NewApplication {
	exp, _ := strconv.Atoi(f.Experience)
	return domain.NewApplication{
		JobID:       jobID,
		CandidateID: user.ID,
		Name:        user.FullName(),
		Status:      domain.StatusApplied,
		Resume:      resumeURL,
		Skills:      f.Skills,
		Experience:  exp,
		Education:   f.Education,
	}
}

// CompanyForm is the raw input of the add-company form, without the logo.
type CompanyForm struct {
	Name string
}

// Validate checks the name and whether a logo was attached.
func (f CompanyForm) Validate(hasLogo bool) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Name) == "" {
		errs[fieldCompanyName] = "Company name is required"
	}
	if !hasLogo {
		errs[fieldCompanyLogo] = "Logo is required"
	}
	return errs
}
