// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserRole(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
		want Role
	}{
		{"nil metadata", nil, RoleNone},
		{"missing key", map[string]any{"theme": "dark"}, RoleNone},
		{"candidate", map[string]any{"role": "candidate"}, RoleCandidate},
		{"recruiter mixed case", map[string]any{"role": " Recruiter "}, RoleRecruiter},
		{"unknown value", map[string]any{"role": "admin"}, RoleNone},
		{"wrong type", map[string]any{"role": 7}, RoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, User{Metadata: tt.meta}.Role())
		})
	}
}

func TestRoleLanding(t *testing.T) {
	assert.Equal(t, "/post-job", RoleRecruiter.Landing())
	assert.Equal(t, "/jobs", RoleCandidate.Landing())
	assert.False(t, RoleNone.Valid())
}

func TestJobDerivedValues(t *testing.T) {
	j := Job{
		RecruiterID:  "user_r",
		Description:  "Build services. Own the roadmap.",
		IsOpen:       false,
		Applications: []Application{{CandidateID: "user_c"}},
		Saved:        []SavedRef{{ID: 3}},
	}
	assert.Equal(t, "Build services", j.Excerpt())
	assert.Equal(t, "Closed", j.StatusLabel())
	assert.Equal(t, 1, j.ApplicantCount())
	assert.True(t, j.IsSaved())
	assert.True(t, j.OwnedBy("user_r"))
	assert.False(t, j.OwnedBy(""))
	assert.True(t, j.AppliedBy("user_c"))
	assert.False(t, j.AppliedBy("user_x"))

	assert.Equal(t, "No full stop", Job{Description: "No full stop"}.Excerpt())
}

func TestJobFilter(t *testing.T) {
	f := JobFilter{SearchQuery: "  go  ", Location: " Kerala ", CompanyID: -1}.Normalize()
	assert.Equal(t, JobFilter{SearchQuery: "go", Location: "Kerala"}, f)
	assert.False(t, f.IsZero())
	assert.True(t, JobFilter{}.IsZero())

	job := Job{Title: "Senior Go Engineer", Location: "Kerala", CompanyID: 2}
	assert.True(t, f.Matches(job))
	assert.False(t, JobFilter{CompanyID: 3}.Matches(job))
	assert.False(t, JobFilter{Location: "Goa"}.Matches(job))
	assert.False(t, JobFilter{SearchQuery: "rust"}.Matches(job))
}

func TestParseApplicationStatus(t *testing.T) {
	s, ok := ParseApplicationStatus("hired")
	assert.True(t, ok)
	assert.Equal(t, StatusHired, s)

	_, ok = ParseApplicationStatus("ghosted")
	assert.False(t, ok)
}

func TestIsKnownLocation(t *testing.T) {
	assert.True(t, IsKnownLocation("Tamil Nadu"))
	assert.False(t, IsKnownLocation("Bavaria"))
}
