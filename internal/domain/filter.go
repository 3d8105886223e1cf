// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package domain

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// JobFilter narrows the job listing. Zero values mean "no constraint".
type JobFilter struct {
	SearchQuery string
	Location    string
	CompanyID   int64
}

// Normalize trims the filter and brings the search text to NFC so composed
// and decomposed input match the same titles.
func (f JobFilter) Normalize() JobFilter {
	f.SearchQuery = norm.NFC.String(strings.TrimSpace(f.SearchQuery))
	f.Location = strings.TrimSpace(f.Location)
	if f.CompanyID < 0 {
		f.CompanyID = 0
	}
	return f
}

// IsZero reports whether no constraint is set.
func (f JobFilter) IsZero() bool {
	return f.SearchQuery == "" && f.Location == "" && f.CompanyID == 0
}

// Matches applies the filter to a job: case-insensitive title substring,
// exact location and company.
func (f JobFilter) Matches(j Job) bool {
	if f.Location != "" && j.Location != f.Location {
		return false
	}
	if f.CompanyID != 0 && j.CompanyID != f.CompanyID {
		return false
	}
	if f.SearchQuery != "" &&
		!strings.Contains(strings.ToLower(j.Title), strings.ToLower(f.SearchQuery)) {
		return false
	}
	return true
}
