package web

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ManuGH/jobjump/internal/domain"
)

// Query keys of the job listing. "search-query" is what the visitor typed,
// "q" carries the query already in effect.
const (
	querySearch   = "search-query"
	queryCurrent  = "q"
	queryLocation = "location"
	queryCompany  = "company_id"
)

// filterFromQuery derives the listing filter from the request. An empty
// search submission keeps the query already in effect; unknown locations and
// malformed company ids are dropped.
func filterFromQuery(q url.Values) domain.JobFilter {
	search := strings.TrimSpace(q.Get(querySearch))
	if search == "" {
		search = q.Get(queryCurrent)
	}

	f := domain.JobFilter{SearchQuery: search}
	if loc := strings.TrimSpace(q.Get(queryLocation)); domain.IsKnownLocation(loc) {
		f.Location = loc
	}
	if id, err := strconv.ParseInt(q.Get(queryCompany), 10, 64); err == nil {
		f.CompanyID = id
	}
	return f.Normalize()
}

// safeReturn accepts only same-site absolute paths as post-action targets.
func safeReturn(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return fallback
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return u.RequestURI()
}
