// Package problem writes RFC 7807 problem documents.
package problem

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
)

const (
	// HeaderRequestID is the canonical header for request correlation.
	HeaderRequestID = "X-Request-ID"
	// JSONKeyRequestID is the problem extension carrying the request id.
	JSONKeyRequestID = "requestId"
	// ContentType is the media type of problem documents.
	ContentType = "application/problem+json"
)

// Write writes an RFC 7807 problem details response.
//
//   - problemType: machine identifier such as "jobs/not_found"
//   - title: short human label such as "Not Found"
//   - code: stable upper-case code such as "NOT_FOUND"
//   - detail: explanation of this occurrence, may be empty
func Write(w http.ResponseWriter, r *http.Request, status int, problemType, title, code, detail string, extra map[string]any) {
	instance := ""
	reqID := ""
	if r != nil {
		instance = r.URL.EscapedPath()
		reqID = log.RequestIDFromContext(r.Context())
	}
	if reqID == "" {
		reqID = w.Header().Get(HeaderRequestID)
	}

	res := map[string]any{
		"type":   problemType,
		"title":  title,
		"status": status,
		"code":   code,
	}
	if reqID != "" {
		res[JSONKeyRequestID] = reqID
	}
	if detail != "" {
		res["detail"] = detail
	}
	if instance != "" {
		res["instance"] = instance
	}
	for k, v := range extra {
		switch k {
		case "type", "title", "status", "detail", "instance", "code":
			log.L().Warn().Str("key", k).Str("problem_type", problemType).Msg("ignoring reserved key in problem extras")
			continue
		}
		res[k] = v
	}

	if reqID != "" {
		w.Header().Set(HeaderRequestID, reqID)
	}
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.L().Error().
			Err(err).
			Str("type", problemType).
			Int("status", status).
			Msg("failed to encode problem response")
	}
}

// FromError maps backend errors onto a problem response. Unknown errors are
// reported as upstream failures without leaking their text.
func FromError(w http.ResponseWriter, r *http.Request, err error, unavailable func(error) bool) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		Write(w, r, http.StatusNotFound, "jobs/not_found", "Not Found", "NOT_FOUND", "", nil)
	case errors.Is(err, domain.ErrForbidden):
		Write(w, r, http.StatusForbidden, "auth/forbidden", "Forbidden", "FORBIDDEN", "", nil)
	case errors.Is(err, domain.ErrInvalid):
		Write(w, r, http.StatusUnprocessableEntity, "jobs/invalid", "Invalid Request", "INVALID", "", nil)
	case unavailable != nil && unavailable(err):
		Write(w, r, http.StatusServiceUnavailable, "upstream/unavailable", "Service Unavailable", "UPSTREAM_UNAVAILABLE", "", nil)
	default:
		Write(w, r, http.StatusBadGateway, "upstream/error", "Bad Gateway", "UPSTREAM_ERROR", "", nil)
	}
}
