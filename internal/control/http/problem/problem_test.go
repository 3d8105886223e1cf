package problem

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
)

func TestWriteProblem(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/7", nil)
	req = req.WithContext(log.ContextWithRequestID(req.Context(), "req-1"))
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusNotFound, "jobs/not_found", "Not Found", "NOT_FOUND", "job 7", map[string]any{"status": 200, "jobId": 7})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "jobs/not_found", body["type"])
	assert.Equal(t, float64(404), body["status"], "reserved keys cannot be overridden")
	assert.Equal(t, "/api/v1/jobs/7", body["instance"])
	assert.Equal(t, "req-1", body[JSONKeyRequestID])
	assert.Equal(t, float64(7), body["jobId"])
}

func TestFromError(t *testing.T) {
	errDown := errors.New("down")
	unavailable := func(err error) bool { return errors.Is(err, errDown) }

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("x: %w", domain.ErrInvalid), http.StatusUnprocessableEntity},
		{errDown, http.StatusServiceUnavailable},
		{errors.New("secret upstream detail"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		FromError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, unavailable)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
		assert.NotContains(t, rec.Body.String(), "secret upstream detail")
	}
}
