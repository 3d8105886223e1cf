// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_LogsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	Reconfigure(Config{Level: "info", Output: &buf, Service: "test"})
	t.Cleanup(func() { Reconfigure(Config{}) })

	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/job/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/job/12", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "request.handled", entry[FieldEvent])
	assert.Equal(t, "/job/{id}", entry[FieldRoute])
	assert.Equal(t, "/job/12", entry[FieldPath])
	assert.EqualValues(t, http.StatusTeapot, entry[FieldStatus])
	assert.Equal(t, "warn", entry["level"])
}
