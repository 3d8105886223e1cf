// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package middleware provides the HTTP ingress middleware shared by the web
// pages and the JSON API.
package middleware

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/jobjump/internal/control/http/problem"
	"github.com/ManuGH/jobjump/internal/telemetry"
)

var untracedPaths = map[string]bool{
	"/healthz": true,
	"/readyz":  true,
	"/livez":   true,
	"/metrics": true,
}

func shouldTrace(r *http.Request) bool {
	return !untracedPaths[r.URL.Path] && !strings.HasPrefix(r.URL.Path, "/static/")
}

// spanNameFormatter never includes query values; the callback carries the
// OAuth code and state.
func spanNameFormatter(operation string, r *http.Request) string {
	name := operation + " " + r.URL.Path
	if r.URL.RawQuery != "" {
		name += "?"
	}
	return name
}

// Tracing starts a server span per request, continuing any W3C trace
// context from the caller. After routing it stamps the chi route pattern and
// final status onto the span.
func Tracing(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			span := trace.SpanFromContext(r.Context())
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			span.SetAttributes(telemetry.HTTPAttributes(r.Method, routePattern(r), status)...)
			if reqID := ww.Header().Get(problem.HeaderRequestID); reqID != "" {
				span.SetAttributes(attribute.String("http.request_id", reqID))
			}
			if status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(status))
			}
		})
		return otelhttp.NewHandler(annotated, service,
			otelhttp.WithFilter(shouldTrace),
			otelhttp.WithSpanNameFormatter(spanNameFormatter),
		)
	}
}

// ExtractTraceContext returns the hex trace and span ids of the request span.
func ExtractTraceContext(r *http.Request) (traceID, spanID string) {
	sc := trace.SpanContextFromContext(r.Context())
	if !sc.IsValid() {
		return "", ""
	}
	return sc.TraceID().String(), sc.SpanID().String()
}

// AddSpanAttributes annotates the request span.
func AddSpanAttributes(r *http.Request, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(r.Context()).SetAttributes(attrs...)
}

// SpanFromContext returns the request span.
func SpanFromContext(r *http.Request) trace.Span {
	return trace.SpanFromContext(r.Context())
}
