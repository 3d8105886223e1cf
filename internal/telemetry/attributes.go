// SPDX-License-Identifier: MIT

package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing across the application.
const (
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	LoaderNameKey    = "loader.name"
	LoaderOutcomeKey = "loader.outcome"

	UpstreamOperationKey = "upstream.operation"
	UpstreamStatusKey    = "upstream.status"

	JobIDKey     = "job.id"
	UserRoleKey  = "user.role"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// RecordError marks the span as failed. A nil error is ignored.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetAttributes(attribute.String(ErrorTypeKey, fmt.Sprintf("%T", err)))
	span.SetStatus(codes.Error, err.Error())
}

// SetJobID tags the active span with the job being served.
func SetJobID(ctx context.Context, id int64) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int64(JobIDKey, id))
}

// SetUserRole tags the active span with the caller's role.
func SetUserRole(ctx context.Context, role string) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String(UserRoleKey, role))
}
