// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package fetch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"

	durationMetric = "jobjump.fetch.duration"
)

// observe records one invocation. The meter is looked up at call time so a
// provider installed after package init is honoured.
func observe(ctx context.Context, loader, outcome string, elapsed time.Duration) {
	meter := otel.GetMeterProvider().Meter("jobjump/fetch")
	hist, err := meter.Float64Histogram(durationMetric,
		metric.WithDescription("Loader invocation duration"),
		metric.WithUnit("s"))
	if err != nil {
		return
	}
	hist.Record(context.WithoutCancel(ctx), elapsed.Seconds(), metric.WithAttributes(
		attribute.String("loader", loader),
		attribute.String("outcome", outcome),
	))
}
