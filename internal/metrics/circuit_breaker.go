// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Breakers are named after the upstream they guard ("dataapi").
var (
	upstreamBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "jobjump_upstream_breaker_state",
		Help: "Upstream circuit breaker state; the active state is 1, the others 0",
	}, []string{"upstream", "state"})

	upstreamBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_upstream_breaker_trips_total",
		Help: "Upstream circuit breaker transitions to open, by trigger",
	}, []string{"upstream", "trigger"})

	upstreamBreakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jobjump_upstream_breaker_rejections_total",
		Help: "Page and API calls refused without contacting the upstream because its breaker was open",
	}, []string{"upstream"})
)

var breakerStates = []string{"closed", "half-open", "open"}

// SetCircuitBreakerState marks state as the active one for upstream.
func SetCircuitBreakerState(upstream, state string) {
	for _, s := range breakerStates {
		v := 0.0
		if s == state {
			v = 1
		}
		upstreamBreakerState.WithLabelValues(upstream, s).Set(v)
	}
}

// RecordCircuitBreakerTrip counts an open transition. trigger is
// "threshold_exceeded" or "half_open_failure".
func RecordCircuitBreakerTrip(upstream, trigger string) {
	upstreamBreakerTrips.WithLabelValues(upstream, trigger).Inc()
}

// RecordCircuitBreakerRejection counts a call short-circuited by an open breaker.
func RecordCircuitBreakerRejection(upstream string) {
	upstreamBreakerRejections.WithLabelValues(upstream).Inc()
}
