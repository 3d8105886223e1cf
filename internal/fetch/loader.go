// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package fetch provides the gated asynchronous loader that every page uses
// to call the backend. A Loader binds a fetcher to default options and keeps
// three pieces of state: the last value, an in-flight flag and the last error.
//
// Triggers never cancel or de-duplicate each other. When invocations overlap
// the last one to complete wins, and the in-flight flag is cleared by every
// completion.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Fetcher performs one backend call. opts are the loader's bound defaults,
// args are supplied per trigger.
type Fetcher[O, A, T any] func(ctx context.Context, caller domain.Caller, opts O, args A) (T, error)

// CallerSource resolves the session credential for an invocation.
type CallerSource func(ctx context.Context) (domain.Caller, error)

// State is a snapshot of a loader.
type State[T any] struct {
	Data    T
	HasData bool
	Loading bool
	Err     *Failure
}

// Loader wraps a Fetcher with loading/error state.
type Loader[O, A, T any] struct {
	name   string
	fetch  Fetcher[O, A, T]
	caller CallerSource

	mu      sync.RWMutex
	opts    O
	data    T
	hasData bool
	loading bool
	err     *Failure

	inflight sync.WaitGroup
}

// New creates a loader. A nil caller source yields an anonymous caller.
func New[O, A, T any](name string, fn Fetcher[O, A, T], caller CallerSource, opts O) *Loader[O, A, T] {
	if caller == nil {
		caller = func(context.Context) (domain.Caller, error) { return domain.Caller{}, nil }
	}
	return &Loader[O, A, T]{name: name, fetch: fn, caller: caller, opts: opts}
}

// Name returns the loader name used in logs, spans and metrics.
func (l *Loader[O, A, T]) Name() string { return l.name }

// SetOptions rebinds the default options used by later triggers.
func (l *Loader[O, A, T]) SetOptions(opts O) {
	l.mu.Lock()
	l.opts = opts
	l.mu.Unlock()
}

// Options returns the currently bound default options.
func (l *Loader[O, A, T]) Options() O {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.opts
}

// Trigger starts an invocation in the background and returns a channel that
// is closed once it has settled.
func (l *Loader[O, A, T]) Trigger(ctx context.Context, args A) <-chan struct{} {
	opts := l.begin()
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer l.inflight.Done()
		_, _ = l.run(ctx, opts, args)
	}()
	return done
}

// Do runs an invocation on the calling goroutine and returns its own outcome.
// Loader state is updated exactly as for Trigger.
func (l *Loader[O, A, T]) Do(ctx context.Context, args A) (T, error) {
	opts := l.begin()
	defer l.inflight.Done()
	return l.run(ctx, opts, args)
}

// Wait blocks until every invocation started so far has settled or ctx ends.
func (l *Loader[O, A, T]) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		l.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns a snapshot of the loader.
func (l *Loader[O, A, T]) State() State[T] {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return State[T]{Data: l.data, HasData: l.hasData, Loading: l.loading, Err: l.err}
}

// Data returns the last successful result.
func (l *Loader[O, A, T]) Data() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data
}

// Loading reports whether an invocation is in flight.
func (l *Loader[O, A, T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err returns the last failure, or nil after a success.
func (l *Loader[O, A, T]) Err() *Failure {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

func (l *Loader[O, A, T]) begin() O {
	l.inflight.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loading = true
	return l.opts
}

func (l *Loader[O, A, T]) run(ctx context.Context, opts O, args A) (out T, err error) {
	ctx, span := telemetry.Tracer("jobjump/fetch").Start(ctx, "fetch."+l.name,
		trace.WithAttributes(attribute.String(telemetry.LoaderNameKey, l.name)))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			var zero T
			out, err = zero, fmt.Errorf("%s: panic: %v", l.name, r)
		}
		l.settle(out, err)

		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeFailure
			telemetry.RecordError(span, err)
			logger := log.WithComponentFromContext(ctx, "fetch")
			logger.Debug().
				Err(err).
				Str(log.FieldEvent, "fetch.failed").
				Str(log.FieldLoader, l.name).
				Msg("loader invocation failed")
		}
		span.SetAttributes(attribute.String(telemetry.LoaderOutcomeKey, outcome))
		span.End()
		observe(ctx, l.name, outcome, time.Since(start))
	}()

	caller, err := l.caller(ctx)
	if err != nil {
		return out, err
	}
	return l.fetch(ctx, caller, opts, args)
}

func (l *Loader[O, A, T]) settle(out T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.err = AsFailure(err)
	} else {
		l.data = out
		l.hasData = true
		l.err = nil
	}
	l.loading = false
}
