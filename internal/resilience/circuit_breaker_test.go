// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type mockClock struct {
	now time.Time
}

func (m *mockClock) Now() time.Time { return m.now }

var errUpstream = errors.New("upstream down")

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-open", 3, 10*time.Second, WithClock(clock))

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errUpstream }), errUpstream)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-probe", 1, 10*time.Second, WithClock(clock))

	_ = cb.Execute(func() error { return errUpstream })
	assert.Equal(t, StateOpen, cb.State())

	clock.now = clock.now.Add(11 * time.Second)
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-reopen", 1, 10*time.Second, WithClock(clock))

	_ = cb.Execute(func() error { return errUpstream })
	clock.now = clock.now.Add(11 * time.Second)
	_ = cb.Execute(func() error { return errUpstream })
	assert.Equal(t, StateOpen, cb.State())

	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)
}

func TestCircuitBreaker_FailurePredicate(t *testing.T) {
	errNotFound := errors.New("not found")
	cb := NewCircuitBreaker("test-predicate", 1, time.Minute,
		WithFailurePredicate(func(err error) bool { return !errors.Is(err, errNotFound) }))

	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errNotFound }), errNotFound)
	}
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_NeutralErrorsLeaveStateAlone(t *testing.T) {
	errGone := errors.New("caller went away")
	clock := &mockClock{now: time.Now()}
	cb := NewCircuitBreaker("test-neutral", 2, 10*time.Second, WithClock(clock),
		WithNeutralPredicate(func(err error) bool { return errors.Is(err, errGone) }))

	_ = cb.Execute(func() error { return errUpstream })
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, cb.Execute(func() error { return errGone }), errGone)
	}
	assert.Equal(t, StateClosed, cb.State())

	// The neutral calls did not reset the count: one more failure trips it.
	_ = cb.Execute(func() error { return errUpstream })
	assert.Equal(t, StateOpen, cb.State())

	// A neutral probe stays half-open and frees the slot for the next probe.
	clock.now = clock.now.Add(11 * time.Second)
	_ = cb.Execute(func() error { return errGone })
	assert.Equal(t, StateHalfOpen, cb.State())
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, StateClosed, cb.State())
}
