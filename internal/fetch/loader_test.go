// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package fetch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type filterOpts struct {
	Location string
}

var errBackend = errors.New("backend rejected request")

func staticCaller(ctx context.Context) (domain.Caller, error) {
	return domain.Caller{UserID: "user_1", Token: "tok"}, nil
}

func TestLoader_SuccessStoresResultAndClearsError(t *testing.T) {
	fail := true
	l := New("jobs", func(_ context.Context, _ domain.Caller, _ filterOpts, _ struct{}) (int, error) {
		if fail {
			return 0, errBackend
		}
		return 42, nil
	}, staticCaller, filterOpts{})

	_, err := l.Do(context.Background(), struct{}{})
	require.Error(t, err)
	require.NotNil(t, l.Err())

	fail = false
	got, err := l.Do(context.Background(), struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	st := l.State()
	assert.Equal(t, 42, st.Data)
	assert.True(t, st.HasData)
	assert.Nil(t, st.Err)
	assert.False(t, st.Loading)
}

func TestLoader_FailureKeepsPriorResult(t *testing.T) {
	calls := 0
	l := New("job", func(_ context.Context, _ domain.Caller, _ struct{}, _ struct{}) (string, error) {
		calls++
		if calls == 1 {
			return "first", nil
		}
		return "", errBackend
	}, staticCaller, struct{}{})

	_, _ = l.Do(context.Background(), struct{}{})
	_, err := l.Do(context.Background(), struct{}{})
	require.ErrorIs(t, err, errBackend)

	st := l.State()
	assert.Equal(t, "first", st.Data)
	require.NotNil(t, st.Err)
	assert.Equal(t, errBackend.Error(), st.Err.Message)
	assert.ErrorIs(t, st.Err, errBackend)
	assert.False(t, st.Loading)
}

func TestLoader_LoadingDuringInvocation(t *testing.T) {
	release := make(chan struct{})
	l := New("slow", func(_ context.Context, _ domain.Caller, _ struct{}, _ struct{}) (int, error) {
		<-release
		return 1, nil
	}, staticCaller, struct{}{})

	done := l.Trigger(context.Background(), struct{}{})
	assert.True(t, l.Loading())

	close(release)
	<-done
	assert.False(t, l.Loading())
	assert.Equal(t, 1, l.Data())
}

func TestLoader_PassesBoundOptionsAndArgs(t *testing.T) {
	type seen struct {
		caller domain.Caller
		opts   filterOpts
		args   bool
	}
	var got seen
	l := New("status", func(_ context.Context, c domain.Caller, o filterOpts, isOpen bool) (struct{}, error) {
		got = seen{caller: c, opts: o, args: isOpen}
		return struct{}{}, nil
	}, staticCaller, filterOpts{Location: "Goa"})

	_, err := l.Do(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, "user_1", got.caller.UserID)
	assert.Equal(t, "Goa", got.opts.Location)
	assert.True(t, got.args)

	l.SetOptions(filterOpts{})
	_, err = l.Do(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, got.opts.Location)
	assert.Equal(t, filterOpts{}, l.Options())
}

func TestLoader_OverlappingTriggersLastCompletionWins(t *testing.T) {
	gates := map[int]chan struct{}{1: make(chan struct{}), 2: make(chan struct{})}
	l := New("race", func(_ context.Context, _ domain.Caller, _ struct{}, n int) (int, error) {
		<-gates[n]
		return n, nil
	}, staticCaller, struct{}{})

	first := l.Trigger(context.Background(), 1)
	second := l.Trigger(context.Background(), 2)

	close(gates[2])
	<-second
	assert.Equal(t, 2, l.Data())
	// The completion of the second invocation clears the flag even though the
	// first is still in flight.
	assert.False(t, l.Loading())

	close(gates[1])
	<-first
	assert.Equal(t, 1, l.Data())
	require.NoError(t, l.Wait(context.Background()))
}

func TestLoader_CallerSourceError(t *testing.T) {
	var calls atomic.Int32
	errNoSession := errors.New("not signed in")
	l := New("saved", func(_ context.Context, _ domain.Caller, _ struct{}, _ struct{}) (int, error) {
		calls.Add(1)
		return 1, nil
	}, func(context.Context) (domain.Caller, error) { return domain.Caller{}, errNoSession }, struct{}{})

	_, err := l.Do(context.Background(), struct{}{})
	assert.ErrorIs(t, err, errNoSession)
	assert.Zero(t, calls.Load())
	assert.False(t, l.Loading())
	assert.NotNil(t, l.Err())
}

func TestLoader_PanicSettlesAsFailure(t *testing.T) {
	l := New("panicky", func(_ context.Context, _ domain.Caller, _ struct{}, _ struct{}) (int, error) {
		panic("boom")
	}, nil, struct{}{})

	<-l.Trigger(context.Background(), struct{}{})
	st := l.State()
	assert.False(t, st.Loading)
	require.NotNil(t, st.Err)
	assert.Contains(t, st.Err.Message, "boom")
	assert.False(t, st.HasData)
}

func TestLoader_WaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	l := New("stuck", func(_ context.Context, _ domain.Caller, _ struct{}, _ struct{}) (int, error) {
		<-release
		return 0, nil
	}, nil, struct{}{})

	l.Trigger(context.Background(), struct{}{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, l.Wait(context.Background()))
}

func TestAsFailure(t *testing.T) {
	assert.Nil(t, AsFailure(nil))

	f := &Failure{Message: "Title is required"}
	assert.Same(t, f, AsFailure(f))

	wrapped := AsFailure(errBackend)
	assert.Equal(t, errBackend.Error(), wrapped.Error())
	assert.ErrorIs(t, wrapped, errBackend)
}
