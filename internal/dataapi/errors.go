// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/resilience"
)

// Sentinel errors for data API failures. NotFound, Forbidden and Rejected
// wrap the domain sentinels so callers can match either.
var (
	ErrNotFound            = fmt.Errorf("upstream: %w", domain.ErrNotFound)
	ErrForbidden           = fmt.Errorf("upstream: %w", domain.ErrForbidden)
	ErrRejected            = fmt.Errorf("upstream: %w", domain.ErrInvalid)
	ErrUpstreamUnavailable = errors.New("upstream: unavailable")
	ErrUpstreamError       = errors.New("upstream: server error")
	ErrBadResponse         = errors.New("upstream: invalid response")
	ErrTimeout             = errors.New("upstream: timeout")
	ErrCanceled            = errors.New("upstream: request canceled")
	ErrResponseTooLarge    = fmt.Errorf("%w: body exceeds %d bytes", ErrBadResponse, maxResponseBytes)
)

// Error carries the operation and HTTP context of a failed call.
type Error struct {
	Sentinel  error
	Operation string
	Status    int
	Body      string
	Err       error
}

func (e *Error) Error() string {
	msg := "dataapi: " + e.Operation + ": " + e.Sentinel.Error()
	if e.Status != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the sentinel and the cause, so errors.Is matches
// context.Canceled as well as ErrUpstreamUnavailable.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Sentinel}
	}
	return []error{e.Sentinel, e.Err}
}

// Cause returns the underlying transport or decode error, if any.
func (e *Error) Cause() error { return e.Err }

const maxErrorBody = 512

func newError(op string, sentinel error, status int, body []byte, err error) *Error {
	b := string(body)
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}
	return &Error{Sentinel: sentinel, Operation: op, Status: status, Body: b, Err: err}
}

// classifyStatus maps an HTTP status to a sentinel. PostgREST answers 406
// when an object response was requested and no row matched.
func classifyStatus(status int) error {
	switch {
	case status == http.StatusNotFound, status == http.StatusNotAcceptable:
		return ErrNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return ErrRejected
	case status == http.StatusTooManyRequests, status == http.StatusServiceUnavailable:
		return ErrUpstreamUnavailable
	case status >= 500:
		return ErrUpstreamError
	default:
		return ErrBadResponse
	}
}

func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return ErrCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ErrTimeout
	}
	return ErrUpstreamUnavailable
}

// countsAgainstBreaker reports whether err indicates upstream trouble rather
// than a caller mistake.
func countsAgainstBreaker(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden), errors.Is(err, ErrRejected):
		return false
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return false
	default:
		return true
	}
}

func isCanceled(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}

// IsUnavailable reports whether err means the upstream could not be reached,
// including an open circuit breaker.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrTimeout) ||
		errors.Is(err, resilience.ErrCircuitOpen)
}
