// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package dataapi implements domain.Backend over a PostgREST-style data API
// with bucket object storage.
package dataapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/ManuGH/jobjump/internal/cache"
	"github.com/ManuGH/jobjump/internal/domain"
	xglog "github.com/ManuGH/jobjump/internal/log"
	"github.com/ManuGH/jobjump/internal/metrics"
	"github.com/ManuGH/jobjump/internal/platform/httpx"
	platformnet "github.com/ManuGH/jobjump/internal/platform/net"
	"github.com/ManuGH/jobjump/internal/resilience"
	"github.com/ManuGH/jobjump/internal/telemetry"
)

const (
	defaultTimeout          = 10 * time.Second
	defaultRateLimit        = 20
	defaultBurst            = 40
	defaultBreakerThreshold = 5
	defaultBreakerReset     = 30 * time.Second
	defaultCompaniesTTL     = 5 * time.Minute
	maxResponseBytes        = 4 << 20

	headerAPIKey        = "apikey"
	headerPrefer        = "Prefer"
	preferRepresent     = "return=representation"
	acceptSingleObject  = "application/vnd.pgrst.object+json"
	companiesCacheKey   = "dataapi:companies:v1"
	companiesFlightName = "companies"
)

// Config configures the data API client.
type Config struct {
	BaseURL          string
	AnonKey          string
	Timeout          time.Duration
	RateLimit        float64
	Burst            int
	BreakerThreshold int
	BreakerReset     time.Duration
	CompaniesTTL     time.Duration
	ResumeBucket     string
	LogoBucket       string
}

// Client talks to the data API. It is safe for concurrent use.
type Client struct {
	base         string
	anonKey      string
	http         *http.Client
	timeout      time.Duration
	limiter      *rate.Limiter
	breaker      *resilience.CircuitBreaker
	cache        cache.Cache
	companiesTTL time.Duration
	flights      singleflight.Group
	resumeBucket string
	logoBucket   string
	logger       zerolog.Logger
}

var _ domain.Backend = (*Client)(nil)

// New creates a client. A nil httpClient gets the shared hardened client; a
// nil cache disables company caching.
func New(cfg Config, c cache.Cache, httpClient *http.Client) (*Client, error) {
	base, err := platformnet.NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("dataapi: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = defaultBurst
	}
	if cfg.BreakerThreshold <= 0 {
		cfg.BreakerThreshold = defaultBreakerThreshold
	}
	if cfg.BreakerReset <= 0 {
		cfg.BreakerReset = defaultBreakerReset
	}
	if cfg.CompaniesTTL <= 0 {
		cfg.CompaniesTTL = defaultCompaniesTTL
	}
	if cfg.ResumeBucket == "" {
		cfg.ResumeBucket = "resumes"
	}
	if cfg.LogoBucket == "" {
		cfg.LogoBucket = "company-logo"
	}
	if httpClient == nil {
		httpClient = httpx.NewClient(cfg.Timeout)
	}

	return &Client{
		base:         base,
		anonKey:      cfg.AnonKey,
		http:         httpClient,
		timeout:      cfg.Timeout,
		limiter:      rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		breaker:      resilience.NewCircuitBreaker("dataapi", cfg.BreakerThreshold, cfg.BreakerReset,
			resilience.WithFailurePredicate(countsAgainstBreaker),
			resilience.WithNeutralPredicate(isCanceled)),
		cache:        c,
		companiesTTL: cfg.CompaniesTTL,
		resumeBucket: cfg.ResumeBucket,
		logoBucket:   cfg.LogoBucket,
		logger:       xglog.WithComponent("dataapi"),
	}, nil
}

// BaseURL returns the normalized upstream base URL.
func (c *Client) BaseURL() string { return c.base }

// BreakerState exposes the breaker state for health reporting.
func (c *Client) BreakerState() resilience.State { return c.breaker.State() }

// request describes one REST call under /rest/v1.
type request struct {
	op     string
	method string
	table  string
	query  url.Values
	body   any
	single bool
	prefer string
}

func (c *Client) rest(ctx context.Context, caller domain.Caller, r request, out any) error {
	u := c.base + "/rest/v1/" + r.table
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		payload, err := json.Marshal(r.body)
		if err != nil {
			return newError(r.op, ErrRejected, 0, nil, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return newError(r.op, ErrBadResponse, 0, nil, err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.single {
		req.Header.Set("Accept", acceptSingleObject)
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if r.prefer != "" {
		req.Header.Set(headerPrefer, r.prefer)
	}

	payload, err := c.send(ctx, r.op, caller, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return newError(r.op, ErrBadResponse, http.StatusOK, nil, err)
	}
	return nil
}

// send applies auth headers, the limiter and the breaker, and returns the
// response body of a 2xx answer.
func (c *Client) send(ctx context.Context, op string, caller domain.Caller, req *http.Request) ([]byte, error) {
	ctx, span := telemetry.Tracer("jobjump.dataapi").Start(ctx, "dataapi."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String(telemetry.UpstreamOperationKey, op),
		attribute.String(telemetry.HTTPMethodKey, req.Method),
	)
	req = req.WithContext(ctx)

	c.applyHeaders(req, caller)

	start := time.Now()
	var payload []byte
	err := c.breaker.Execute(func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return newError(op, classifyTransport(err), 0, nil, err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return newError(op, classifyTransport(err), 0, nil, err)
		}
		defer func() { _ = resp.Body.Close() }()
		span.SetAttributes(attribute.Int(telemetry.UpstreamStatusKey, resp.StatusCode))

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
		if err != nil {
			return newError(op, classifyTransport(err), resp.StatusCode, nil, err)
		}
		if len(data) > maxResponseBytes {
			return newError(op, ErrResponseTooLarge, resp.StatusCode, nil, nil)
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return newError(op, classifyStatus(resp.StatusCode), resp.StatusCode, data, nil)
		}
		payload = data
		return nil
	})
	elapsed := time.Since(start)

	if err != nil {
		outcome := outcomeOf(err)
		if errors.Is(err, resilience.ErrCircuitOpen) {
			err = newError(op, ErrUpstreamUnavailable, 0, nil, err)
		}
		telemetry.RecordError(span, err)
		metrics.ObserveUpstream(op, outcome, elapsed)
		c.logger.Debug().
			Err(err).
			Str(xglog.FieldOperation, op).
			Str(xglog.FieldRequestID, xglog.RequestIDFromContext(ctx)).
			Int64(xglog.FieldDuration, elapsed.Milliseconds()).
			Msg("data api call failed")
		return nil, err
	}
	metrics.ObserveUpstream(op, "ok", elapsed)
	return payload, nil
}

func (c *Client) applyHeaders(req *http.Request, caller domain.Caller) {
	req.Header.Set(headerAPIKey, c.anonKey)
	token := caller.Token
	if token == "" {
		token = c.anonKey
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "jobjump")
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrRejected):
		return "rejected"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrCanceled):
		return "canceled"
	case errors.Is(err, resilience.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, ErrUpstreamUnavailable):
		return "unavailable"
	case errors.Is(err, ErrBadResponse):
		return "bad_response"
	default:
		return "error"
	}
}

// Ping checks that the REST root answers.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base+"/rest/v1/", nil)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, "ping", domain.Caller{}, req)
	return err
}

func eq(v string) string    { return "eq." + v }
func eqInt(v int64) string  { return fmt.Sprintf("eq.%d", v) }
func ilike(v string) string { return "ilike.*" + escapeLike(v) + "*" }

// escapeLike drops the characters PostgREST treats as pattern or list syntax.
func escapeLike(v string) string {
	return strings.NewReplacer("*", "", "%", "", ",", " ", "(", "", ")", "").Replace(v)
}
