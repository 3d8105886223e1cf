// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ManuGH/jobjump/internal/cache"
	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/metrics"
)

// ListCompanies returns all companies. Results are cached for CompaniesTTL
// and concurrent misses share one upstream call. The listing is public, so
// the shared call runs with the anon key rather than any one caller's token,
// detached from the first caller's cancellation. Each caller still stops
// waiting when its own ctx ends.
func (c *Client) ListCompanies(ctx context.Context, _ domain.Caller) ([]domain.Company, error) {
	if c.cache != nil {
		cached, ok, err := cache.GetJSON[[]domain.Company](ctx, c.cache, companiesCacheKey)
		if err != nil {
			c.logger.Warn().Err(err).Msg("companies cache read failed")
		}
		metrics.RecordCacheLookup("companies", ok)
		if ok {
			return cached, nil
		}
	}

	flight := c.flights.DoChan(companiesFlightName, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		q := url.Values{}
		q.Set("select", "*")
		var companies []domain.Company
		if err := c.rest(fctx, domain.Caller{}, request{op: "list_companies", method: http.MethodGet, table: "companies", query: q}, &companies); err != nil {
			return nil, err
		}
		if c.cache != nil {
			if err := cache.SetJSON(fctx, c.cache, companiesCacheKey, companies, c.companiesTTL); err != nil {
				c.logger.Warn().Err(err).Msg("companies cache write failed")
			}
		}
		return companies, nil
	})
	select {
	case <-ctx.Done():
		return nil, newError("list_companies", classifyTransport(ctx.Err()), 0, nil, ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]domain.Company), nil
	}
}

// AddCompany inserts a company and drops the cached listing.
func (c *Client) AddCompany(ctx context.Context, caller domain.Caller, in domain.NewCompany) (domain.Company, error) {
	var company domain.Company
	err := c.rest(ctx, caller, request{
		op:     "add_company",
		method: http.MethodPost,
		table:  "companies",
		body:   in,
		single: true,
		prefer: preferRepresent,
	}, &company)
	if err != nil {
		return domain.Company{}, err
	}
	if c.cache != nil {
		if err := c.cache.Delete(ctx, companiesCacheKey); err != nil {
			c.logger.Warn().Err(err).Msg("companies cache invalidation failed")
		}
	}
	return company, nil
}
