// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	legacyrouter "github.com/getkin/kin-openapi/routers/legacy"

	"github.com/ManuGH/jobjump/internal/control/http/problem"
)

//go:embed openapi.yaml
var openapiYAML []byte

var (
	docOnce sync.Once
	docVal  *openapi3.T
	docErr  error
)

// Document returns the parsed and validated OpenAPI document.
func Document() (*openapi3.T, error) {
	docOnce.Do(func() {
		loader := openapi3.NewLoader()
		doc, err := loader.LoadFromData(openapiYAML)
		if err != nil {
			docErr = fmt.Errorf("load openapi: %w", err)
			return
		}
		if err := doc.Validate(loader.Context); err != nil {
			docErr = fmt.Errorf("validate openapi: %w", err)
			return
		}
		docVal = doc
	})
	return docVal, docErr
}

// RawDocument returns the embedded OpenAPI YAML.
func RawDocument() []byte { return openapiYAML }

// RequestValidator rejects requests that do not match the OpenAPI document.
// Paths are matched relative to basePath. Authentication is left to the
// authz layer.
func RequestValidator(basePath string) (func(http.Handler) http.Handler, error) {
	doc, err := Document()
	if err != nil {
		return nil, err
	}
	// Match on the path below basePath regardless of the mount point.
	local := *doc
	local.Servers = nil
	router, err := legacyrouter.NewRouter(&local)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}
	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			probe := r.Clone(r.Context())
			probe.URL.Path = "/" + strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, basePath), "/")
			probe.URL.RawPath = ""

			route, params, err := router.FindRoute(probe)
			switch {
			case isMethodNotAllowed(err):
				problem.Write(w, r, http.StatusMethodNotAllowed, "api/method_not_allowed", "Method Not Allowed", "METHOD_NOT_ALLOWED", "", nil)
				return
			case err != nil:
				problem.Write(w, r, http.StatusNotFound, "api/not_found", "Not Found", "NOT_FOUND", "unknown API path", nil)
				return
			}

			in := &openapi3filter.RequestValidationInput{
				Request:    probe,
				PathParams: params,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(context.WithoutCancel(r.Context()), in); err != nil {
				problem.Write(w, r, http.StatusBadRequest, "api/invalid_request", "Invalid Request", "INVALID_INPUT", validationDetail(err), nil)
				return
			}
			// ValidateRequest drains and restores the body on probe only.
			r.Body = probe.Body
			next.ServeHTTP(w, r)
		})
	}, nil
}

func isMethodNotAllowed(err error) bool {
	if errors.Is(err, routers.ErrMethodNotAllowed) {
		return true
	}
	var re *routers.RouteError
	return errors.As(err, &re) && re.Reason == routers.ErrMethodNotAllowed.Error()
}

func validationDetail(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return fmt.Sprintf("parameter %q: %s", reqErr.Parameter.Name, reqErr.Reason)
		}
		if reqErr.RequestBody != nil {
			return "request body: " + reqErr.Error()
		}
		return reqErr.Error()
	}
	return err.Error()
}
