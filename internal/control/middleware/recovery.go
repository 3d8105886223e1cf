// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package middleware

import (
	"fmt"
	"html"
	"net/http"
	"runtime"
	"strings"

	"github.com/ManuGH/jobjump/internal/control/http/problem"
	"github.com/ManuGH/jobjump/internal/log"
)

const errorPage = `<!doctype html>
<html lang="en"><head><meta charset="utf-8"><title>Something went wrong | JobJump</title></head>
<body><main><h1>Something went wrong</h1><p>Please try again later.</p><p><small>Request %s</small></p><p><a href="/">Back to JobJump</a></p></main></body></html>
`

// Recoverer turns handler panics into a 500. Browsers get an HTML page,
// everything else a problem document.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			buf := make([]byte, 8192)
			buf = buf[:runtime.Stack(buf, false)]
			reqID := log.RequestIDFromContext(r.Context())

			logger := log.WithComponentFromContext(r.Context(), "panic-recovery")
			logger.Error().
				Str(log.FieldEvent, "panic.recovered").
				Str(log.FieldMethod, r.Method).
				Str(log.FieldPath, strings.ToValidUTF8(r.URL.Path, "")).
				Str(log.FieldRemote, r.RemoteAddr).
				Interface("panic_value", rec).
				Str("stack_trace", string(buf)).
				Msg("panic recovered in HTTP handler")

			if wantsHTML(r) {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = fmt.Fprintf(w, errorPage, html.EscapeString(reqID))
				return
			}
			problem.Write(w, r, http.StatusInternalServerError, "server/panic", "Internal Server Error", "INTERNAL", "an unexpected error occurred", nil)
		}()

		next.ServeHTTP(w, r)
	})
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
