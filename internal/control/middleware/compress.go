// SPDX-License-Identifier: MIT

package middleware

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	chimw "github.com/go-chi/chi/v5/middleware"
)

var compressibleTypes = []string{
	"text/html",
	"text/css",
	"text/plain",
	"text/javascript",
	"application/javascript",
	"application/json",
	"application/problem+json",
	"application/yaml",
	"image/svg+xml",
}

// Compress negotiates br, gzip or deflate for textual responses.
func Compress(level int) func(http.Handler) http.Handler {
	c := chimw.NewCompressor(level, compressibleTypes...)
	c.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return c.Handler
}
