// SPDX-License-Identifier: MIT

package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/ManuGH/jobjump/internal/domain"
	xglog "github.com/ManuGH/jobjump/internal/log"
)

// Local stores objects as files under dir/<bucket>/<name> and serves them
// below publicBase.
type Local struct {
	dir        string
	publicBase string
}

var _ Backend = (*Local)(nil)

// NewLocal creates the root directory if needed. publicBase is the URL
// prefix the Handler is mounted at, e.g. "https://jobs.example/files".
func NewLocal(dir, publicBase string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: directory is empty")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{dir: dir, publicBase: strings.TrimRight(publicBase, "/")}, nil
}

// Dir returns the storage root.
func (l *Local) Dir() string { return l.dir }

// PutObject writes data atomically and returns its public URL.
func (l *Local) PutObject(ctx context.Context, _ domain.Caller, bucket, name, _ string, data []byte) (string, error) {
	if !validSegment(bucket) || !validSegment(name) {
		return "", fmt.Errorf("storage: invalid object path %q/%q", bucket, name)
	}
	bucketDir := filepath.Join(l.dir, bucket)
	if err := os.MkdirAll(bucketDir, 0o750); err != nil {
		return "", fmt.Errorf("create bucket dir: %w", err)
	}

	logger := xglog.FromContext(ctx)
	pendingFile, err := renameio.NewPendingFile(filepath.Join(bucketDir, name), renameio.WithPermissions(0o640))
	if err != nil {
		return "", fmt.Errorf("create pending object: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("object", name).Msg("cleanup pending object")
		}
	}()

	if _, err := pendingFile.Write(data); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("atomically replace object: %w", err)
	}
	return l.publicBase + "/" + url.PathEscape(bucket) + "/" + url.PathEscape(name), nil
}

// Handler serves stored objects. Mount it with the public prefix stripped.
func (l *Local) Handler() http.Handler {
	fs := http.FileServerFS(os.DirFS(l.dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
		fs.ServeHTTP(w, r)
	})
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && !strings.ContainsRune(s, 0)
}
