// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package storage accepts uploaded resumes and company logos, checks their
// content type by sniffing and hands them to an object backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ManuGH/jobjump/internal/domain"
	"github.com/ManuGH/jobjump/internal/metrics"
)

// Kind selects the bucket and the accepted content types.
type Kind string

const (
	KindResume Kind = "resume"
	KindLogo   Kind = "logo"
)

var (
	// ErrUnsupportedType is returned when sniffed content is not accepted for the kind.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrTooLarge is returned when the upload exceeds the configured limit.
	ErrTooLarge = errors.New("file too large")
	// ErrEmpty is returned for zero-byte uploads.
	ErrEmpty = errors.New("file is empty")
)

var accepted = map[Kind][]string{
	KindResume: {
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	},
	KindLogo: {"image/png", "image/jpeg"},
}

// DefaultMaxBytes caps uploads when no limit is configured.
const DefaultMaxBytes int64 = 5 << 20

// Backend stores objects and returns a public URL for them.
type Backend interface {
	PutObject(ctx context.Context, caller domain.Caller, bucket, name, contentType string, data []byte) (string, error)
}

// Object describes a stored upload.
type Object struct {
	URL         string
	Name        string
	ContentType string
	Size        int
}

// Service validates uploads and stores them.
type Service struct {
	backend  Backend
	buckets  map[Kind]string
	maxBytes int64
}

// NewService creates a Service. buckets maps each kind to a bucket name.
func NewService(backend Backend, buckets map[Kind]string, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	b := map[Kind]string{KindResume: "resumes", KindLogo: "company-logo"}
	for k, v := range buckets {
		if v != "" {
			b[k] = v
		}
	}
	return &Service{backend: backend, buckets: b, maxBytes: maxBytes}
}

// MaxBytes is the upload size limit.
func (s *Service) MaxBytes() int64 { return s.maxBytes }

// Detect sniffs data and returns its MIME type if accepted for kind.
func Detect(kind Kind, data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", ErrEmpty
	}
	mt := mimetype.Detect(data)
	for _, want := range accepted[kind] {
		if mt.Is(want) {
			return want, mt.Extension(), nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
}

// Upload reads r, checks size and type and stores it under a random name.
// prefix is prepended to the object name, e.g. the job id for resumes.
func (s *Service) Upload(ctx context.Context, caller domain.Caller, kind Kind, prefix string, r io.Reader) (Object, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		metrics.RecordUpload(string(kind), "read_error")
		return Object{}, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		metrics.RecordUpload(string(kind), "too_large")
		return Object{}, fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, s.maxBytes)
	}

	contentType, ext, err := Detect(kind, data)
	if err != nil {
		metrics.RecordUpload(string(kind), "rejected")
		return Object{}, err
	}

	name := string(kind) + "-" + uuid.NewString() + ext
	if p := sanitizePrefix(prefix); p != "" {
		name = p + "-" + name
	}

	url, err := s.backend.PutObject(ctx, caller, s.buckets[kind], name, contentType, data)
	if err != nil {
		metrics.RecordUpload(string(kind), "error")
		return Object{}, fmt.Errorf("storing %s: %w", kind, err)
	}
	metrics.RecordUpload(string(kind), "ok")
	return Object{URL: url, Name: name, ContentType: contentType, Size: len(data)}, nil
}

func sanitizePrefix(p string) string {
	var b strings.Builder
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsRejected reports whether err is a client-side upload problem.
func IsRejected(err error) bool {
	return errors.Is(err, ErrUnsupportedType) || errors.Is(err, ErrTooLarge) || errors.Is(err, ErrEmpty)
}
