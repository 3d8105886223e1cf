// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package dataapi

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/ManuGH/jobjump/internal/domain"
)

// PutObject uploads data into a storage bucket and returns its public URL.
func (c *Client) PutObject(ctx context.Context, caller domain.Caller, bucket, name, contentType string, data []byte) (string, error) {
	objectPath := url.PathEscape(bucket) + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/storage/v1/object/"+objectPath, bytes.NewReader(data))
	if err != nil {
		return "", newError("put_object", ErrBadResponse, 0, nil, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "false")

	if _, err := c.send(ctx, "put_object", caller, req); err != nil {
		return "", err
	}
	return c.PublicObjectURL(bucket, name), nil
}

// PublicObjectURL is the download URL of an object in a public bucket.
func (c *Client) PublicObjectURL(bucket, name string) string {
	return c.base + "/storage/v1/object/public/" + url.PathEscape(bucket) + "/" + url.PathEscape(name)
}

// Buckets returns the configured resume and logo bucket names.
func (c *Client) Buckets() (resume, logo string) { return c.resumeBucket, c.logoBucket }
