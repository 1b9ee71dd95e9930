// Package storage defines the object storage used for revision snapshot exports.
// Local filesystem and S3-compatible backends (AWS S3, MinIO, OSS) are supported.
package storage

import (
	"context"
	"io"
)

// Storage is an object store for exported revision snapshots. Keys are
// slash separated, e.g. "revisions/3/Line_A/rev-2-<uuid>.json".
type Storage interface {
	PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error

	// GetObject opens key for reading; the caller closes it. A missing key
	// yields an error wrapping the backend's ErrObjectNotFound.
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)

	DeleteObject(ctx context.Context, key string) error
	ObjectExists(ctx context.Context, key string) (bool, error)

	// GenerateURL returns where a client can fetch key: the API download
	// path for local storage and S3 proxy mode, a presigned URL otherwise.
	GenerateURL(ctx context.Context, key string) (string, error)

	// Type is "local" or "s3".
	Type() string
}
