// Package local implements the local filesystem storage adapter.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DownloadPrefix is the API route serving stored exports.
const DownloadPrefix = "/api/v1/exports/"

// ErrObjectNotFound is returned by GetObject for a missing key.
var ErrObjectNotFound = errors.New("object not found")

// Storage keeps exported snapshots as files below basePath.
type Storage struct {
	basePath string
}

// New creates the base directory if needed.
func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "data/exports"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// PutObject writes to a temporary file in the target directory and renames it
// into place, so readers never observe a half written snapshot.
func (s *Storage) PutObject(ctx context.Context, key string, data io.Reader, contentType string, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath := s.keyToPath(key)
	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	written, err := io.Copy(tmp, data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size > 0 && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), fullPath); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("publish %s: %w", key, err)
	}
	return nil
}

// GetObject opens a stored file. The caller closes it.
func (s *Storage) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.keyToPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// DeleteObject removes a file; a missing file is not an error. Empty parent
// directories up to the base path are pruned.
func (s *Storage) DeleteObject(ctx context.Context, key string) error {
	fullPath := s.keyToPath(key)
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete file: %w", err)
	}

	base := filepath.Clean(s.basePath)
	for dir := filepath.Dir(fullPath); dir != base && strings.HasPrefix(dir, base); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

func (s *Storage) ObjectExists(ctx context.Context, key string) (bool, error) {
	info, err := os.Stat(s.keyToPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat file: %w", err)
	}
	return !info.IsDir(), nil
}

// GenerateURL returns the API path for downloading the object.
func (s *Storage) GenerateURL(ctx context.Context, key string) (string, error) {
	return DownloadPrefix + strings.TrimPrefix(key, "/"), nil
}

func (s *Storage) Type() string {
	return "local"
}

// keyToPath maps a key below basePath; cleaning against "/" keeps ".." from
// escaping it.
func (s *Storage) keyToPath(key string) string {
	return filepath.Join(s.basePath, filepath.Clean("/"+key))
}

func (s *Storage) BasePath() string {
	return s.basePath
}
