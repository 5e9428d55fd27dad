// Package file provides a file-backed blob store. Saves go through a
// temporary file plus rename so a crash mid-save never corrupts the
// previously committed blob.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore persists a single blob at a fixed path.
type BlobStore struct {
	path string
}

// NewBlobStore creates a blob store at path. Parent directories are
// created on first save.
func NewBlobStore(path string) *BlobStore {
	return &BlobStore{path: path}
}

// Load returns the stored blob, or (nil, nil) when no blob exists yet.
func (s *BlobStore) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return data, nil
}

// Save writes the blob atomically: write to a temp file in the same
// directory, fsync, then rename over the destination.
func (s *BlobStore) Save(_ context.Context, data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit %s: %w", s.path, err)
	}
	return nil
}
