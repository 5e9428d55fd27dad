// Package memory provides in-memory implementations of the storage ports,
// used in tests and as fallbacks.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu   sync.RWMutex
	data []byte

	// SaveErr, when set, is returned by Save. Lets tests simulate a
	// failing backend.
	SaveErr error
}

// NewBlobStore creates an empty in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{}
}

// Load returns the stored blob, or (nil, nil) when nothing was saved.
func (s *BlobStore) Load(_ context.Context) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.data == nil {
		return nil, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, nil
}

// Save stores a copy of the blob.
func (s *BlobStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data = make([]byte, len(data))
	copy(s.data, data)
	return nil
}
