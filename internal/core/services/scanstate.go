package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// ScanState is the persisted record of change detection: the last-seen
// content hash per media item, plus the statistics of the last scan.
type ScanState struct {
	// Hashes maps media identifiers to the hex digest of their content
	// as of the last successful processing. A hash is only updated after
	// its item has been accepted, which is what gives failed items
	// at-least-once retry semantics.
	Hashes map[string]string `json:"hashes"`

	// Stats are the counters of the most recent scan.
	Stats domain.ScanStats `json:"stats"`
}

// ScanStateStore round-trips the scan state through a durable blob store.
// It holds no cached state between calls.
type ScanStateStore struct {
	blobs driven.BlobStore
}

// NewScanStateStore creates a store backed by the given blob store.
func NewScanStateStore(blobs driven.BlobStore) *ScanStateStore {
	return &ScanStateStore{blobs: blobs}
}

// Load reads the persisted state. An absent blob yields an empty state,
// not an error.
func (s *ScanStateStore) Load(ctx context.Context) (*ScanState, error) {
	data, err := s.blobs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scan state: %w", err)
	}
	state := &ScanState{Hashes: make(map[string]string)}
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("decode scan state: %w", err)
	}
	if state.Hashes == nil {
		state.Hashes = make(map[string]string)
	}
	return state, nil
}

// Save persists the state.
func (s *ScanStateStore) Save(ctx context.Context, state *ScanState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode scan state: %w", err)
	}
	if err := s.blobs.Save(ctx, data); err != nil {
		return fmt.Errorf("save scan state: %w", err)
	}
	return nil
}
