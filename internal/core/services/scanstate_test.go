package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

func TestScanStateLoadAbsentYieldsEmptyState(t *testing.T) {
	store := NewScanStateStore(memory.NewBlobStore())

	state, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.Hashes)
	assert.Empty(t, state.Hashes)
	assert.Empty(t, state.Stats.ScanID)
}

func TestScanStateRoundTrips(t *testing.T) {
	store := NewScanStateStore(memory.NewBlobStore())
	ctx := context.Background()

	state := &ScanState{
		Hashes: map[string]string{
			"media-source://media_source/Daily-01.png": "abc123",
		},
		Stats: domain.ScanStats{
			ScanID:         "scan-1",
			ScannedFiles:   1,
			ProcessedFiles: 1,
			LastScanStart:  time.Date(2023, 12, 19, 12, 0, 0, 0, time.UTC),
		},
	}
	require.NoError(t, store.Save(ctx, state))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state.Hashes, loaded.Hashes)
	assert.Equal(t, "scan-1", loaded.Stats.ScanID)
	assert.True(t, state.Stats.LastScanStart.Equal(loaded.Stats.LastScanStart))
}

func TestScanStateSaveErrorIsSurfaced(t *testing.T) {
	blobs := memory.NewBlobStore()
	blobs.SaveErr = errors.New("backend down")
	store := NewScanStateStore(blobs)

	err := store.Save(context.Background(), &ScanState{Hashes: map[string]string{}})
	assert.ErrorContains(t, err, "backend down")
}

func TestScanStateRejectsCorruptBlob(t *testing.T) {
	blobs := memory.NewBlobStore()
	require.NoError(t, blobs.Save(context.Background(), []byte("{corrupt")))

	_, err := NewScanStateStore(blobs).Load(context.Background())
	assert.Error(t, err)
}
