package driven

import "context"

// BlobStore is a durable store for a single opaque blob, used for the scan
// state (content hashes plus stats) and the vector index snapshot.
//
// The store holds no cached state between calls: every Load and Save
// round-trips through durable storage.
type BlobStore interface {
	// Load returns the stored blob. An absent blob yields (nil, nil),
	// not an error.
	Load(ctx context.Context) ([]byte, error)

	// Save persists the blob. A crash mid-save must not corrupt the
	// previously committed version.
	Save(ctx context.Context, data []byte) error
}
