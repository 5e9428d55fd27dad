// Package driving provides interfaces for inbound adapters (primary ports).
// The CLI and the MCP tool server drive the core through these.
package driving

import (
	"context"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

// MediaProcessor runs change-detection scans over the configured media
// source and handles individual items on demand.
type MediaProcessor interface {
	// ProcessOnce performs a single scan pass. If a scan is already
	// running it returns domain.ErrScanInProgress without walking the
	// tree.
	ProcessOnce(ctx context.Context) (domain.ScanStats, error)

	// ProcessItem handles a single media item outside the periodic scan.
	// The identifier must be a valid media source URI; a malformed one
	// fails with domain.ErrInvalidInput.
	ProcessItem(ctx context.Context, identifier string) error

	// Stats returns the persisted statistics of the last scan.
	Stats(ctx context.Context) (domain.ScanStats, error)
}

// JournalSearch answers free-text and filtered queries over the indexed
// journal. This is the query path consumed by the conversational tools.
type JournalSearch interface {
	// Search ranks indexed documents for the query.
	Search(ctx context.Context, params domain.QueryParams) ([]domain.QueryResult, error)

	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)
}
