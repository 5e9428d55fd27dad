package driven

import (
	"context"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

// PageStore persists extracted journal pages keyed by filename.
// Pages are the durable output of the extraction pipeline; the calendar
// aggregate and the vector index are both rebuilt from them.
type PageStore interface {
	// Save stores or replaces a page.
	Save(ctx context.Context, page domain.JournalPage) error

	// Get retrieves a page by filename.
	// Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, filename string) (domain.JournalPage, error)

	// List returns all pages ordered by filename.
	List(ctx context.Context) ([]domain.JournalPage, error)

	// Close releases resources.
	Close() error
}
