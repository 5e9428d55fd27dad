package driven

import (
	"context"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

// MediaSource exposes a browsable hierarchical tree of media items.
// It is the boundary to the host platform's media-source framework: folders
// expand into children, leaves resolve to a fetchable URL.
type MediaSource interface {
	// Browse returns the node for the identifier with its direct children
	// populated. Browse failures on one node are per-node errors; the
	// walker logs and continues with the rest of the tree.
	Browse(ctx context.Context, identifier string) (domain.MediaNode, error)

	// Resolve returns a fetchable URL for a leaf identifier.
	Resolve(ctx context.Context, identifier string) (string, error)
}

// MediaWatcher is an optional capability of a media source: push
// notifications when the underlying tree changes. Used to trigger scans
// between timer ticks.
type MediaWatcher interface {
	// Watch emits an event whenever content under the root changes.
	// The channel closes when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
