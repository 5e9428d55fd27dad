package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// defaultDownloadTimeout bounds a single leaf download.
const defaultDownloadTimeout = 60 * time.Second

// WalkEvent is one traversal outcome: a browsed folder, a downloaded leaf,
// or a per-node failure. Exactly one field is set.
type WalkEvent struct {
	// Folder is the identifier of a folder that was browsed.
	Folder string

	// Leaf is a successfully downloaded leaf item with its content hash.
	Leaf *domain.LeafItem

	// Err is a per-node browse, resolve or download failure. The walk
	// continues with the remaining nodes.
	Err error
}

// Walker traverses a browsable media tree, downloading leaf content and
// computing its fingerprint. A single bad node never aborts the walk.
type Walker struct {
	source driven.MediaSource
	client *http.Client
}

// NewWalker creates a walker over the given media source.
// If client is nil a default HTTP client is used.
func NewWalker(source driven.MediaSource, client *http.Client) *Walker {
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadTimeout}
	}
	return &Walker{source: source, client: client}
}

// Walk traverses the tree rooted at root and emits events as it goes.
// The channel closes when the traversal finishes or ctx is cancelled.
//
// Traversal uses an explicit LIFO stack: folders are pushed, leaves are
// resolved to a URL and downloaded immediately.
func (w *Walker) Walk(ctx context.Context, root string) <-chan WalkEvent {
	events := make(chan WalkEvent)

	go func() {
		defer close(events)

		stack := []string{root}
		for len(stack) > 0 {
			if ctx.Err() != nil {
				return
			}
			identifier := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			logger.Debug("Browsing media %s", identifier)
			node, err := w.source.Browse(ctx, identifier)
			if err != nil {
				if !emit(ctx, events, WalkEvent{Err: fmt.Errorf("browse %s: %w", identifier, err)}) {
					return
				}
				continue
			}
			if !emit(ctx, events, WalkEvent{Folder: identifier}) {
				return
			}

			logger.Debug("Media %s has %d children", identifier, len(node.Children))
			for _, child := range node.Children {
				if child.CanExpand {
					stack = append(stack, child.Identifier)
					continue
				}

				item, err := w.Fetch(ctx, child.Identifier)
				if err != nil {
					if !emit(ctx, events, WalkEvent{Err: err}) {
						return
					}
					continue
				}
				if !emit(ctx, events, WalkEvent{Leaf: &item}) {
					return
				}
			}
		}
	}()

	return events
}

// Fetch resolves a single leaf identifier, downloads its content and
// computes the content hash.
func (w *Walker) Fetch(ctx context.Context, identifier string) (domain.LeafItem, error) {
	resolved, err := w.source.Resolve(ctx, identifier)
	if err != nil {
		return domain.LeafItem{}, fmt.Errorf("resolve %s: %w", identifier, err)
	}

	logger.Debug("Fetching media content %s", resolved)
	content, err := w.download(ctx, resolved)
	if err != nil {
		return domain.LeafItem{}, fmt.Errorf("download %s: %w", identifier, err)
	}

	sum := sha256.Sum256(content)
	return domain.LeafItem{
		Identifier:  identifier,
		Content:     content,
		ContentHash: hex.EncodeToString(sum[:]),
	}, nil
}

// download fetches the resolved URL. Local sources resolve to file:// URLs
// which are read directly from disk; everything else goes over HTTP.
func (w *Walker) download(ctx context.Context, resolved string) ([]byte, error) {
	u, err := url.Parse(resolved)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}

	if u.Scheme == "file" || u.Scheme == "" {
		path := u.Path
		if path == "" {
			path = u.Opaque
		}
		return os.ReadFile(path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// emit sends an event unless the context is cancelled first.
func emit(ctx context.Context, events chan<- WalkEvent, ev WalkEvent) bool {
	select {
	case <-ctx.Done():
		return false
	case events <- ev:
		return true
	}
}
