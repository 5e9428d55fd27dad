// Package filesystem provides a media source backed by a local directory
// tree. Directories browse into children; files resolve to file:// URLs.
// It doubles as the reference implementation of the media source contract
// for tests.
package filesystem

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// Ensure Source implements the interfaces.
var (
	_ driven.MediaSource  = (*Source)(nil)
	_ driven.MediaWatcher = (*Source)(nil)
)

// URIPrefix is the scheme every identifier of this source starts with.
const URIPrefix = "media-source://media_source/"

// watchDebounce coalesces filesystem event bursts into one trigger.
const watchDebounce = 2 * time.Second

// Source exposes a directory tree as a browsable media source.
type Source struct {
	root string
}

// New creates a media source rooted at dir.
func New(dir string) (*Source, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve media root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat media root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("media root %s is not a directory", abs)
	}
	return &Source{root: abs}, nil
}

// RootIdentifier returns the identifier of the tree root.
func (s *Source) RootIdentifier() string {
	return URIPrefix
}

// Browse returns the node for the identifier with its children populated.
func (s *Source) Browse(_ context.Context, identifier string) (domain.MediaNode, error) {
	dir, err := s.localPath(identifier)
	if err != nil {
		return domain.MediaNode{}, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.MediaNode{}, fmt.Errorf("browse %s: %w", identifier, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	node := domain.MediaNode{
		Identifier: identifier,
		Title:      filepath.Base(dir),
		CanExpand:  true,
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		rel, err := filepath.Rel(s.root, filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		node.Children = append(node.Children, domain.MediaNode{
			Identifier: URIPrefix + filepath.ToSlash(rel),
			Title:      entry.Name(),
			CanExpand:  entry.IsDir(),
		})
	}
	return node, nil
}

// Resolve returns a file:// URL for a leaf identifier.
func (s *Source) Resolve(_ context.Context, identifier string) (string, error) {
	path, err := s.localPath(identifier)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", identifier, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("resolve %s: not a leaf item", identifier)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(), nil
}

// Watch emits an event whenever content under the root changes. Bursts of
// filesystem events are debounced into a single trigger.
func (s *Source) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the root and every existing subdirectory.
	err = filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch media root: %w", err)
	}

	events := make(chan struct{}, 1)
	go func() {
		defer close(events)
		defer watcher.Close()

		var debounce *time.Timer
		var debounceCh <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// New directories must be watched too.
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = watcher.Add(ev.Name)
					}
				}
				if debounce == nil {
					debounce = time.NewTimer(watchDebounce)
					debounceCh = debounce.C
				} else {
					debounce.Reset(watchDebounce)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Media watcher error: %v", err)

			case <-debounceCh:
				debounce = nil
				debounceCh = nil
				select {
				case events <- struct{}{}:
				default:
				}
			}
		}
	}()
	return events, nil
}

// localPath maps an identifier back to a path under the root, rejecting
// identifiers that escape it.
func (s *Source) localPath(identifier string) (string, error) {
	if !strings.HasPrefix(identifier, URIPrefix) {
		return "", fmt.Errorf("%w: identifier %q does not match %s", domain.ErrInvalidInput, identifier, URIPrefix)
	}
	rel := strings.TrimPrefix(identifier, URIPrefix)
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	if path != s.root && !strings.HasPrefix(path, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: identifier %q escapes the media root", domain.ErrInvalidInput, identifier)
	}
	return path, nil
}
