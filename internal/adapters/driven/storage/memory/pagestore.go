package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// Ensure PageStore implements the interface.
var _ driven.PageStore = (*PageStore)(nil)

// PageStore is an in-memory implementation of driven.PageStore.
type PageStore struct {
	mu    sync.RWMutex
	pages map[string]domain.JournalPage
}

// NewPageStore creates an empty in-memory page store.
func NewPageStore() *PageStore {
	return &PageStore{pages: make(map[string]domain.JournalPage)}
}

// Save stores or replaces a page keyed by filename.
func (s *PageStore) Save(_ context.Context, page domain.JournalPage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[page.Filename] = page
	return nil
}

// Get retrieves a page by filename.
func (s *PageStore) Get(_ context.Context, filename string) (domain.JournalPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	page, ok := s.pages[filename]
	if !ok {
		return domain.JournalPage{}, domain.ErrNotFound
	}
	return page, nil
}

// List returns all pages ordered by filename.
func (s *PageStore) List(_ context.Context) ([]domain.JournalPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pages := make([]domain.JournalPage, 0, len(s.pages))
	for _, page := range s.pages {
		pages = append(pages, page)
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].Filename < pages[j].Filename })
	return pages, nil
}

// Close releases resources.
func (s *PageStore) Close() error {
	return nil
}
