package mcp

import (
	"context"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

// mockJournalSearch is a mock implementation of driving.JournalSearch.
type mockJournalSearch struct {
	results []domain.QueryResult
	count   int
	err     error

	lastParams domain.QueryParams
}

func (m *mockJournalSearch) Search(_ context.Context, params domain.QueryParams) ([]domain.QueryResult, error) {
	m.lastParams = params
	return m.results, m.err
}

func (m *mockJournalSearch) Count(_ context.Context) (int, error) {
	return m.count, m.err
}

// mockMediaProcessor is a mock implementation of driving.MediaProcessor.
type mockMediaProcessor struct {
	stats domain.ScanStats
	err   error

	processedItems []string
}

func (m *mockMediaProcessor) ProcessOnce(_ context.Context) (domain.ScanStats, error) {
	return m.stats, m.err
}

func (m *mockMediaProcessor) ProcessItem(_ context.Context, identifier string) error {
	m.processedItems = append(m.processedItems, identifier)
	return m.err
}

func (m *mockMediaProcessor) Stats(_ context.Context) (domain.ScanStats, error) {
	return m.stats, m.err
}
