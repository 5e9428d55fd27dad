package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driving"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.JournalSearch = (*SearchService)(nil)

// SearchService answers journal queries against the vector index.
// It is a thin driving facade: parameter defaults and notebook filter
// shaping live here, ranking lives in the index.
type SearchService struct {
	index *VectorIndex
}

// NewSearchService creates a search service over the index.
func NewSearchService(index *VectorIndex) *SearchService {
	return &SearchService{index: index}
}

// Search ranks indexed documents for the query.
func (s *SearchService) Search(ctx context.Context, params domain.QueryParams) ([]domain.QueryResult, error) {
	logger.Section("Journal Search")
	logger.Debug("Query: %q, metadata: %v", params.Query, params.Metadata)

	if params.NumResults <= 0 {
		params.NumResults = domain.DefaultMaxResults
	}

	results, err := s.index.Query(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	logger.Debug("Found %d results", len(results))
	return results, nil
}

// Count returns the number of indexed documents.
func (s *SearchService) Count(_ context.Context) (int, error) {
	return s.index.Count(), nil
}

// NotebookQuery builds query parameters from the conversational tool input:
// an optional notebook name becomes a category metadata filter and the date
// strings become inclusive bounds.
func NotebookQuery(query, notebook, startDate, endDate string, limit int) (domain.QueryParams, error) {
	params := domain.QueryParams{
		Query:      query,
		NumResults: limit,
	}
	if notebook != "" {
		params.Metadata = map[string]string{"category": notebook}
	}
	if startDate != "" {
		ts, ok := domain.ParseEntryDate(startDate)
		if !ok {
			return domain.QueryParams{}, fmt.Errorf("%w: bad start date %q", domain.ErrInvalidInput, startDate)
		}
		params.StartDate = &ts
	}
	if endDate != "" {
		ts, ok := domain.ParseEntryDate(endDate)
		if !ok {
			return domain.QueryParams{}, fmt.Errorf("%w: bad end date %q", domain.ErrInvalidInput, endDate)
		}
		// End of day keeps the bound inclusive for datetime timestamps.
		end := ts.Add(24*time.Hour - time.Nanosecond)
		params.EndDate = &end
	}
	return params, nil
}
