package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
)

func TestSearchDefaultsNumResults(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), nil)
	ctx := context.Background()

	docs := make([]domain.IndexableDocument, 0, domain.DefaultMaxResults+5)
	for i := 0; i < domain.DefaultMaxResults+5; i++ {
		docs = append(docs, testDoc(
			string(rune('a'+i)), "entry "+string(rune('a'+i)), "Daily", "2023-12-19"))
	}
	require.NoError(t, index.Upsert(ctx, docs))

	service := NewSearchService(index)
	results, err := service.Search(ctx, domain.QueryParams{Query: "entry"})
	require.NoError(t, err)
	assert.Len(t, results, domain.DefaultMaxResults)

	count, err := service.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultMaxResults+5, count)
}

func TestNotebookQueryShapesParams(t *testing.T) {
	params, err := NotebookQuery("plumber visits", "Daily", "2023-12-19", "2023-12-22", 5)
	require.NoError(t, err)

	assert.Equal(t, "plumber visits", params.Query)
	assert.Equal(t, 5, params.NumResults)
	assert.Equal(t, map[string]string{"category": "Daily"}, params.Metadata)

	require.NotNil(t, params.StartDate)
	assert.Equal(t, "2023-12-19T00:00:00Z", params.StartDate.Format(time.RFC3339))

	// The end bound covers the whole final day.
	require.NotNil(t, params.EndDate)
	assert.True(t, params.EndDate.After(
		time.Date(2023, 12, 22, 23, 59, 59, 0, time.UTC)))
	assert.True(t, params.EndDate.Before(
		time.Date(2023, 12, 23, 0, 0, 0, 0, time.UTC)))
}

func TestNotebookQueryOmitsEmptyFilters(t *testing.T) {
	params, err := NotebookQuery("anything", "", "", "", 0)
	require.NoError(t, err)
	assert.Nil(t, params.Metadata)
	assert.Nil(t, params.StartDate)
	assert.Nil(t, params.EndDate)
}

func TestNotebookQueryRejectsBadDates(t *testing.T) {
	_, err := NotebookQuery("q", "", "not-a-date", "", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NotebookQuery("q", "", "", "19/12/2023", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
