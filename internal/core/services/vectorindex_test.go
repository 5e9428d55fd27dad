package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// countingEmbedder returns deterministic vectors and counts texts embedded.
// The vector encodes the text length so distinct texts rank differently.
func countingEmbedder(calls *atomic.Int64) driven.EmbedFunc {
	return func(_ context.Context, texts []string) ([][]float32, error) {
		calls.Add(int64(len(texts)))
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = []float32{float32(len(text)), 1}
		}
		return vectors, nil
	}
}

func dayPtr(date string) *time.Time {
	ts, _ := time.Parse("2006-01-02", date)
	ts = ts.UTC()
	return &ts
}

func testDoc(uid, text, category, date string) domain.IndexableDocument {
	doc := domain.IndexableDocument{
		UID:      uid,
		Document: text,
		Metadata: map[string]string{"category": category},
	}
	if date != "" {
		doc.Timestamp = dayPtr(date)
	}
	return doc
}

func TestUpsertSkipsUnchangedDocuments(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), nil)
	ctx := context.Background()

	docs := []domain.IndexableDocument{
		testDoc("a", "alpha entry", "Daily", "2023-12-19"),
		testDoc("b", "beta entry", "Daily", "2023-12-20"),
	}
	require.NoError(t, index.Upsert(ctx, docs))
	assert.EqualValues(t, 2, calls.Load())
	assert.Equal(t, 2, index.Count())

	// Identical texts: nothing gets embedded again.
	require.NoError(t, index.Upsert(ctx, docs))
	assert.EqualValues(t, 2, calls.Load())

	// One changed text: exactly one embedding call.
	docs[1].Document = "beta entry, revised"
	require.NoError(t, index.Upsert(ctx, docs))
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, 2, index.Count())
}

func TestUpsertDoesNotBlockReadsWhileEmbedding(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	blocking := func(_ context.Context, texts []string) ([][]float32, error) {
		close(started)
		<-release
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = []float32{float32(len(text)), 1}
		}
		return vectors, nil
	}

	var calls atomic.Int64
	index := NewVectorIndex(blocking, countingEmbedder(&calls), nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, index.Upsert(ctx, []domain.IndexableDocument{
			testDoc("a", "alpha entry", "Daily", "2023-12-19"),
		}))
	}()
	<-started

	// The embedding call is in flight; reads must still go through.
	counted := make(chan int, 1)
	go func() { counted <- index.Count() }()
	select {
	case n := <-counted:
		assert.Zero(t, n)
	case <-time.After(2 * time.Second):
		t.Fatal("Count blocked behind an in-flight embedding call")
	}

	close(release)
	<-done
	assert.Equal(t, 1, index.Count())
}

func TestQueryRanksByDistance(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), nil)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.IndexableDocument{
		testDoc("short", "ab", "Daily", "2023-12-19"),
		testDoc("close", "abcde", "Daily", "2023-12-20"),
		testDoc("far", "a long way from the query text", "Daily", "2023-12-21"),
	}))

	results, err := index.Query(ctx, domain.QueryParams{Query: "abcde"})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "close", results[0].Document.UID)
	assert.Zero(t, results[0].Score)
	assert.Less(t, results[0].Score, results[2].Score)
}

func TestQueryAppliesDateWindow(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), nil)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.IndexableDocument{
		testDoc("before", "entry one", "Daily", "2023-12-18"),
		testDoc("in-1", "entry two", "Daily", "2023-12-19"),
		testDoc("in-2", "entry three", "Daily", "2023-12-22"),
		testDoc("after", "entry four", "Daily", "2023-12-23"),
		testDoc("undated", "entry five", "Daily", ""),
	}))

	results, err := index.Query(ctx, domain.QueryParams{
		StartDate: dayPtr("2023-12-19"),
		EndDate:   dayPtr("2023-12-22"),
		Metadata:  map[string]string{"category": "Daily"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	// Filter-only query: zero scores, insertion order preserved.
	assert.Equal(t, "in-1", results[0].Document.UID)
	assert.Equal(t, "in-2", results[1].Document.UID)
	assert.Zero(t, results[0].Score)
	assert.EqualValues(t, 0, calls.Load()-5)
}

func TestQueryFiltersMetadata(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), nil)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.IndexableDocument{
		testDoc("d", "daily entry", "Daily", "2023-12-19"),
		testDoc("w", "weekly entry", "Weekly", "2023-12-19"),
	}))

	results, err := index.Query(ctx, domain.QueryParams{
		Metadata: map[string]string{"category": "Weekly"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "w", results[0].Document.UID)
}

func TestQueryTruncatesToNumResults(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), nil)
	ctx := context.Background()

	docs := make([]domain.IndexableDocument, 0, 15)
	for i := 0; i < 15; i++ {
		docs = append(docs, testDoc(
			string(rune('a'+i)), "entry "+string(rune('a'+i)), "Daily", "2023-12-19"))
	}
	require.NoError(t, index.Upsert(ctx, docs))

	results, err := index.Query(ctx, domain.QueryParams{NumResults: 3})
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = index.Query(ctx, domain.QueryParams{})
	require.NoError(t, err)
	assert.Len(t, results, domain.DefaultMaxResults)
}

func TestSaveAndLoadStoreRoundTrip(t *testing.T) {
	var calls atomic.Int64
	blobs := memory.NewBlobStore()
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), blobs)
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, []domain.IndexableDocument{
		testDoc("a", "alpha entry", "Daily", "2023-12-19"),
		testDoc("b", "beta entry", "Weekly", "2023-12-20"),
	}))
	require.NoError(t, index.SaveStore(ctx))

	restored := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), blobs)
	require.NoError(t, restored.LoadStore(ctx))
	assert.Equal(t, 2, restored.Count())

	// Restored embeddings answer queries without re-embedding documents.
	before := calls.Load()
	results, err := restored.Query(ctx, domain.QueryParams{Query: "alpha entry"})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "a", results[0].Document.UID)
	assert.EqualValues(t, 1, calls.Load()-before)

	// And unchanged upserts stay skipped after a reload.
	require.NoError(t, restored.Upsert(ctx, []domain.IndexableDocument{
		testDoc("a", "alpha entry", "Daily", "2023-12-19"),
	}))
	assert.EqualValues(t, 1, calls.Load()-before)
}

func TestLoadStoreAbsentBlobYieldsEmptyIndex(t *testing.T) {
	var calls atomic.Int64
	index := NewVectorIndex(countingEmbedder(&calls), countingEmbedder(&calls), memory.NewBlobStore())
	require.NoError(t, index.LoadStore(context.Background()))
	assert.Zero(t, index.Count())
}
