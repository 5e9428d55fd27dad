package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// VectorIndex is a content-addressed similarity index over journal entries.
// Documents and their embeddings live in side-by-side maps keyed by uid so
// the two can be persisted and reloaded independently of the embedding
// provider.
//
// The embedding functions are injected capabilities, not a vector-DB
// client: retrieval models use different task modes for indexing and
// querying, hence two functions.
type VectorIndex struct {
	embedDocuments driven.EmbedFunc
	embedQuery     driven.EmbedFunc
	blobs          driven.BlobStore

	mu         sync.RWMutex
	documents  map[string]domain.IndexableDocument
	embeddings map[string][]float32
	order      []string // insertion order, for stable ranking ties
}

// indexSnapshot is the persisted form of the index.
type indexSnapshot struct {
	Documents  map[string]domain.IndexableDocument `json:"documents"`
	Embeddings map[string][]float32                `json:"embeddings"`
	Order      []string                            `json:"order"`
}

// NewVectorIndex creates an empty index. blobs may be nil, in which case
// SaveStore and LoadStore are no-ops.
func NewVectorIndex(embedDocuments, embedQuery driven.EmbedFunc, blobs driven.BlobStore) *VectorIndex {
	return &VectorIndex{
		embedDocuments: embedDocuments,
		embedQuery:     embedQuery,
		blobs:          blobs,
		documents:      make(map[string]domain.IndexableDocument),
		embeddings:     make(map[string][]float32),
	}
}

// Upsert inserts or updates documents keyed by uid. Documents whose text is
// byte-identical to what is already indexed are skipped without touching the
// embedding function; only the remainder is embedded, in one batch.
// An empty input is a no-op.
func (v *VectorIndex) Upsert(ctx context.Context, documents []domain.IndexableDocument) error {
	if len(documents) == 0 {
		return nil
	}
	logger.Debug("Upserting %d documents in the index", len(documents))

	v.mu.RLock()
	changed := make([]domain.IndexableDocument, 0, len(documents))
	for _, doc := range documents {
		if existing, ok := v.documents[doc.UID]; ok && existing.Document == doc.Document {
			continue
		}
		changed = append(changed, doc)
	}
	v.mu.RUnlock()

	if len(changed) == 0 {
		logger.Debug("Skipping batch of unchanged documents")
		return nil
	}

	// The embedding call happens outside the lock so concurrent upserts
	// and queries are not serialised behind a network round trip.
	texts := make([]string, len(changed))
	for i, doc := range changed {
		texts[i] = doc.Document
	}
	vectors, err := v.embedDocuments(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(changed) {
		return fmt.Errorf("embedding count mismatch: got %d for %d documents", len(vectors), len(changed))
	}

	logger.Debug("Indexing batch of %d changed documents", len(changed))
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, doc := range changed {
		// Re-check under the write lock: another upsert may have indexed
		// the same text while this batch was being embedded.
		if existing, ok := v.documents[doc.UID]; ok && existing.Document == doc.Document {
			continue
		}
		if _, ok := v.documents[doc.UID]; !ok {
			v.order = append(v.order, doc.UID)
		}
		v.documents[doc.UID] = doc
		v.embeddings[doc.UID] = vectors[i]
	}
	return nil
}

// Count returns the number of indexed documents.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.documents)
}

// Query ranks indexed documents for the given parameters. Candidates are
// filtered by metadata equality and inclusive date bounds first; when a
// free-text query is present they are ranked by Euclidean distance to its
// embedding (ascending), otherwise every match is returned with a zero
// score. Ties keep insertion order. The result list is truncated to
// NumResults (default domain.DefaultMaxResults).
func (v *VectorIndex) Query(ctx context.Context, params domain.QueryParams) ([]domain.QueryResult, error) {
	var queryVec []float32
	if params.Query != "" {
		vectors, err := v.embedQuery(ctx, []string{params.Query})
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		if len(vectors) != 1 {
			return nil, fmt.Errorf("embedding count mismatch: got %d for one query", len(vectors))
		}
		queryVec = vectors[0]
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	results := make([]domain.QueryResult, 0, len(v.order))
	for _, uid := range v.order {
		doc := v.documents[uid]
		if !matchesFilters(doc, params) {
			continue
		}
		score := 0.0
		if queryVec != nil {
			score = euclideanDistance(queryVec, v.embeddings[uid])
		}
		results = append(results, domain.QueryResult{Document: doc, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	limit := params.NumResults
	if limit <= 0 {
		limit = domain.DefaultMaxResults
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// matchesFilters applies metadata equality and inclusive date bounds.
// Documents without a timestamp fail any date filter.
func matchesFilters(doc domain.IndexableDocument, params domain.QueryParams) bool {
	if params.StartDate != nil && (doc.Timestamp == nil || doc.Timestamp.Before(*params.StartDate)) {
		return false
	}
	if params.EndDate != nil && (doc.Timestamp == nil || doc.Timestamp.After(*params.EndDate)) {
		return false
	}
	for key, want := range params.Metadata {
		if !metadataMatch(doc.Metadata[key], want) {
			return false
		}
	}
	return true
}

// metadataMatch compares a filter value against a stored metadata value,
// which may hold several comma-separated tags.
func metadataMatch(got, want string) bool {
	if got == want {
		return true
	}
	for _, tag := range strings.Split(got, ",") {
		if tag == want {
			return true
		}
	}
	return false
}

// euclideanDistance is the L2 norm of the difference between two vectors.
// A missing dimension counts as zero.
func euclideanDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = float64(a[i])
		}
		if i < len(b) {
			bv = float64(b[i])
		}
		d := av - bv
		sum += d * d
	}
	return math.Sqrt(sum)
}

// SaveStore serialises the full document and embedding maps to the blob
// store.
func (v *VectorIndex) SaveStore(ctx context.Context) error {
	if v.blobs == nil {
		return nil
	}

	v.mu.RLock()
	snapshot := indexSnapshot{
		Documents:  v.documents,
		Embeddings: v.embeddings,
		Order:      v.order,
	}
	data, err := json.Marshal(snapshot)
	v.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := v.blobs.Save(ctx, data); err != nil {
		return fmt.Errorf("save index: %w", err)
	}
	return nil
}

// LoadStore restores the index from the blob store. An absent blob yields
// an empty index, not an error.
func (v *VectorIndex) LoadStore(ctx context.Context) error {
	if v.blobs == nil {
		return nil
	}

	data, err := v.blobs.Load(ctx)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot indexSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode index: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.documents = snapshot.Documents
	v.embeddings = snapshot.Embeddings
	v.order = snapshot.Order
	if v.documents == nil {
		v.documents = make(map[string]domain.IndexableDocument)
	}
	if v.embeddings == nil {
		v.embeddings = make(map[string][]float32)
	}
	return nil
}
