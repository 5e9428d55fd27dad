package services

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

const (
	// indexBatchSize is how many documents go into one upsert call.
	indexBatchSize = 20

	// indexPersistEvery is how often the index snapshot is persisted
	// during a rebuild, so a crash does not redo all embedding work.
	indexPersistEvery = 100
)

// Indexer rebuilds the vector index from the persisted page set: load all
// pages, aggregate them into dated entries, and upsert the resulting
// documents. Unchanged entries are skipped by the index itself, so a
// rebuild after a small change only embeds what actually changed.
type Indexer struct {
	pages            driven.PageStore
	index            *VectorIndex
	allowedNotebooks []string
	defaultNotebook  string
}

// NewIndexer creates an index rebuilder.
func NewIndexer(pages driven.PageStore, index *VectorIndex, allowedNotebooks []string, defaultNotebook string) *Indexer {
	return &Indexer{
		pages:            pages,
		index:            index,
		allowedNotebooks: allowedNotebooks,
		defaultNotebook:  defaultNotebook,
	}
}

// Rebuild aggregates all pages and upserts their documents in batches.
// Notebooks are independent, so their batches are upserted concurrently and
// gathered before the final snapshot persist.
func (ix *Indexer) Rebuild(ctx context.Context) error {
	pages, err := ix.pages.List(ctx)
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}
	notebooks := Aggregate(pages, ix.allowedNotebooks, ix.defaultNotebook)

	names := make([]string, 0, len(notebooks))
	total := 0
	for name, entries := range notebooks {
		names = append(names, name)
		total += len(entries)
	}
	sort.Strings(names)
	logger.Info("Rebuilding index: %d entries in %d notebooks", total, len(names))

	var indexed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		entries := notebooks[name]
		g.Go(func() error {
			for start := 0; start < len(entries); start += indexBatchSize {
				end := min(start+indexBatchSize, len(entries))

				batch := make([]domain.IndexableDocument, 0, end-start)
				for _, entry := range entries[start:end] {
					doc, err := domain.NewIndexableDocument(entry)
					if err != nil {
						return err
					}
					batch = append(batch, doc)
				}
				if err := ix.index.Upsert(gctx, batch); err != nil {
					return fmt.Errorf("upsert %s batch: %w", name, err)
				}

				count := indexed.Add(int64(len(batch)))
				if count%indexPersistEvery == 0 {
					logger.Debug("Persisting index after %d documents", count)
					if err := ix.index.SaveStore(gctx); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return ix.index.SaveStore(ctx)
}
