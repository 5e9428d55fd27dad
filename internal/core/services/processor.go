package services

import (
	"context"
	"fmt"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driving"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// Ensure Processor implements the interface.
var _ driving.MediaProcessor = (*Processor)(nil)

// mediaSourceURIRe validates manually supplied media identifiers.
var mediaSourceURIRe = regexp.MustCompile(`^media-source://[^/]+/.+`)

// ItemHandler processes one changed media item and reports the outcome.
// The outcome, not an error type, decides whether the item's stored hash is
// updated (no retry) or left stale (retried next scan).
type ItemHandler func(ctx context.Context, item domain.LeafItem) domain.ProcessOutcome

// Processor orchestrates a single scan pass: walk the tree, compare content
// hashes, hand changed items to the handler, and persist progress after
// every accepted item so a crash mid-scan keeps a consistent prefix.
//
// Scans are single-flight. The guard is a plain atomic flag flipped before
// the first blocking call; a timer firing during a slow scan must never let
// two scans race on the same hash store.
type Processor struct {
	walker  *Walker
	state   *ScanStateStore
	handler ItemHandler
	root    string

	scanning atomic.Bool
}

// NewProcessor creates a change processor scanning the tree under root.
func NewProcessor(walker *Walker, state *ScanStateStore, root string, handler ItemHandler) *Processor {
	return &Processor{
		walker:  walker,
		state:   state,
		handler: handler,
		root:    root,
	}
}

// ProcessOnce performs one scan pass and returns its statistics.
// A second invocation while a scan is running returns
// domain.ErrScanInProgress without touching the tree.
func (p *Processor) ProcessOnce(ctx context.Context) (domain.ScanStats, error) {
	if !p.scanning.CompareAndSwap(false, true) {
		logger.Debug("Scan already running; skipping trigger")
		return domain.ScanStats{}, domain.ErrScanInProgress
	}
	defer p.scanning.Store(false)

	logger.Info("Processing changes in media source %s", p.root)

	state, err := p.state.Load(ctx)
	if err != nil {
		return domain.ScanStats{}, err
	}

	stats := domain.ScanStats{
		ScanID:        uuid.NewString(),
		LastScanStart: time.Now().UTC(),
	}

	for ev := range p.walker.Walk(ctx, p.root) {
		switch {
		case ev.Err != nil:
			logger.Warn("Scan error: %v", ev.Err)
			stats.Errors++

		case ev.Folder != "":
			stats.ScannedFolders++

		case ev.Leaf != nil:
			stats.ScannedFiles++
			p.processLeaf(ctx, *ev.Leaf, state, &stats)
		}
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	stats.LastScanEnd = time.Now().UTC()
	state.Stats = stats
	if err := p.state.Save(ctx, state); err != nil {
		return stats, err
	}

	logger.Info("Scan complete: %d processed, %d skipped, %d errors",
		stats.ProcessedFiles, stats.SkippedItems, stats.Errors)
	return stats, nil
}

// processLeaf applies change detection and the handler contract to one leaf.
func (p *Processor) processLeaf(ctx context.Context, item domain.LeafItem, state *ScanState, stats *domain.ScanStats) {
	if state.Hashes[item.Identifier] == item.ContentHash {
		logger.Debug("Content of %s unchanged, skipping", item.Identifier)
		stats.SkippedItems++
		return
	}

	logger.Debug("Content of %s changed (%d bytes)", item.Identifier, len(item.Content))
	outcome := p.handler(ctx, item)
	logger.Debug("Handler outcome for %s: %s", item.Identifier, outcome)

	switch outcome {
	case domain.OutcomeProcessed, domain.OutcomeSkippedInvalid:
		// Accepted: record the hash and persist immediately so partial
		// progress survives a crash later in the scan.
		state.Hashes[item.Identifier] = item.ContentHash
		stats.ProcessedFiles++
		state.Stats = *stats
		if err := p.state.Save(ctx, state); err != nil {
			logger.Warn("Persisting scan state failed: %v", err)
		}

	case domain.OutcomeRetry:
		// Stale hash forces a retry on the next scan.
		logger.Info("Retryable error processing %s", item.Identifier)
		stats.Errors++
	}
}

// ProcessItem handles a single media item outside the periodic scan.
// The identifier must look like media-source://<domain>/<path>.
func (p *Processor) ProcessItem(ctx context.Context, identifier string) error {
	if !mediaSourceURIRe.MatchString(identifier) {
		return fmt.Errorf("%w: not a media source uri: %s", domain.ErrInvalidInput, identifier)
	}

	item, err := p.walker.Fetch(ctx, identifier)
	if err != nil {
		return fmt.Errorf("fetch media item: %w", err)
	}

	state, err := p.state.Load(ctx)
	if err != nil {
		return err
	}

	switch outcome := p.handler(ctx, item); outcome {
	case domain.OutcomeProcessed, domain.OutcomeSkippedInvalid:
		state.Hashes[item.Identifier] = item.ContentHash
		if err := p.state.Save(ctx, state); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("retryable failure processing %s", identifier)
	}
}

// Stats returns the persisted statistics of the last scan.
func (p *Processor) Stats(ctx context.Context) (domain.ScanStats, error) {
	state, err := p.state.Load(ctx)
	if err != nil {
		return domain.ScanStats{}, err
	}
	return state.Stats, nil
}
