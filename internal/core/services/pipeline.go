package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/logger"
)

// NewExtractionHandler wires the extraction pipeline into the change
// processor's handler contract: extract a structured page from the item's
// image bytes and persist it.
//
// Outcome mapping is the retry policy of the whole system: validation
// failures (unparseable name or model response) are permanent, so the item
// is marked handled and never retried; anything else - transport errors,
// rate limits, storage failures - is retryable and leaves the stored hash
// stale.
func NewExtractionHandler(extractor *Extractor, pages driven.PageStore) ItemHandler {
	return func(ctx context.Context, item domain.LeafItem) domain.ProcessOutcome {
		page, err := extractor.Extract(ctx, item.Identifier, item.Content)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				logger.Warn("Skipping malformed media item %s: %v", item.Identifier, err)
				return domain.OutcomeSkippedInvalid
			}
			logger.Warn("Retryable error extracting %s: %v", item.Identifier, err)
			return domain.OutcomeRetry
		}

		if err := pages.Save(ctx, page); err != nil {
			logger.Warn("Retryable error saving page %s: %v", page.Filename, err)
			return domain.OutcomeRetry
		}
		return domain.OutcomeProcessed
	}
}
