package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input: a bad media
	// source URI, a filename without a parseable timestamp, or a model
	// response that does not decode into a journal page.
	ErrInvalidInput = errors.New("invalid input")

	// ErrScanInProgress indicates a media scan is already running.
	// Scans are single-flight: later triggers are dropped, not queued.
	ErrScanInProgress = errors.New("scan already in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Semantic search is disabled without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVisionUnavailable indicates the vision model is not configured.
	// Page extraction is disabled without it.
	ErrVisionUnavailable = errors.New("vision service unavailable")

	// ErrRateLimited indicates the model API rate limit was exceeded.
	// Rate-limited items are retried on the next scan.
	ErrRateLimited = errors.New("rate limited")
)
