package driven

import "context"

// EmbedFunc turns a batch of texts into embedding vectors. The vector index
// takes two of these as injected capabilities: one tuned for documents, one
// for queries. Keeping it a function type rather than a client interface lets
// tests count invocations trivially.
type EmbedFunc func(ctx context.Context, texts []string) ([][]float32, error)

// EmbeddingService generates vector embeddings from text.
//
// Retrieval models distinguish between indexing documents and embedding
// queries, so both directions are exposed separately.
type EmbeddingService interface {
	// EmbedDocuments embeds texts for indexing.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a free-text search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}

// VisionService invokes a multimodal model with a text prompt and an image.
// Transport and rate-limit failures propagate to the caller as retryable
// failures under the change processor's contract.
type VisionService interface {
	// Generate returns the model's textual response for the prompt and
	// image bytes.
	Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	// ModelName returns the name of the vision model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
