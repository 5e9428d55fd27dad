// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/ai/gemini"
	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/ai/ollama"
	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Config selects and configures the model providers. Vision always runs on
// Gemini; embeddings can run locally on Ollama instead.
type Config struct {
	// Provider is the embedding provider: "gemini" or "ollama".
	Provider string

	// APIKey is the Gemini API key.
	APIKey string

	// VisionModel overrides the default Gemini vision model.
	VisionModel string

	// EmbedModel overrides the provider's default embedding model.
	EmbedModel string

	// OllamaURL is the Ollama base URL when Provider is "ollama".
	OllamaURL string
}

// CreateServices creates the vision and embedding services for the
// configured provider.
func CreateServices(cfg Config) (driven.VisionService, driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "", ProviderGemini:
		vision, embedder, err := gemini.New(gemini.Config{
			APIKey:      cfg.APIKey,
			VisionModel: cfg.VisionModel,
			EmbedModel:  cfg.EmbedModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrVisionUnavailable, err)
		}
		return vision, embedder, nil

	case ProviderOllama:
		// Embeddings stay local; vision still needs Gemini.
		vision, _, err := gemini.New(gemini.Config{
			APIKey:      cfg.APIKey,
			VisionModel: cfg.VisionModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", domain.ErrVisionUnavailable, err)
		}
		embedder := ollama.NewEmbeddingService(ollama.Config{
			BaseURL: cfg.OllamaURL,
			Model:   cfg.EmbedModel,
		})
		return vision, embedder, nil

	default:
		return nil, nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}

// pinger is implemented by services that can check connectivity cheaply.
type pinger interface {
	Ping(ctx context.Context) error
}

// ValidateEmbeddingService pings the embedding service when it supports it.
// Providers without a lightweight connectivity check pass validation.
func ValidateEmbeddingService(svc driven.EmbeddingService) error {
	p, ok := svc.(pinger)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("%w: service unreachable (%w)", domain.ErrEmbeddingUnavailable, err)
	}
	return nil
}
