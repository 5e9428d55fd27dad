// Package gemini provides vision and embedding adapters backed by the
// Google Generative Language REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/journal-assistant/internal/core/domain"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
)

// Ensure the adapters implement the interfaces.
var (
	_ driven.VisionService    = (*VisionService)(nil)
	_ driven.EmbeddingService = (*EmbeddingService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultVisionModel = "gemini-1.5-flash"
	DefaultEmbedModel  = "text-embedding-004"
	DefaultTimeout     = 120 * time.Second

	// Sustained request rate, kept well below the free-tier quota so a
	// large scan does not burn through it.
	defaultRequestsPerSecond = 1.0
	defaultBurstSize         = 2
)

// Embedding task types. Retrieval models embed documents and queries
// differently.
const (
	taskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	taskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Config holds configuration for the Gemini adapters.
type Config struct {
	// APIKey is the Generative Language API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public endpoint).
	BaseURL string

	// VisionModel is the multimodal model (default: gemini-1.5-flash).
	VisionModel string

	// EmbedModel is the embedding model (default: text-embedding-004).
	EmbedModel string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration

	// RequestsPerSecond overrides the sustained request rate.
	RequestsPerSecond float64
}

// transport is the shared rate-limited HTTP layer behind both adapters.
// Vision and embedding calls draw from the same token bucket because they
// count against the same per-key quota.
type transport struct {
	client  *http.Client
	limiter *rate.Limiter
	baseURL string
	apiKey  string
}

// VisionService invokes a Gemini multimodal model.
type VisionService struct {
	t     *transport
	model string
}

// EmbeddingService generates embeddings using a Gemini embedding model.
type EmbeddingService struct {
	t     *transport
	model string
}

// New creates the Gemini vision and embedding adapters over a shared
// rate-limited transport.
func New(cfg Config) (*VisionService, *EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("gemini: api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.VisionModel == "" {
		cfg.VisionModel = DefaultVisionModel
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	t := &transport{
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), defaultBurstSize),
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
	return &VisionService{t: t, model: cfg.VisionModel},
		&EmbeddingService{t: t, model: cfg.EmbedModel},
		nil
}

// generateContentRequest is the generateContent API request format.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// generateContentResponse is the generateContent API response format.
type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate sends the prompt and image to the vision model and returns the
// textual response.
func (s *VisionService) Generate(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	reqBody := generateContentRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MIMEType: mimeType,
					Data:     base64.StdEncoding.EncodeToString(image),
				}},
			},
		}},
	}

	var resp generateContentResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", s.t.baseURL, s.model)
	if err := s.t.post(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("%w: model returned no candidates", domain.ErrInvalidInput)
	}
	var text string
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}
	return text, nil
}

// ModelName returns the name of the vision model being used.
func (s *VisionService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *VisionService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// batchEmbedRequest is the batchEmbedContents API request format.
type batchEmbedRequest struct {
	Requests []embedContentRequest `json:"requests"`
}

type embedContentRequest struct {
	Model    string  `json:"model"`
	Content  content `json:"content"`
	TaskType string  `json:"taskType"`
}

// batchEmbedResponse is the batchEmbedContents API response format.
type batchEmbedResponse struct {
	Embeddings []struct {
		Values []float32 `json:"values"`
	} `json:"embeddings"`
}

// EmbedDocuments embeds texts for indexing.
func (s *EmbeddingService) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return s.embed(ctx, texts, taskRetrievalDocument)
}

// EmbedQuery embeds a free-text search query.
func (s *EmbeddingService) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, []string{text}, taskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embed issues one batch embedding call with the given task type.
func (s *EmbeddingService) embed(ctx context.Context, texts []string, taskType string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := batchEmbedRequest{Requests: make([]embedContentRequest, len(texts))}
	for i, text := range texts {
		reqBody.Requests[i] = embedContentRequest{
			Model:    "models/" + s.model,
			Content:  content{Parts: []part{{Text: text}}},
			TaskType: taskType,
		}
	}

	var resp batchEmbedResponse
	url := fmt.Sprintf("%s/models/%s:batchEmbedContents", s.t.baseURL, s.model)
	if err := s.t.post(ctx, url, reqBody, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	vectors := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		vectors[i] = emb.Values
	}
	return vectors, nil
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// post sends a rate-limited JSON request and decodes the response into out.
func (t *transport) post(ctx context.Context, url string, in, out any) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}

	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", t.apiKey)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: gemini quota exceeded", domain.ErrRateLimited)
	}
	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("gemini error (status %d): failed to read response", resp.StatusCode)
		}
		return fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
