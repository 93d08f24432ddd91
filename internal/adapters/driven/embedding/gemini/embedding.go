// Package gemini embeds text with the Google Generative Language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/googleai"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768

	// maxBatch is the API limit on requests per batchEmbedContents call.
	maxBatch = 100
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Attempts   int
}

// EmbeddingService generates embeddings using Gemini.
type EmbeddingService struct {
	client     *googleai.Client
	model      string
	dimensions int
	attempts   int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	client, err := googleai.NewClient(googleai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL})
	if err != nil {
		return nil, err
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		if d, ok := domain.EmbeddingDimensions()[cfg.Model]; ok {
			cfg.Dimensions = d
		} else {
			cfg.Dimensions = DefaultDimensions
		}
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = httpretry.DefaultAttempts
	}

	return &EmbeddingService{
		client:     client,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		attempts:   cfg.Attempts,
	}, nil
}

func (s *EmbeddingService) request(text string) googleai.EmbedContentRequest {
	return googleai.EmbedContentRequest{
		Model:   googleai.ModelPath(s.model),
		Content: googleai.Content{Parts: []googleai.Part{{Text: text}}},
	}
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	req := s.request(text)
	path := googleai.ModelPath(s.model) + ":embedContent"

	var resp googleai.EmbedContentResponse
	err := httpretry.Do(ctx, s.attempts, func(ctx context.Context) error {
		resp = googleai.EmbedContentResponse{}
		return s.client.Call(ctx, http.MethodPost, path, req, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: embed: %w", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, errors.New("gemini: no embedding returned")
	}
	return resp.Embedding.Values, nil
}

// EmbedBatch embeds texts in API-sized batches, returning vectors in input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	path := googleai.ModelPath(s.model) + ":batchEmbedContents"

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxBatch {
		end := min(start+maxBatch, len(texts))

		req := googleai.BatchEmbedContentsRequest{}
		for _, t := range texts[start:end] {
			req.Requests = append(req.Requests, s.request(t))
		}

		var resp googleai.BatchEmbedContentsResponse
		err := httpretry.Do(ctx, s.attempts, func(ctx context.Context) error {
			resp = googleai.BatchEmbedContentsResponse{}
			return s.client.Call(ctx, http.MethodPost, path, req, &resp)
		})
		if err != nil {
			return nil, fmt.Errorf("gemini: batch embed: %w", err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("gemini: expected %d embeddings, got %d", end-start, len(resp.Embeddings))
		}
		for _, e := range resp.Embeddings {
			out = append(out, e.Values)
		}
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping fetches the model metadata, which validates the key without inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if err := s.client.Call(ctx, http.MethodGet, googleai.ModelPath(s.model), nil, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}
