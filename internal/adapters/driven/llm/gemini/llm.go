// Package gemini provides an LLM service adapter using the Google
// Generative Language API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/googleai"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/llm/stream"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

var _ driven.LLMService = (*LLMService)(nil)

// Config holds configuration for the Gemini LLM service.
type Config struct {
	APIKey  string
	BaseURL string

	// Model is required; there is no implicit default.
	Model string

	Timeout  time.Duration
	Attempts int
}

// LLMService provides completions using Gemini.
type LLMService struct {
	client   *googleai.Client
	model    string
	attempts int
}

// NewLLMService creates a new Gemini LLM service.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: gemini model is required", domain.ErrConfiguration)
	}
	client, err := googleai.NewClient(googleai.Config{APIKey: cfg.APIKey, BaseURL: cfg.BaseURL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, err
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = httpretry.DefaultAttempts
	}
	return &LLMService{client: client, model: cfg.Model, attempts: cfg.Attempts}, nil
}

func (s *LLMService) request(prompt string, opts driven.GenerateOptions) *googleai.GenerateContentRequest {
	temperature := opts.Temperature
	return &googleai.GenerateContentRequest{
		Contents: []googleai.Content{{
			Role:  "user",
			Parts: []googleai.Part{{Text: prompt}},
		}},
		GenerationConfig: &googleai.GenerationConfig{
			MaxOutputTokens: opts.MaxTokens,
			Temperature:     &temperature,
			StopSequences:   opts.StopWords,
		},
	}
}

// Generate produces a text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	req := s.request(prompt, opts)
	path := googleai.ModelPath(s.model) + ":generateContent"

	var resp googleai.GenerateContentResponse
	err := httpretry.Do(ctx, s.attempts, func(ctx context.Context) error {
		resp = googleai.GenerateContentResponse{}
		return s.client.Call(ctx, http.MethodPost, path, req, &resp)
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate: %w", err)
	}

	if reason := resp.Blocked(); reason != "" {
		return "", fmt.Errorf("gemini: prompt blocked: %s", reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: no candidates returned")
	}
	return resp.Candidates[0].Content.Text(), nil
}

// GenerateStream streams a completion over server-sent events. Connection
// set-up is retried; a stream that has started is never restarted. The
// stream is complete once a candidate reports a finish reason.
func (s *LLMService) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions) (<-chan domain.StreamChunk, error) {
	req := s.request(prompt, opts)
	path := googleai.ModelPath(s.model) + ":streamGenerateContent"
	query := url.Values{"alt": {"sse"}}

	var resp *http.Response
	err := httpretry.Do(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		resp, err = s.client.Do(ctx, http.MethodPost, path, query, req)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: stream: %w", err)
	}

	return stream.Pump(ctx, resp.Body, func(emit func(string) bool) error {
		return stream.ReadSSE(resp.Body, func(_, data string) (bool, error) {
			var chunk googleai.GenerateContentResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				logger.Debug("gemini: skipping undecodable stream event: %v", err)
				return false, nil
			}
			if reason := chunk.Blocked(); reason != "" {
				return false, fmt.Errorf("gemini: response blocked: %s", reason)
			}
			if len(chunk.Candidates) == 0 {
				return false, nil
			}
			c := chunk.Candidates[0]
			if !emit(c.Content.Text()) {
				return false, ctx.Err()
			}
			return c.FinishReason != "", nil
		})
	}), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping fetches the model metadata, which validates the key without inference.
func (s *LLMService) Ping(ctx context.Context) error {
	if err := s.client.Call(ctx, http.MethodGet, googleai.ModelPath(s.model), nil, nil); err != nil {
		return fmt.Errorf("gemini: ping failed: %w", err)
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
