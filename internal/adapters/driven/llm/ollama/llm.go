// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/llm/stream"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultLLMTimeout = 120 * time.Second
)

// LLMConfig holds configuration for the Ollama LLM service.
type LLMConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is required; there is no implicit default.
	Model string

	Timeout  time.Duration
	Attempts int
}

// LLMService provides completions using Ollama.
type LLMService struct {
	client   *http.Client
	baseURL  string
	model    string
	attempts int
}

type generateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Options *options `json:"options,omitempty"`
}

type options struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// generateResponse is both the buffered reply and one NDJSON stream line.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg LLMConfig) (*LLMService, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: ollama model is required", domain.ErrConfiguration)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = httpretry.DefaultAttempts
	}

	return &LLMService{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  cfg.BaseURL,
		model:    cfg.Model,
		attempts: cfg.Attempts,
	}, nil
}

func (s *LLMService) request(prompt string, opts driven.GenerateOptions, streaming bool) ([]byte, error) {
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: streaming,
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 || len(opts.StopWords) > 0 {
		reqBody.Options = &options{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.StopWords,
		}
	}
	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return b, nil
}

func (s *LLMService) post(ctx context.Context, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &httpretry.StatusError{Provider: "ollama", StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return resp, nil
}

// Generate produces a text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	body, err := s.request(prompt, opts, false)
	if err != nil {
		return "", err
	}

	var genResp generateResponse
	err = httpretry.Do(ctx, s.attempts, func(ctx context.Context) error {
		resp, err := s.post(ctx, body)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		genResp = generateResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if genResp.Error != "" {
		return "", errors.New("ollama error: " + genResp.Error)
	}
	return genResp.Response, nil
}

// GenerateStream streams a completion as newline-delimited JSON objects.
func (s *LLMService) GenerateStream(ctx context.Context, prompt string, opts driven.GenerateOptions) (<-chan domain.StreamChunk, error) {
	body, err := s.request(prompt, opts, true)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	err = httpretry.Do(ctx, s.attempts, func(ctx context.Context) error {
		var err error
		resp, err = s.post(ctx, body)
		return err
	})
	if err != nil {
		return nil, err
	}

	return stream.Pump(ctx, resp.Body, func(emit func(string) bool) error {
		return stream.ReadNDJSON(resp.Body, func(line generateResponse) (bool, error) {
			if line.Error != "" {
				return false, errors.New("ollama error: " + line.Error)
			}
			if !emit(line.Response) {
				return false, ctx.Err()
			}
			return line.Done, nil
		})
	}), nil
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates connectivity through /api/tags without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	return nil
}
