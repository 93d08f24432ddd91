package driven

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// LLMService is a text-in, text-out generative model.
// Exactly one implementation is active per process, selected by configuration.
//
// Implementations include:
//   - OpenAI (GPT-4o family)
//   - Anthropic (Claude)
//   - Ollama (local models)
//   - Gemini (Google Generative Language API)
type LLMService interface {
	// Generate performs a single blocking completion.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// GenerateStream starts a completion and returns fragments as they arrive.
	// The channel is closed after a chunk with Done or Err set.
	// A non-nil error means the stream never started.
	GenerateStream(ctx context.Context, prompt string, opts GenerateOptions) (<-chan domain.StreamChunk, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
