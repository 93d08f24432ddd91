package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// AnswerGenerator runs composed prompts through the configured model.
// Failures never escape: the buffered path returns the apology and the
// streamed path ends with an error fragment.
type AnswerGenerator struct {
	llm  driven.LLMService
	opts driven.GenerateOptions
}

// NewAnswerGenerator creates a generator that passes opts on every call.
func NewAnswerGenerator(llm driven.LLMService, opts driven.GenerateOptions) *AnswerGenerator {
	return &AnswerGenerator{llm: llm, opts: opts}
}

// Generate returns the trimmed model output, or domain.ApologyMessage if the
// call fails or produces no text.
func (g *AnswerGenerator) Generate(ctx context.Context, prompt string) string {
	logger.Section("Generation")
	out, err := g.llm.Generate(ctx, prompt, g.opts)
	if err != nil {
		logger.Warn("Generation failed: %v", err)
		return domain.ApologyMessage
	}

	out = strings.TrimSpace(out)
	if out == "" {
		logger.Warn("Generation returned an empty answer")
		return domain.ApologyMessage
	}
	return out
}

// GenerateStream forwards text fragments as the model produces them. If the
// stream cannot start or breaks, a final domain.StreamErrorMessage fragment
// is sent. The channel is closed when the stream ends or ctx is cancelled.
func (g *AnswerGenerator) GenerateStream(ctx context.Context, prompt string) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)
		logger.Section("Streaming Generation")

		chunks, err := g.llm.GenerateStream(ctx, prompt, g.opts)
		if err != nil {
			logger.Warn("Starting stream failed: %v", err)
			send(ctx, out, domain.StreamErrorMessage)
			return
		}

		for {
			select {
			case <-ctx.Done():
				logger.Debug("Stream cancelled by consumer")
				return
			case chunk, ok := <-chunks:
				if !ok {
					return
				}
				if chunk.Content != "" && !send(ctx, out, chunk.Content) {
					return
				}
				if chunk.Err != nil {
					logger.Warn("Stream failed: %v", chunk.Err)
					send(ctx, out, domain.StreamErrorMessage)
					return
				}
				if chunk.Done {
					return
				}
			}
		}
	}()

	return out
}

// send delivers s unless ctx is cancelled first.
func send(ctx context.Context, out chan<- string, s string) bool {
	select {
	case out <- s:
		return true
	case <-ctx.Done():
		return false
	}
}
