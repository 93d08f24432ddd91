package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// Ensure Assistant implements the interface.
var _ driving.Assistant = (*Assistant)(nil)

// AssistantConfig holds the retrieval parameters applied to every turn.
type AssistantConfig struct {
	TopK      int
	Threshold float64

	// Language forces the answer language. Empty means detect per question.
	Language string
}

// Assistant wires rewrite, retrieval, composition and generation into one turn.
type Assistant struct {
	rewriter  *Rewriter
	retriever driving.Retriever
	composer  *Composer
	generator *AnswerGenerator
	cfg       AssistantConfig
}

// NewAssistant creates the question answering pipeline.
func NewAssistant(
	rewriter *Rewriter,
	retriever driving.Retriever,
	composer *Composer,
	generator *AnswerGenerator,
	cfg AssistantConfig,
) *Assistant {
	return &Assistant{
		rewriter:  rewriter,
		retriever: retriever,
		composer:  composer,
		generator: generator,
		cfg:       cfg,
	}
}

// Ask answers req with a buffered generation.
func (a *Assistant) Ask(ctx context.Context, req domain.AskRequest) domain.Answer {
	ans, prompt := a.prepare(ctx, req)
	if ans.NoContext {
		return ans
	}
	ans.Text = a.generator.Generate(ctx, prompt)
	return ans
}

// AskStream answers req with a streamed generation. When nothing was
// retrieved the channel yields the no-context message as its only fragment.
func (a *Assistant) AskStream(ctx context.Context, req domain.AskRequest) (domain.Answer, <-chan string) {
	ans, prompt := a.prepare(ctx, req)
	if ans.NoContext {
		ch := make(chan string, 1)
		ch <- ans.Text
		close(ch)
		ans.Text = ""
		return ans, ch
	}
	return ans, a.generator.GenerateStream(ctx, prompt)
}

// prepare runs everything before generation. It returns a finished answer
// with NoContext set when retrieval found nothing, and the prompt otherwise.
func (a *Assistant) prepare(ctx context.Context, req domain.AskRequest) (domain.Answer, string) {
	logger.Section("Ask")
	ans := domain.Answer{
		Question: req.Question,
		Language: a.language(req),
	}

	ans.StandaloneQuery = a.rewriter.Rewrite(ctx, req.Question, req.History)
	ans.Passages = a.retriever.Retrieve(ctx, ans.StandaloneQuery, a.cfg.TopK, a.cfg.Threshold)
	if len(ans.Passages) == 0 {
		logger.Info("No passages retrieved, skipping generation")
		ans.NoContext = true
		ans.Text = domain.NoContextMessage
		return ans, ""
	}

	prompt := a.composer.Compose(req.Question, ans.Passages, req.History, ans.Language)
	logger.Debug("Prompt:\n%s", prompt)
	return ans, prompt
}

func (a *Assistant) language(req domain.AskRequest) string {
	if l := strings.TrimSpace(req.Language); l != "" {
		return l
	}
	if a.cfg.Language != "" {
		return a.cfg.Language
	}
	return DetectLanguage(req.Question)
}
