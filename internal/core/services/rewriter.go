package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// rewriteMaxTokens caps the standalone question length.
const rewriteMaxTokens = 128

// Rewriter turns a follow-up utterance into a standalone query for retrieval.
type Rewriter struct {
	llm     driven.LLMService
	prompts driven.PromptStore
}

// NewRewriter creates a rewriter.
func NewRewriter(llm driven.LLMService, prompts driven.PromptStore) *Rewriter {
	return &Rewriter{llm: llm, prompts: prompts}
}

// Rewrite returns query unchanged when history is empty, without calling
// the model. Otherwise it returns the model's trimmed reformulation, or the
// original query if the model fails or answers with nothing.
func (r *Rewriter) Rewrite(ctx context.Context, query string, history []domain.ConversationTurn) string {
	if len(history) == 0 {
		return query
	}

	logger.Section("Query Rewrite")
	tmpl, err := r.prompts.Load(driven.PromptQueryRewrite)
	if err != nil {
		logger.Warn("Loading rewrite prompt: %v (using original query)", err)
		return query
	}

	prompt := renderTemplate(tmpl, map[string]string{
		"history": RenderHistory(history),
		"query":   query,
	})

	out, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{MaxTokens: rewriteMaxTokens})
	if err != nil {
		logger.Warn("Rewrite failed: %v (using original query)", err)
		return query
	}

	out = strings.TrimSpace(out)
	if out == "" {
		logger.Warn("Rewrite returned nothing (using original query)")
		return query
	}
	logger.Info("Standalone query: %q", out)
	return out
}
