package services

import (
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// contextSeparator divides passages inside the grounded prompt.
const contextSeparator = "\n---\n"

// Composer assembles generation prompts from templates held by a PromptStore.
type Composer struct {
	prompts driven.PromptStore
}

// NewComposer creates a composer.
func NewComposer(prompts driven.PromptStore) *Composer {
	return &Composer{prompts: prompts}
}

// Compose renders the grounded template when passages is non-empty and the
// no-context template otherwise. History is rendered in full.
func (c *Composer) Compose(
	query string, passages []domain.RetrievedPassage, history []domain.ConversationTurn, language string,
) string {
	values := map[string]string{
		"query":    query,
		"history":  RenderHistory(history),
		"language": language,
	}

	if len(passages) == 0 {
		return renderTemplate(c.template(driven.PromptAnswerNoContext, domain.DefaultNoContextPrompt), values)
	}

	values["context"] = RenderContext(passages)
	return renderTemplate(c.template(driven.PromptAnswerGrounded, domain.DefaultGroundedPrompt), values)
}

func (c *Composer) template(name, fallback string) string {
	tmpl, err := c.prompts.Load(name)
	if err != nil {
		logger.Warn("Loading prompt %q: %v (using built-in template)", name, err)
		return fallback
	}
	return tmpl
}

// RenderHistory formats turns as "User: ..." and "Assistant: ..." lines,
// oldest first.
func RenderHistory(history []domain.ConversationTurn) string {
	lines := make([]string, 0, len(history))
	for _, t := range history {
		lines = append(lines, t.Role.Label()+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}

// RenderContext labels each passage with its source id. Passages sharing a
// source id are merged into the block of the first one so every label
// appears once.
func RenderContext(passages []domain.RetrievedPassage) string {
	order := make([]string, 0, len(passages))
	texts := make(map[string][]string, len(passages))
	for _, p := range passages {
		if _, seen := texts[p.SourceID]; !seen {
			order = append(order, p.SourceID)
		}
		texts[p.SourceID] = append(texts[p.SourceID], p.Text)
	}

	blocks := make([]string, 0, len(order))
	for _, id := range order {
		blocks = append(blocks, "Source: ["+id+"]\n"+strings.Join(texts[id], "\n"))
	}
	return strings.Join(blocks, contextSeparator)
}

// renderTemplate substitutes {{name}} placeholders in one pass, so values
// containing placeholder syntax are left as written.
func renderTemplate(tmpl string, values map[string]string) string {
	pairs := make([]string, 0, 2*len(values))
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
