// Package markup reduces HTML and Markdown in corpus records to plain text.
//
// FAQ exports often carry formatting from the CMS they came from: inline
// tags, entities, emphasis markers and links. Left in, they waste embedding
// dimensions and leak into prompts.
package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

var (
	scriptTag     = regexp.MustCompile(`(?is)<(script|style|noscript|svg)[^>]*>.*?</(script|style|noscript|svg)>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article|ul|ol)[^>]*>`)
	brTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

	codeFence  = regexp.MustCompile("(?m)^```[a-zA-Z0-9]*\\s*$")
	inlineCode = regexp.MustCompile("`([^`]+)`")
	images     = regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`)
	links      = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings   = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	bold       = regexp.MustCompile(`(\*\*|__)(\S(?:.*?\S)?)(\*\*|__)`)
	italic     = regexp.MustCompile(`(?m)(^|[\s(])[*_](\S(?:[^*_\n]*?\S)?)[*_]([\s).,;:!?]|$)`)
	blockquote = regexp.MustCompile(`(?m)^>\s?`)
	hr         = regexp.MustCompile(`(?m)^\s*[-*_]{3,}\s*$`)

	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Processor strips markup from document text.
type Processor struct{}

// New creates a markup processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "markup"
}

// Process cleans every document, dropping those left without text.
func (p *Processor) Process(docs []domain.Document) []domain.Document {
	out := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		text := Clean(doc.Text)
		if text == "" {
			continue
		}
		out = append(out, domain.Document{Text: text, SourceID: doc.SourceID})
	}
	return out
}

// Clean returns text with HTML tags, entities and Markdown formatting
// removed. Line structure is kept; blank lines collapse to one.
func Clean(text string) string {
	if strings.Contains(text, "<") {
		text = stripHTML(text)
	}
	text = html.UnescapeString(text)
	text = strings.ReplaceAll(text, "\u00a0", " ")
	text = stripMarkdown(text)

	text = multiSpaces.ReplaceAllString(text, " ")
	text = multiNewlines.ReplaceAllString(text, "\n\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func stripHTML(text string) string {
	text = scriptTag.ReplaceAllString(text, "")
	text = htmlComments.ReplaceAllString(text, "")
	text = blockElements.ReplaceAllString(text, "\n")
	text = brTags.ReplaceAllString(text, "\n")
	return allTags.ReplaceAllString(text, "")
}

func stripMarkdown(text string) string {
	text = codeFence.ReplaceAllString(text, "")
	text = inlineCode.ReplaceAllString(text, "$1")
	text = images.ReplaceAllString(text, "$1")
	text = links.ReplaceAllString(text, "$1")
	text = headings.ReplaceAllString(text, "")
	text = bold.ReplaceAllString(text, "$2")
	// Twice: adjacent spans share the whitespace between them.
	text = italic.ReplaceAllString(text, "$1$2$3")
	text = italic.ReplaceAllString(text, "$1$2$3")
	text = blockquote.ReplaceAllString(text, "")
	return hr.ReplaceAllString(text, "")
}
