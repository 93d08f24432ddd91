// Package sources renders the passages an answer was grounded on.
package sources

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/faqrag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// Panel lists cited passages with their distances.
type Panel struct {
	passages []domain.RetrievedPassage
	styles   *styles.Styles
	width    int
	height   int
}

// NewPanel creates an empty sources panel.
func NewPanel(s *styles.Styles) *Panel {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Panel{styles: s, width: 80, height: 10}
}

// SetPassages replaces the passages shown.
func (p *Panel) SetPassages(passages []domain.RetrievedPassage) {
	p.passages = passages
}

// Passages returns the passages shown.
func (p *Panel) Passages() []domain.RetrievedPassage {
	return p.passages
}

// SetDimensions sets the panel size.
func (p *Panel) SetDimensions(width, height int) {
	p.width = width
	p.height = height
}

// View renders one line per passage, truncated to the panel width.
func (p *Panel) View() string {
	if len(p.passages) == 0 {
		return p.styles.Muted.Render("No sources for the last answer")
	}

	lines := make([]string, 0, len(p.passages)+1)
	lines = append(lines, p.styles.Title.Render(fmt.Sprintf("Sources (%d)", len(p.passages))))

	limit := len(p.passages)
	if p.height > 1 && limit > p.height-1 {
		limit = p.height - 1
	}

	for _, passage := range p.passages[:limit] {
		label := p.styles.Citation.Render("[" + passage.SourceID + "]")
		meta := p.styles.Muted.Render(fmt.Sprintf("d=%.3f", passage.Distance))
		lines = append(lines, fmt.Sprintf("%s %s %s", label, meta, p.preview(passage.Text)))
	}

	return strings.Join(lines, "\n")
}

func (p *Panel) preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	maxLen := p.width - 24
	if maxLen < 10 {
		maxLen = 10
	}
	runes := []rune(text)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return text
}
