// Package tui provides an interactive terminal chat for faqrag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Assistant answers questions. Required.
	Assistant driving.Assistant

	// Feedback records ratings of answers. Optional.
	Feedback driving.FeedbackService

	// Index reports collection status for the header. Optional.
	Index driving.IndexService

	// Chat bounds the history kept per session.
	Chat domain.ChatSettings
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
