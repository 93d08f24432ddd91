// Package httpapi serves the question answering pipeline over HTTP.
// Answers can be returned whole or streamed as server-sent events.
package httpapi

import (
	"errors"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

// ErrMissingAssistant is returned when the assistant is not provided.
var ErrMissingAssistant = errors.New("httpapi: assistant is required")

// Ports aggregates the driving ports used by the HTTP server.
type Ports struct {
	Assistant driving.Assistant

	// Index reports collection status. Optional.
	Index driving.IndexService

	// Feedback records ratings. Optional; the endpoint answers 501 without it.
	Feedback driving.FeedbackService

	// Chat bounds the history accepted per request.
	Chat domain.ChatSettings
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	return nil
}
