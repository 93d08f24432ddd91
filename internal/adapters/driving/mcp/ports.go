package mcp

import (
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

// Ports aggregates the driving ports required by the MCP server.
type Ports struct {
	// Assistant answers questions.
	Assistant driving.Assistant

	// Retriever returns raw context passages.
	Retriever driving.Retriever

	// Index reports collection status. Optional.
	Index driving.IndexService

	// Retrieval holds the default k and threshold for the retrieve tool.
	Retrieval domain.RetrievalSettings
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Assistant == nil {
		return ErrMissingAssistant
	}
	if p.Retriever == nil {
		return ErrMissingRetriever
	}
	return nil
}
