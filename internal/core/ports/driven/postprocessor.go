package driven

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// PostProcessor transforms loaded corpus documents before indexing.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the transformed documents. SourceIDs must be preserved
	// so citations still point at the originating record.
	Process(docs []domain.Document) []domain.Document
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the documents through all processors in order.
	Process(ctx context.Context, docs []domain.Document) ([]domain.Document, error)
}
