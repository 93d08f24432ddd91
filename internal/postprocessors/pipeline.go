// Package postprocessors transforms corpus documents before they are embedded.
package postprocessors

import (
	"context"
	"fmt"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline chains multiple PostProcessors and runs them in order.
type Pipeline struct {
	processors []driven.PostProcessor
}

// NewPipeline creates a new processing pipeline with the given processors.
// Processors are executed in the order provided.
func NewPipeline(processors ...driven.PostProcessor) *Pipeline {
	return &Pipeline{
		processors: processors,
	}
}

// Process runs the documents through every processor in order. Each
// processor receives the previous one's output.
func (p *Pipeline) Process(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	for _, processor := range p.processors {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("processor %s: %w", processor.Name(), err)
		}
		before := len(docs)
		docs = processor.Process(docs)
		logger.Debug("postprocessor %s: %d -> %d documents", processor.Name(), before, len(docs))
	}
	return docs, nil
}

// Add appends a processor to the pipeline.
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.processors = append(p.processors, processor)
}

// Len returns the number of processors in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.processors)
}
