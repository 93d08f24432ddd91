package driven

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// CorpusLoader reads question/answer records and emits one Document per usable record.
type CorpusLoader interface {
	Load(ctx context.Context, path string) ([]domain.Document, error)
}

// FeedbackSink appends rated answers to durable storage.
type FeedbackSink interface {
	Append(ctx context.Context, fb domain.Feedback) error
	Close() error
}
