package driving

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// IndexService maintains the vector index for the configured collection.
type IndexService interface {
	// Upsert embeds and appends documents to the live collection.
	Upsert(ctx context.Context, docs []domain.Document, modelID string) error

	// Query returns the k nearest entries to vector.
	Query(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error)

	// Rebuild replaces the collection with an empty one.
	Rebuild(ctx context.Context) error

	// Build replaces the collection with the given documents atomically.
	Build(ctx context.Context, docs []domain.Document, modelID string) (domain.Collection, error)

	// Status describes the live collection.
	Status(ctx context.Context) (domain.Collection, error)

	// ModelID is the identifier of the active embedding model.
	ModelID() string
}

// FeedbackService records user ratings of answers.
type FeedbackService interface {
	Record(ctx context.Context, question, answer string, rating domain.Rating) (domain.Feedback, error)
}
