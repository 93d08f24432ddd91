package services

import (
	"context"
	"errors"
	"strings"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// Ensure Retriever implements the interface.
var _ driving.Retriever = (*Retriever)(nil)

// nearestQuerier is the part of the index the retriever reads from.
type nearestQuerier interface {
	Query(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error)
}

// Retriever embeds a query, looks up its nearest passages and applies the
// distance threshold.
type Retriever struct {
	index    nearestQuerier
	embedder driven.EmbeddingService
}

// NewRetriever creates a retriever. embedder must be the model the index was built with.
func NewRetriever(index nearestQuerier, embedder driven.EmbeddingService) *Retriever {
	return &Retriever{index: index, embedder: embedder}
}

// Retrieve returns at most k passages nearest to query, ascending by
// distance. A threshold above zero drops passages farther than it.
// Any failure yields an empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int, threshold float64) []domain.RetrievedPassage {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, k=%d, threshold=%g", query, k, threshold)

	passages := []domain.RetrievedPassage{}
	if k <= 0 || strings.TrimSpace(query) == "" {
		return passages
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Embedding query failed: %v", err)
		return passages
	}

	hits, err := r.index.Query(ctx, vec, k)
	switch {
	case errors.Is(err, domain.ErrCollectionNotFound):
		logger.Info("No collection to search: %v", err)
		return passages
	case err != nil:
		logger.Warn("Vector query failed: %v", err)
		return passages
	}

	for _, h := range hits {
		if threshold > 0 && h.Distance > threshold {
			logger.Debug("Dropping %s: distance %.4f above threshold", h.Entry.Document.SourceID, h.Distance)
			continue
		}
		passages = append(passages, domain.RetrievedPassage{
			Text:     h.Entry.Document.Text,
			SourceID: h.Entry.Document.SourceID,
			Distance: h.Distance,
		})
	}

	logger.Info("Retrieved %d of %d candidates", len(passages), len(hits))
	return passages
}
