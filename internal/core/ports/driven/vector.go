package driven

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// VectorStore persists named collections of embedded passages.
//
// A collection name points at one published generation. Writers fill a
// staged generation and publish it, which swaps the pointer in one step;
// readers never observe a partially written generation.
type VectorStore interface {
	// Stage creates an empty, unpublished generation for the collection.
	// It returns the generation identifier.
	Stage(ctx context.Context, collection, modelID string, dimensions int) (string, error)

	// Insert appends entries to a staged or published generation in one transaction.
	// IDs and sequence numbers are assigned by the store.
	Insert(ctx context.Context, generation string, entries []domain.IndexedEntry) error

	// Publish makes generation the live fill of collection and drops the previous one.
	Publish(ctx context.Context, collection, generation string) error

	// Discard removes an unpublished generation.
	Discard(ctx context.Context, generation string) error

	// Collection describes the live generation.
	// Returns domain.ErrCollectionNotFound if nothing is published under the name.
	Collection(ctx context.Context, collection string) (domain.Collection, error)

	// Query returns at most k entries nearest to vector, ascending by squared
	// Euclidean distance, ties broken by insertion order.
	Query(ctx context.Context, collection string, vector []float32, k int) ([]domain.VectorHit, error)

	// Drop removes the collection and every generation it owns. Absent collections are not an error.
	Drop(ctx context.Context, collection string) error

	// Close releases resources.
	Close() error
}
