// Package memory provides a process-local VectorStore. Collections are lost
// when the process exits; it backs tests and throwaway sessions.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/vecmath"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type generation struct {
	collection string
	modelID    string
	dimensions int
	createdAt  time.Time
	entries    []domain.IndexedEntry
}

// Store is an in-memory implementation of driven.VectorStore.
type Store struct {
	mu          sync.RWMutex
	generations map[string]*generation
	live        map[string]string
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		generations: make(map[string]*generation),
		live:        make(map[string]string),
	}
}

// Stage creates an empty, unpublished generation.
func (s *Store) Stage(_ context.Context, collection, modelID string, dimensions int) (string, error) {
	if collection == "" || modelID == "" || dimensions <= 0 {
		return "", fmt.Errorf("%w: collection, model id and dimensions are required", domain.ErrInvalidInput)
	}

	id := "gen_" + uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generations[id] = &generation{
		collection: collection,
		modelID:    modelID,
		dimensions: dimensions,
		createdAt:  time.Now().UTC(),
	}
	return id, nil
}

// Insert appends entries to a generation. Either all entries are added or none.
func (s *Store) Insert(_ context.Context, gen string, entries []domain.IndexedEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.generations[gen]
	if !ok {
		return fmt.Errorf("%w: generation %s", domain.ErrNotFound, gen)
	}
	for _, e := range entries {
		if len(e.Embedding) != g.dimensions {
			return fmt.Errorf("%w: entry %q has %d dimensions, collection expects %d",
				domain.ErrDimensionMismatch, e.Document.SourceID, len(e.Embedding), g.dimensions)
		}
	}

	seq := int64(len(g.entries))
	for _, e := range entries {
		g.entries = append(g.entries, domain.IndexedEntry{
			ID:        vecmath.EntryID(seq),
			Seq:       seq,
			Embedding: slices.Clone(e.Embedding),
			Document:  e.Document,
		})
		seq++
	}
	return nil
}

// Publish makes gen the live generation of collection.
func (s *Store) Publish(_ context.Context, collection, gen string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.generations[gen]
	if !ok {
		return fmt.Errorf("%w: generation %s", domain.ErrNotFound, gen)
	}
	if g.collection != collection {
		return fmt.Errorf("%w: generation %s belongs to %s", domain.ErrInvalidInput, gen, g.collection)
	}

	if previous, ok := s.live[collection]; ok && previous != gen {
		delete(s.generations, previous)
	}
	s.live[collection] = gen
	return nil
}

// Discard removes an unpublished generation.
func (s *Store) Discard(_ context.Context, gen string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, ok := s.generations[gen]
	if !ok || s.live[g.collection] == gen {
		return nil
	}
	delete(s.generations, gen)
	return nil
}

// Collection describes the live generation.
func (s *Store) Collection(_ context.Context, collection string) (domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.describe(collection)
}

func (s *Store) describe(collection string) (domain.Collection, error) {
	gen, ok := s.live[collection]
	if !ok {
		return domain.Collection{}, fmt.Errorf("%w: %s", domain.ErrCollectionNotFound, collection)
	}
	g := s.generations[gen]
	return domain.Collection{
		Name:       collection,
		ModelID:    g.modelID,
		Dimensions: g.dimensions,
		Generation: gen,
		Count:      len(g.entries),
		CreatedAt:  g.createdAt,
	}, nil
}

// Query scans the live generation under the read lock.
func (s *Store) Query(_ context.Context, collection string, vector []float32, k int) ([]domain.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, err := s.describe(collection)
	if err != nil {
		return nil, err
	}
	if len(vector) != info.Dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection expects %d",
			domain.ErrDimensionMismatch, len(vector), info.Dimensions)
	}

	entries := s.generations[info.Generation].entries
	hits := make([]domain.VectorHit, len(entries))
	for i, e := range entries {
		hits[i] = domain.VectorHit{Entry: e, Distance: vecmath.SquaredL2(vector, e.Embedding)}
	}
	return vecmath.Nearest(hits, k), nil
}

// Drop removes the collection and its generations.
func (s *Store) Drop(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.live, collection)
	for id, g := range s.generations {
		if g.collection == collection {
			delete(s.generations, id)
		}
	}
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
