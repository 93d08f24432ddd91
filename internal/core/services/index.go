package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driving.IndexService = (*VectorIndex)(nil)

// Embedding tuning.
const (
	// EmbedBatchSize is the number of texts sent per EmbedBatch call.
	EmbedBatchSize = 100

	// DefaultEmbedConcurrency bounds the batches in flight during ingestion.
	DefaultEmbedConcurrency = 4
)

// IndexConfig configures a VectorIndex.
type IndexConfig struct {
	// Collection is the logical collection name.
	Collection string

	// EmbedRPS throttles EmbedBatch calls. Zero or less is unlimited.
	EmbedRPS float64

	// Concurrency bounds the batches embedded in parallel.
	Concurrency int
}

// VectorIndex maintains one named collection of embedded passages.
// Writes are serialised; queries go straight to the store, which isolates
// them from concurrent publishes.
type VectorIndex struct {
	store       driven.VectorStore
	embedder    driven.EmbeddingService
	collection  string
	concurrency int
	limiter     *rate.Limiter

	writeMu sync.Mutex
}

// NewVectorIndex creates an index over store using embedder for ingestion.
func NewVectorIndex(store driven.VectorStore, embedder driven.EmbeddingService, cfg IndexConfig) *VectorIndex {
	if cfg.Collection == "" {
		cfg.Collection = domain.DefaultCollection
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultEmbedConcurrency
	}

	idx := &VectorIndex{
		store:       store,
		embedder:    embedder,
		collection:  cfg.Collection,
		concurrency: cfg.Concurrency,
	}
	if cfg.EmbedRPS > 0 {
		idx.limiter = rate.NewLimiter(rate.Limit(cfg.EmbedRPS), 1)
	}
	return idx
}

// Collection returns the collection name.
func (v *VectorIndex) Collection() string {
	return v.collection
}

// ModelID is the identifier of the active embedding model.
func (v *VectorIndex) ModelID() string {
	return v.embedder.ModelName()
}

// Status describes the live collection.
func (v *VectorIndex) Status(ctx context.Context) (domain.Collection, error) {
	return v.store.Collection(ctx, v.collection)
}

// Upsert embeds docs and appends them to the live collection in one
// store transaction, creating the collection if it does not exist.
// Documents with empty text are skipped.
func (v *VectorIndex) Upsert(ctx context.Context, docs []domain.Document, modelID string) error {
	if err := v.checkModel(modelID); err != nil {
		return err
	}

	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	info, err := v.store.Collection(ctx, v.collection)
	switch {
	case errors.Is(err, domain.ErrCollectionNotFound):
		logger.Debug("Collection %q not found, creating it", v.collection)
		_, err = v.build(ctx, docs, modelID)
		return err
	case err != nil:
		return err
	case info.ModelID != modelID:
		return fmt.Errorf("%w: collection %q was built with %q, got %q",
			domain.ErrModelMismatch, v.collection, info.ModelID, modelID)
	}

	entries, err := v.embed(ctx, docs)
	if err != nil {
		return err
	}
	if err := v.store.Insert(ctx, info.Generation, entries); err != nil {
		return err
	}
	logger.Info("Upserted %d entries into %q", len(entries), v.collection)
	return nil
}

// Query returns the k entries nearest to vector, nearest first.
func (v *VectorIndex) Query(ctx context.Context, vector []float32, k int) ([]domain.VectorHit, error) {
	info, err := v.store.Collection(ctx, v.collection)
	if err != nil {
		return nil, err
	}
	if info.ModelID != v.ModelID() {
		return nil, fmt.Errorf("%w: collection %q was built with %q, active model is %q",
			domain.ErrModelMismatch, v.collection, info.ModelID, v.ModelID())
	}
	return v.store.Query(ctx, v.collection, vector, k)
}

// Rebuild replaces the collection with an empty one. It is safe to call when
// the collection does not exist.
func (v *VectorIndex) Rebuild(ctx context.Context) error {
	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	_, err := v.swap(ctx, nil, v.ModelID(), v.embedder.Dimensions())
	return err
}

// Build embeds docs into a fresh generation and publishes it in place of the
// current collection. The previous collection keeps serving queries until
// the swap; on failure it is left untouched.
func (v *VectorIndex) Build(ctx context.Context, docs []domain.Document, modelID string) (domain.Collection, error) {
	if err := v.checkModel(modelID); err != nil {
		return domain.Collection{}, err
	}

	v.writeMu.Lock()
	defer v.writeMu.Unlock()
	return v.build(ctx, docs, modelID)
}

func (v *VectorIndex) build(ctx context.Context, docs []domain.Document, modelID string) (domain.Collection, error) {
	logger.Section("Index Build")
	entries, err := v.embed(ctx, docs)
	if err != nil {
		return domain.Collection{}, err
	}

	dims := v.embedder.Dimensions()
	if len(entries) > 0 {
		dims = len(entries[0].Embedding)
	}
	return v.swap(ctx, entries, modelID, dims)
}

// swap stages a generation holding entries and publishes it.
func (v *VectorIndex) swap(
	ctx context.Context, entries []domain.IndexedEntry, modelID string, dims int,
) (domain.Collection, error) {
	gen, err := v.store.Stage(ctx, v.collection, modelID, dims)
	if err != nil {
		return domain.Collection{}, err
	}
	logger.Debug("Staged generation %s (%d dims)", gen, dims)

	if err := v.store.Insert(ctx, gen, entries); err != nil {
		v.discard(ctx, gen)
		return domain.Collection{}, err
	}
	if err := v.store.Publish(ctx, v.collection, gen); err != nil {
		v.discard(ctx, gen)
		return domain.Collection{}, err
	}
	logger.Info("Published generation %s with %d entries", gen, len(entries))

	return v.store.Collection(ctx, v.collection)
}

func (v *VectorIndex) discard(ctx context.Context, gen string) {
	if err := v.store.Discard(context.WithoutCancel(ctx), gen); err != nil {
		logger.Warn("Discarding generation %s: %v", gen, err)
	}
}

func (v *VectorIndex) checkModel(modelID string) error {
	if modelID != v.ModelID() {
		return fmt.Errorf("%w: documents embedded with %q, active model is %q",
			domain.ErrModelMismatch, modelID, v.ModelID())
	}
	return nil
}

// embed produces entries for the non-empty docs in input order. Batches run
// concurrently up to the configured limit.
func (v *VectorIndex) embed(ctx context.Context, docs []domain.Document) ([]domain.IndexedEntry, error) {
	kept := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if strings.TrimSpace(d.Text) == "" {
			logger.Debug("Skipping %s: empty text", d.SourceID)
			continue
		}
		kept = append(kept, d)
	}

	entries := make([]domain.IndexedEntry, len(kept))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)

	for start := 0; start < len(kept); start += EmbedBatchSize {
		end := min(start+EmbedBatchSize, len(kept))
		g.Go(func() error {
			if v.limiter != nil {
				if err := v.limiter.Wait(gctx); err != nil {
					return err
				}
			}

			texts := make([]string, end-start)
			for i, d := range kept[start:end] {
				texts[i] = d.Text
			}
			vecs, err := v.embedder.EmbedBatch(gctx, texts)
			if err != nil {
				return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
			}
			if len(vecs) != len(texts) {
				return fmt.Errorf("%w: got %d embeddings for %d texts",
					domain.ErrEmbeddingUnavailable, len(vecs), len(texts))
			}

			for i, vec := range vecs {
				entries[start+i] = domain.IndexedEntry{Embedding: vec, Document: kept[start+i]}
			}
			logger.Debug("Embedded documents %d-%d", start+1, end)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
