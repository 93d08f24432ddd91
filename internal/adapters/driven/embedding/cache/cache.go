// Package cache memoises query embeddings in front of any EmbeddingService.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

var _ driven.EmbeddingService = (*Embedder)(nil)

// Embedder decorates an EmbeddingService with a cache. Cache failures are
// logged and bypassed; they never fail an embedding.
type Embedder struct {
	inner driven.EmbeddingService
	store driven.EmbeddingCache
	group singleflight.Group
}

// NewEmbedder wraps inner with store.
func NewEmbedder(inner driven.EmbeddingService, store driven.EmbeddingCache) *Embedder {
	return &Embedder{inner: inner, store: store}
}

// Key derives the cache key from the model id and text.
func Key(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return "faqrag:emb:" + model + ":" + hex.EncodeToString(sum[:])
}

// Embed returns a cached vector or computes and stores it.
// Concurrent misses for the same text share one upstream call.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := Key(e.inner.ModelName(), text)

	vec, ok, err := e.store.Get(ctx, key)
	if err != nil {
		logger.Warn("embedding cache get failed: %v", err)
	}
	if ok {
		return vec, nil
	}

	v, err, _ := e.group.Do(key, func() (any, error) {
		vec, err := e.inner.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		if err := e.store.Set(ctx, key, vec); err != nil {
			logger.Warn("embedding cache set failed: %v", err)
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

// EmbedBatch passes through. Bulk ingestion embeds every text once, so
// caching it would only fill the store.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return e.inner.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (e *Embedder) Dimensions() int {
	return e.inner.Dimensions()
}

// ModelName returns the wrapped service's model id.
func (e *Embedder) ModelName() string {
	return e.inner.ModelName()
}

// Ping checks the wrapped service.
func (e *Embedder) Ping(ctx context.Context) error {
	return e.inner.Ping(ctx)
}

// Close closes the cache and the wrapped service.
func (e *Embedder) Close() error {
	cacheErr := e.store.Close()
	if err := e.inner.Close(); err != nil {
		return err
	}
	if cacheErr != nil {
		return fmt.Errorf("close embedding cache: %w", cacheErr)
	}
	return nil
}
