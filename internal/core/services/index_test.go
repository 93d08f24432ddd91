package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func newLocalIndex(t *testing.T) (*VectorIndex, *local.EmbeddingService) {
	t.Helper()
	emb := local.NewEmbeddingService(256)
	return NewVectorIndex(memory.NewStore(), emb, IndexConfig{Collection: "medical_faqs"}), emb
}

func TestVectorIndex_UpsertCreatesCollection(t *testing.T) {
	idx, emb := newLocalIndex(t)
	ctx := context.Background()

	_, err := idx.Status(ctx)
	require.ErrorIs(t, err, domain.ErrCollectionNotFound)

	docs := []domain.Document{
		{Text: "The flu is a contagious respiratory illness.", SourceID: "FAQ-1"},
		{Text: "   ", SourceID: "FAQ-2"},
		{Text: "Diabetes affects how your body turns food into energy.", SourceID: "FAQ-3"},
	}
	require.NoError(t, idx.Upsert(ctx, docs, emb.ModelName()))

	c, err := idx.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count, "empty texts are skipped")
	assert.Equal(t, emb.ModelName(), c.ModelID)
	assert.Equal(t, 256, c.Dimensions)

	require.NoError(t, idx.Upsert(ctx, docs[:1], emb.ModelName()))
	c, err = idx.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Count)
}

func TestVectorIndex_RoundTrip(t *testing.T) {
	idx, emb := newLocalIndex(t)
	ctx := context.Background()

	docs := []domain.Document{
		{Text: "The flu is a contagious respiratory illness.", SourceID: "FAQ-1"},
		{Text: "Diabetes affects how your body turns food into energy.", SourceID: "FAQ-2"},
		{Text: "High blood pressure often has no symptoms.", SourceID: "FAQ-3"},
	}
	require.NoError(t, idx.Upsert(ctx, docs, emb.ModelName()))

	for _, d := range docs {
		vec, err := emb.Embed(ctx, d.Text)
		require.NoError(t, err)

		hits, err := idx.Query(ctx, vec, 3)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, d.SourceID, hits[0].Entry.Document.SourceID)
		assert.InDelta(t, 0, hits[0].Distance, 1e-6)
	}
}

func TestVectorIndex_ModelMismatch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	first := newFakeEmbedder(2, nil)
	idx := NewVectorIndex(store, first, IndexConfig{})
	require.NoError(t, idx.Upsert(ctx, []domain.Document{{Text: "a", SourceID: "FAQ-1"}}, "fake-embed"))

	t.Run("upsert with another model id", func(t *testing.T) {
		err := idx.Upsert(ctx, []domain.Document{{Text: "b", SourceID: "FAQ-2"}}, "other-model")
		assert.ErrorIs(t, err, domain.ErrModelMismatch)
	})

	t.Run("collection tagged with another model", func(t *testing.T) {
		second := newFakeEmbedder(2, nil)
		second.model = "second-embed"
		other := NewVectorIndex(store, second, IndexConfig{})

		err := other.Upsert(ctx, []domain.Document{{Text: "b", SourceID: "FAQ-2"}}, "second-embed")
		assert.ErrorIs(t, err, domain.ErrModelMismatch)

		_, err = other.Query(ctx, []float32{0, 0}, 3)
		assert.ErrorIs(t, err, domain.ErrModelMismatch)
	})
}

func TestVectorIndex_QueryWithoutCollection(t *testing.T) {
	idx, _ := newLocalIndex(t)
	_, err := idx.Query(context.Background(), make([]float32, 256), 3)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestVectorIndex_Rebuild(t *testing.T) {
	idx, emb := newLocalIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.Rebuild(ctx), "rebuild of a missing collection is not an error")
	c, err := idx.Status(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())

	require.NoError(t, idx.Upsert(ctx, []domain.Document{{Text: "flu", SourceID: "FAQ-1"}}, emb.ModelName()))
	require.NoError(t, idx.Rebuild(ctx))
	require.NoError(t, idx.Rebuild(ctx))

	c, err = idx.Status(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestVectorIndex_BuildKeepsOldCollectionOnFailure(t *testing.T) {
	ctx := context.Background()
	emb := newFakeEmbedder(2, map[string][]float32{"a": {1, 0}, "b": {0, 1}})
	idx := NewVectorIndex(memory.NewStore(), emb, IndexConfig{})

	before, err := idx.Build(ctx, []domain.Document{{Text: "a", SourceID: "FAQ-1"}}, emb.ModelName())
	require.NoError(t, err)
	assert.Equal(t, 1, before.Count)

	emb.err = errors.New("provider down")
	_, err = idx.Build(ctx, []domain.Document{{Text: "b", SourceID: "FAQ-2"}}, emb.ModelName())
	require.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	after, err := idx.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Generation, after.Generation)
	assert.Equal(t, 1, after.Count)

	emb.err = nil
	rebuilt, err := idx.Build(ctx, []domain.Document{{Text: "a", SourceID: "FAQ-1"}, {Text: "b", SourceID: "FAQ-2"}},
		emb.ModelName())
	require.NoError(t, err)
	assert.NotEqual(t, before.Generation, rebuilt.Generation)
	assert.Equal(t, 2, rebuilt.Count)
}

func TestVectorIndex_BatchesPreserveOrder(t *testing.T) {
	ctx := context.Background()
	n := 2*EmbedBatchSize + 17
	vectors := make(map[string][]float32, n)
	docs := make([]domain.Document, n)
	for i := range n {
		text := fmt.Sprintf("document %d", i)
		vectors[text] = []float32{float32(i), 0}
		docs[i] = domain.Document{Text: text, SourceID: fmt.Sprintf("FAQ-%d", i+1)}
	}
	emb := newFakeEmbedder(2, vectors)
	idx := NewVectorIndex(memory.NewStore(), emb, IndexConfig{Concurrency: 3, EmbedRPS: 1000})

	c, err := idx.Build(ctx, docs, emb.ModelName())
	require.NoError(t, err)
	assert.Equal(t, n, c.Count)
	assert.Equal(t, 3, emb.batches)

	hits, err := idx.Query(ctx, []float32{float32(n - 1), 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, fmt.Sprintf("FAQ-%d", n), hits[0].Entry.Document.SourceID)
	assert.Equal(t, fmt.Sprintf("doc_%d", n-1), hits[0].Entry.ID)
}

func TestVectorIndex_Defaults(t *testing.T) {
	idx := NewVectorIndex(memory.NewStore(), newFakeEmbedder(2, nil), IndexConfig{})
	assert.Equal(t, domain.DefaultCollection, idx.Collection())
	assert.Equal(t, "fake-embed", idx.ModelID())
	assert.Nil(t, idx.limiter)
	assert.Equal(t, DefaultEmbedConcurrency, idx.concurrency)
}
