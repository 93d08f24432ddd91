package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func entry(id string, vec ...float32) domain.IndexedEntry {
	return domain.IndexedEntry{Embedding: vec, Document: domain.Document{Text: id + " text", SourceID: id}}
}

func publish(t *testing.T, s *Store, collection string, entries ...domain.IndexedEntry) string {
	t.Helper()
	ctx := context.Background()
	gen, err := s.Stage(ctx, collection, "test-model", 2)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, gen, entries))
	require.NoError(t, s.Publish(ctx, collection, gen))
	return gen
}

func TestStore_QueryOrderAndTies(t *testing.T) {
	s := NewStore()
	publish(t, s, "faqs",
		entry("FAQ-1", 3, 0),
		entry("FAQ-2", 1, 0),
		entry("FAQ-3", 0, 1),
		entry("FAQ-4", 1, 0),
	)

	hits, err := s.Query(context.Background(), "faqs", []float32{0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	var ids []string
	for _, h := range hits {
		ids = append(ids, h.Entry.Document.SourceID)
	}
	assert.Equal(t, []string{"FAQ-2", "FAQ-3", "FAQ-4", "FAQ-1"}, ids)
	assert.InDelta(t, 9.0, hits[3].Distance, 1e-9)
	assert.Equal(t, "doc_0", hits[3].Entry.ID)
}

func TestStore_QueryLimits(t *testing.T) {
	s := NewStore()
	publish(t, s, "faqs", entry("FAQ-1", 1, 0), entry("FAQ-2", 0, 1))

	hits, err := s.Query(context.Background(), "faqs", []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = s.Query(context.Background(), "faqs", []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestStore_MissingCollection(t *testing.T) {
	s := NewStore()
	_, err := s.Query(context.Background(), "faqs", []float32{1, 0}, 3)
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)

	_, err = s.Collection(context.Background(), "faqs")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestStore_DimensionMismatch(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	gen := publish(t, s, "faqs", entry("FAQ-1", 1, 0))

	err := s.Insert(ctx, gen, []domain.IndexedEntry{entry("FAQ-2", 1, 0), entry("FAQ-3", 1)})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	c, err := s.Collection(ctx, "faqs")
	require.NoError(t, err)
	assert.Equal(t, 1, c.Count, "failed batch must not be partially applied")

	_, err = s.Query(ctx, "faqs", []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStore_PublishSwapsGenerations(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	old := publish(t, s, "faqs", entry("FAQ-1", 1, 0))

	gen, err := s.Stage(ctx, "faqs", "other-model", 2)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, gen, []domain.IndexedEntry{entry("FAQ-9", 0, 1), entry("FAQ-10", 1, 1)}))

	c, err := s.Collection(ctx, "faqs")
	require.NoError(t, err)
	assert.Equal(t, old, c.Generation, "staged generation must stay invisible")

	require.NoError(t, s.Publish(ctx, "faqs", gen))
	c, err = s.Collection(ctx, "faqs")
	require.NoError(t, err)
	assert.Equal(t, gen, c.Generation)
	assert.Equal(t, "other-model", c.ModelID)
	assert.Equal(t, 2, c.Count)

	err = s.Insert(ctx, old, []domain.IndexedEntry{entry("FAQ-1", 1, 0)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_PublishWrongCollection(t *testing.T) {
	s := NewStore()
	gen, err := s.Stage(context.Background(), "a", "m", 2)
	require.NoError(t, err)
	err = s.Publish(context.Background(), "b", gen)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_DiscardKeepsLive(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	live := publish(t, s, "faqs", entry("FAQ-1", 1, 0))

	require.NoError(t, s.Discard(ctx, live))
	_, err := s.Collection(ctx, "faqs")
	require.NoError(t, err)

	staged, err := s.Stage(ctx, "faqs", "m", 2)
	require.NoError(t, err)
	require.NoError(t, s.Discard(ctx, staged))
	assert.ErrorIs(t, s.Insert(ctx, staged, []domain.IndexedEntry{entry("x", 1, 1)}), domain.ErrNotFound)
}

func TestStore_Drop(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	publish(t, s, "faqs", entry("FAQ-1", 1, 0))

	require.NoError(t, s.Drop(ctx, "faqs"))
	require.NoError(t, s.Drop(ctx, "faqs"))
	_, err := s.Collection(ctx, "faqs")
	assert.ErrorIs(t, err, domain.ErrCollectionNotFound)
}

func TestStore_ConcurrentReadersDuringPublish(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	publish(t, s, "faqs", entry("FAQ-1", 1, 0), entry("FAQ-2", 0, 1))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 50 {
			gen, err := s.Stage(ctx, "faqs", "test-model", 2)
			assert.NoError(t, err)
			assert.NoError(t, s.Insert(ctx, gen, []domain.IndexedEntry{
				entry(fmt.Sprintf("A-%d", i), 1, 0),
				entry(fmt.Sprintf("B-%d", i), 0, 1),
			}))
			assert.NoError(t, s.Publish(ctx, "faqs", gen))
		}
	}()

	for range 200 {
		hits, err := s.Query(ctx, "faqs", []float32{1, 0}, 5)
		require.NoError(t, err)
		assert.Len(t, hits, 2)
	}
	<-done
}
