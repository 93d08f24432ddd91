package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/local"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// failingQuerier returns err from every query.
type failingQuerier struct{ err error }

func (f failingQuerier) Query(context.Context, []float32, int) ([]domain.VectorHit, error) {
	return nil, f.err
}

// lineFixture indexes five passages on the x axis at distances 1, 4, 9, 16
// and 25 (squared) from the query "q".
func lineFixture(t *testing.T) *Retriever {
	t.Helper()
	vectors := map[string][]float32{"q": {0, 0}}
	var docs []domain.Document
	for i, x := range []float32{1, 2, 3, 4, 5} {
		text := string(rune('a' + i))
		vectors[text] = []float32{x, 0}
		docs = append(docs, domain.Document{Text: text, SourceID: "FAQ-" + string(rune('1'+i))})
	}

	emb := newFakeEmbedder(2, vectors)
	idx := NewVectorIndex(memory.NewStore(), emb, IndexConfig{})
	_, err := idx.Build(context.Background(), docs, emb.ModelName())
	require.NoError(t, err)
	return NewRetriever(idx, emb)
}

func sourceIDs(passages []domain.RetrievedPassage) []string {
	ids := make([]string, len(passages))
	for i, p := range passages {
		ids[i] = p.SourceID
	}
	return ids
}

func TestRetriever_ThresholdDisabled(t *testing.T) {
	r := lineFixture(t)
	ctx := context.Background()

	for _, threshold := range []float64{0, -1} {
		got := r.Retrieve(ctx, "q", 3, threshold)
		assert.Equal(t, []string{"FAQ-1", "FAQ-2", "FAQ-3"}, sourceIDs(got))
		assert.InDelta(t, 1, got[0].Distance, 1e-9)
		assert.InDelta(t, 9, got[2].Distance, 1e-9)
	}

	assert.Len(t, r.Retrieve(ctx, "q", 10, 0), 5, "k above the corpus size returns everything")
}

func TestRetriever_ThresholdFilters(t *testing.T) {
	r := lineFixture(t)
	got := r.Retrieve(context.Background(), "q", 5, 9)
	assert.Equal(t, []string{"FAQ-1", "FAQ-2", "FAQ-3"}, sourceIDs(got), "distance equal to the threshold is kept")

	assert.Empty(t, r.Retrieve(context.Background(), "q", 5, 0.5))
}

func TestRetriever_ThresholdMonotonic(t *testing.T) {
	r := lineFixture(t)
	ctx := context.Background()
	thresholds := []float64{0.5, 1, 3, 4, 10, 16, 24, 100}

	for i := 1; i < len(thresholds); i++ {
		smaller := sourceIDs(r.Retrieve(ctx, "q", 5, thresholds[i-1]))
		larger := sourceIDs(r.Retrieve(ctx, "q", 5, thresholds[i]))
		assert.Subset(t, larger, smaller, "t1=%g t2=%g", thresholds[i-1], thresholds[i])
	}
}

func TestRetriever_FailsSoft(t *testing.T) {
	emb := newFakeEmbedder(2, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		r    *Retriever
	}{
		{"missing collection", NewRetriever(failingQuerier{domain.ErrCollectionNotFound}, emb)},
		{"index unavailable", NewRetriever(failingQuerier{domain.ErrIndexUnavailable}, emb)},
		{"model mismatch", NewRetriever(failingQuerier{domain.ErrModelMismatch}, emb)},
		{"unexpected error", NewRetriever(failingQuerier{errors.New("boom")}, emb)},
		{"embedding error", NewRetriever(failingQuerier{}, &fakeEmbedder{err: errors.New("down")})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Retrieve(ctx, "What is the flu?", 3, 0)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestRetriever_NonPositiveK(t *testing.T) {
	r := lineFixture(t)
	assert.Empty(t, r.Retrieve(context.Background(), "q", 0, 0))
	assert.Empty(t, r.Retrieve(context.Background(), "q", -2, 0))
}

func TestRetriever_FluScenario(t *testing.T) {
	ctx := context.Background()
	emb := local.NewEmbeddingService(0)
	idx := NewVectorIndex(memory.NewStore(), emb, IndexConfig{})
	docs := []domain.Document{{Text: "The flu is a contagious respiratory illness.", SourceID: "FAQ-1"}}
	require.NoError(t, idx.Upsert(ctx, docs, emb.ModelName()))

	passages := NewRetriever(idx, emb).Retrieve(ctx, "What is the flu?", 3, 0)
	require.Len(t, passages, 1)
	assert.Equal(t, "FAQ-1", passages[0].SourceID)

	prompt := NewComposer(&staticPrompts{}).Compose("What is the flu?", passages, nil, "English")
	assert.Contains(t, prompt, "Source: [FAQ-1]")
}

func TestRetriever_EmptyCorpus(t *testing.T) {
	ctx := context.Background()
	emb := local.NewEmbeddingService(0)
	idx := NewVectorIndex(memory.NewStore(), emb, IndexConfig{})
	_, err := idx.Build(ctx, nil, emb.ModelName())
	require.NoError(t, err)

	assert.Empty(t, NewRetriever(idx, emb).Retrieve(ctx, "anything", 3, 0))
}
