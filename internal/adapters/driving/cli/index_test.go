package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func TestIndexBuild(t *testing.T) {
	loader := &mockLoader{docs: []domain.Document{
		{Text: "flu answer", SourceID: "FAQ-1"},
		{Text: "cold answer", SourceID: "FAQ-2"},
	}}
	pipeline := &mockPipeline{}
	index := &mockIndex{modelID: "local-hash"}
	svc := &Services{Index: index, Loader: loader, Pipeline: pipeline}

	out, _, err := execute(t, svc, "", "index", "build", "--csv", "faqs.csv")

	require.NoError(t, err)
	assert.Equal(t, "faqs.csv", loader.path)
	assert.Equal(t, 1, pipeline.calls)
	require.Len(t, index.built, 2)
	assert.Equal(t, "FLU ANSWER", index.built[0].Text)
	assert.Contains(t, out, "Loaded 2 records from faqs.csv")
	assert.Contains(t, out, `Indexed 2 passages into "medical_faqs" with local-hash`)
}

func TestIndexBuild_DefaultsToCorpusPath(t *testing.T) {
	loader := &mockLoader{}
	settings := domain.DefaultAppSettings()
	settings.Corpus.Path = "data/custom.csv"
	svc := &Services{Settings: &settings, Index: &mockIndex{}, Loader: loader}

	_, _, err := execute(t, svc, "", "index", "build")

	require.NoError(t, err)
	assert.Equal(t, "data/custom.csv", loader.path)
}

func TestIndexBuild_Errors(t *testing.T) {
	t.Run("load", func(t *testing.T) {
		svc := &Services{Index: &mockIndex{}, Loader: &mockLoader{err: domain.ErrNotFound}}
		_, _, err := execute(t, svc, "", "index", "build")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("build", func(t *testing.T) {
		index := &mockIndex{buildErr: fmt.Errorf("%w: disk", domain.ErrIndexUnavailable)}
		svc := &Services{Index: index, Loader: &mockLoader{}}
		_, _, err := execute(t, svc, "", "index", "build")
		assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
	})

	t.Run("no loader", func(t *testing.T) {
		_, _, err := execute(t, &Services{Index: &mockIndex{}}, "", "index", "build")
		assert.Error(t, err)
	})

	t.Run("index error reported", func(t *testing.T) {
		svc := &Services{IndexErr: fmt.Errorf("%w: no api key", domain.ErrConfiguration)}
		_, _, err := execute(t, svc, "", "index", "build")
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}

func TestIndexRebuild(t *testing.T) {
	index := &mockIndex{}

	out, _, err := execute(t, &Services{Index: index}, "", "index", "rebuild")

	require.NoError(t, err)
	assert.True(t, index.rebuilt)
	assert.Contains(t, out, "empty")
}

func TestIndexStatus(t *testing.T) {
	index := &mockIndex{
		modelID: "nomic-embed-text",
		status: domain.Collection{
			Name:       "medical_faqs",
			ModelID:    "nomic-embed-text",
			Dimensions: 768,
			Count:      120,
			CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		},
	}

	out, _, err := execute(t, &Services{Index: index}, "", "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Collection: medical_faqs")
	assert.Contains(t, out, "Dimensions: 768")
	assert.Contains(t, out, "Passages:   120")
	assert.Contains(t, out, "Built:")
	assert.NotContains(t, out, "Warning")
}

func TestIndexStatus_ModelChanged(t *testing.T) {
	index := &mockIndex{
		modelID: "text-embedding-3-small",
		status:  domain.Collection{Name: "medical_faqs", ModelID: "nomic-embed-text", Count: 1},
	}

	out, _, err := execute(t, &Services{Index: index}, "", "index", "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: the active embedding model is text-embedding-3-small")
}

func TestIndexStatus_NotBuilt(t *testing.T) {
	t.Run("collection missing", func(t *testing.T) {
		index := &mockIndex{statusErr: fmt.Errorf("%w: medical_faqs", domain.ErrCollectionNotFound)}
		out, _, err := execute(t, &Services{Index: index}, "", "index", "status")
		require.NoError(t, err)
		assert.Contains(t, out, domain.IndexNotBuiltMessage)
	})

	t.Run("store absent", func(t *testing.T) {
		svc := &Services{Index: &mockIndex{}, IndexBuilt: func(context.Context) bool { return false }}
		out, _, err := execute(t, svc, "", "index", "status")
		require.NoError(t, err)
		assert.Contains(t, out, domain.IndexNotBuiltMessage)
	})

	t.Run("other error", func(t *testing.T) {
		index := &mockIndex{statusErr: errors.New("locked")}
		_, _, err := execute(t, &Services{Index: index}, "", "index", "status")
		assert.Error(t, err)
	})
}
