package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		dir := t.TempDir()
		assert.False(t, Built(domain.VectorStoreSettings{Path: dir}))

		s, err := Open(ctx, domain.VectorStoreSettings{Backend: domain.VectorBackendSQLite, Path: dir})
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlite.Store{}, s)
		assert.True(t, Built(domain.VectorStoreSettings{Path: dir}))
	})

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, domain.VectorStoreSettings{Backend: domain.VectorBackendMemory})
		require.NoError(t, err)
		assert.IsType(t, &memory.Store{}, s)
		assert.True(t, Built(domain.VectorStoreSettings{Backend: domain.VectorBackendMemory}))
	})

	t.Run("pgvector without dsn", func(t *testing.T) {
		_, err := Open(ctx, domain.VectorStoreSettings{Backend: domain.VectorBackendPGVector})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, domain.VectorStoreSettings{Backend: "faiss"})
		assert.ErrorIs(t, err, domain.ErrConfiguration)
	})
}
