// Package vectorstore selects a VectorStore implementation from settings.
package vectorstore

import (
	"context"
	"fmt"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/memory"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/pgvector"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore/sqlite"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

// Open returns the store named by settings.Backend. An empty backend means sqlite.
func Open(ctx context.Context, settings domain.VectorStoreSettings) (driven.VectorStore, error) {
	switch settings.Backend {
	case domain.VectorBackendSQLite, "":
		return sqlite.NewStore(settings.Path)
	case domain.VectorBackendPGVector:
		return pgvector.Open(ctx, settings.DSN)
	case domain.VectorBackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown vector store backend %q (use sqlite, pgvector or memory)",
			domain.ErrConfiguration, settings.Backend)
	}
}

// Built reports whether the configured store could hold an index without
// opening it. Only the sqlite backend can answer this cheaply; the others
// always report true and leave the check to Collection.
func Built(settings domain.VectorStoreSettings) bool {
	if settings.Backend == domain.VectorBackendSQLite || settings.Backend == "" {
		return sqlite.Exists(settings.Path)
	}
	return true
}
