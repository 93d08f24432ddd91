package driving

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// Assistant answers questions over the indexed corpus.
// Neither method returns an error: failures become the fixed
// no-context message or the apology.
type Assistant interface {
	// Ask runs rewrite, retrieval, composition and buffered generation.
	Ask(ctx context.Context, req domain.AskRequest) domain.Answer

	// AskStream runs the same pipeline with streamed generation.
	// The returned Answer has an empty Text; the caller accumulates fragments.
	AskStream(ctx context.Context, req domain.AskRequest) (domain.Answer, <-chan string)
}

// Retriever returns context passages for a query.
type Retriever interface {
	// Retrieve never fails; an unavailable or missing index yields no passages.
	Retrieve(ctx context.Context, query string, k int, threshold float64) []domain.RetrievedPassage
}
