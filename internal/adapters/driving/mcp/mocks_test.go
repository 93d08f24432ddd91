package mcp

import (
	"context"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// mockAssistant is a mock implementation of driving.Assistant.
type mockAssistant struct {
	answer  domain.Answer
	lastReq domain.AskRequest
}

func (m *mockAssistant) Ask(_ context.Context, req domain.AskRequest) domain.Answer {
	m.lastReq = req
	return m.answer
}

func (m *mockAssistant) AskStream(_ context.Context, req domain.AskRequest) (domain.Answer, <-chan string) {
	m.lastReq = req
	ch := make(chan string, 1)
	ch <- m.answer.Text
	close(ch)
	return m.answer, ch
}

// mockRetriever is a mock implementation of driving.Retriever.
type mockRetriever struct {
	passages      []domain.RetrievedPassage
	lastK         int
	lastThreshold float64
}

func (m *mockRetriever) Retrieve(_ context.Context, _ string, k int, threshold float64) []domain.RetrievedPassage {
	m.lastK = k
	m.lastThreshold = threshold
	return m.passages
}

// mockIndex is a mock implementation of driving.IndexService.
type mockIndex struct {
	collection domain.Collection
	err        error
}

func (m *mockIndex) Upsert(_ context.Context, _ []domain.Document, _ string) error { return m.err }

func (m *mockIndex) Query(_ context.Context, _ []float32, _ int) ([]domain.VectorHit, error) {
	return nil, m.err
}

func (m *mockIndex) Rebuild(_ context.Context) error { return m.err }

func (m *mockIndex) Build(_ context.Context, _ []domain.Document, _ string) (domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockIndex) Status(_ context.Context) (domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockIndex) ModelID() string { return m.collection.ModelID }
