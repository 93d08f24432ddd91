package httpapi

import (
	"context"
	"time"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

type mockAssistant struct {
	answer    domain.Answer
	fragments []string
	lastReq   domain.AskRequest
}

func (m *mockAssistant) Ask(_ context.Context, req domain.AskRequest) domain.Answer {
	m.lastReq = req
	return m.answer
}

func (m *mockAssistant) AskStream(_ context.Context, req domain.AskRequest) (domain.Answer, <-chan string) {
	m.lastReq = req
	ch := make(chan string, len(m.fragments))
	for _, f := range m.fragments {
		ch <- f
	}
	close(ch)
	streamed := m.answer
	streamed.Text = ""
	return streamed, ch
}

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

type mockFeedback struct {
	recorded []domain.Feedback
	err      error
}

func (m *mockFeedback) Record(_ context.Context, question, answer string, rating domain.Rating) (domain.Feedback, error) {
	if m.err != nil {
		return domain.Feedback{}, m.err
	}
	fb := domain.Feedback{
		ID:        "fb-1",
		Timestamp: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Question:  question,
		Answer:    answer,
		Rating:    rating,
	}
	m.recorded = append(m.recorded, fb)
	return fb, nil
}
