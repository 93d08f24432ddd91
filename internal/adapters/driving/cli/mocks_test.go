package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

type mockAssistant struct {
	mu       sync.Mutex
	requests []domain.AskRequest
	answer   func(req domain.AskRequest) domain.Answer
}

func (m *mockAssistant) respond(req domain.AskRequest) domain.Answer {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.answer != nil {
		return m.answer(req)
	}
	return domain.Answer{
		Question:        req.Question,
		StandaloneQuery: req.Question,
		Text:            "Rest and fluids [FAQ-1].",
		Language:        "en",
		Passages:        []domain.RetrievedPassage{{Text: "Flu passage", SourceID: "FAQ-1", Distance: 0.1}},
	}
}

func (m *mockAssistant) Ask(_ context.Context, req domain.AskRequest) domain.Answer {
	return m.respond(req)
}

func (m *mockAssistant) AskStream(_ context.Context, req domain.AskRequest) (domain.Answer, <-chan string) {
	answer := m.respond(req)
	ch := make(chan string, 2)
	half := len(answer.Text) / 2
	ch <- answer.Text[:half]
	ch <- answer.Text[half:]
	close(ch)
	answer.Text = ""
	return answer, ch
}

func (m *mockAssistant) Requests() []domain.AskRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.AskRequest(nil), m.requests...)
}

type mockIndex struct {
	modelID    string
	built      []domain.Document
	buildErr   error
	rebuilt    bool
	status     domain.Collection
	statusErr  error
	rebuildErr error
}

func (m *mockIndex) Upsert(context.Context, []domain.Document, string) error { return nil }

func (m *mockIndex) Query(context.Context, []float32, int) ([]domain.VectorHit, error) {
	return nil, nil
}

func (m *mockIndex) Rebuild(context.Context) error {
	m.rebuilt = true
	return m.rebuildErr
}

func (m *mockIndex) Build(_ context.Context, docs []domain.Document, modelID string) (domain.Collection, error) {
	if m.buildErr != nil {
		return domain.Collection{}, m.buildErr
	}
	m.built = docs
	return domain.Collection{
		Name:       domain.DefaultCollection,
		ModelID:    modelID,
		Dimensions: 4,
		Count:      len(docs),
	}, nil
}

func (m *mockIndex) Status(context.Context) (domain.Collection, error) {
	return m.status, m.statusErr
}

func (m *mockIndex) ModelID() string { return m.modelID }

type mockFeedback struct {
	records []domain.Feedback
	err     error
}

func (m *mockFeedback) Record(_ context.Context, q, a string, r domain.Rating) (domain.Feedback, error) {
	if m.err != nil {
		return domain.Feedback{}, m.err
	}
	fb := domain.Feedback{Question: q, Answer: a, Rating: r}
	m.records = append(m.records, fb)
	return fb, nil
}

type mockLoader struct {
	path string
	docs []domain.Document
	err  error
}

func (m *mockLoader) Load(_ context.Context, path string) ([]domain.Document, error) {
	m.path = path
	return m.docs, m.err
}

type mockPipeline struct {
	calls int
}

func (m *mockPipeline) Process(_ context.Context, docs []domain.Document) ([]domain.Document, error) {
	m.calls++
	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		d.Text = strings.ToUpper(d.Text)
		out[i] = d
	}
	return out, nil
}

type mockSettingsService struct {
	settings     domain.AppSettings
	validateErr  error
	embeddingSet []string
	llmSet       []string
	validated    []string
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	m.settings = *s
	return nil
}

func (m *mockSettingsService) SetEmbeddingProvider(p domain.AIProvider, model, key string) error {
	m.embeddingSet = []string{string(p), model, key}
	return nil
}

func (m *mockSettingsService) SetLLMProvider(p domain.AIProvider, model, key string) error {
	m.llmSet = []string{string(p), model, key}
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateEmbeddingConfig(context.Context) error {
	m.validated = append(m.validated, "embedding")
	return nil
}

func (m *mockSettingsService) ValidateLLMConfig(context.Context) error {
	m.validated = append(m.validated, "llm")
	return nil
}

// execute runs the root command with injected services and returns
// stdout and stderr.
func execute(t *testing.T, svc *Services, stdin string, args ...string) (string, string, error) {
	t.Helper()

	askJSON, askNoStream, askLanguage = false, false, ""
	chatLanguage, indexCSV, serveAddr = "", "", ""

	SetServices(svc)
	t.Cleanup(func() {
		SetServices(nil)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
