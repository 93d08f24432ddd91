package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

// --- Mock implementations ---

// fakeEmbedder maps known texts to fixed vectors. Unknown texts get the zero vector.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	model   string
	dims    int
	err     error
	batches int
}

func newFakeEmbedder(dims int, vectors map[string][]float32) *fakeEmbedder {
	return &fakeEmbedder{vectors: vectors, model: "fake-embed", dims: dims}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, f.dims), nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.batches++
	f.mu.Unlock()

	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int            { return f.dims }
func (f *fakeEmbedder) ModelName() string          { return f.model }
func (f *fakeEmbedder) Ping(context.Context) error { return nil }
func (f *fakeEmbedder) Close() error               { return nil }

// fakeLLM records prompts and answers through respond.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	respond func(prompt string) (string, error)

	chunks   []domain.StreamChunk
	startErr error
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.respond == nil {
		return "an answer", nil
	}
	return f.respond(prompt)
}

func (f *fakeLLM) GenerateStream(
	ctx context.Context, prompt string, _ driven.GenerateOptions,
) (<-chan domain.StreamChunk, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
	if f.startErr != nil {
		return nil, f.startErr
	}

	ch := make(chan domain.StreamChunk)
	go func() {
		defer close(ch)
		for _, c := range f.chunks {
			select {
			case ch <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (f *fakeLLM) ModelName() string          { return "fake-llm" }
func (f *fakeLLM) Ping(context.Context) error { return nil }
func (f *fakeLLM) Close() error               { return nil }

func (f *fakeLLM) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

// staticPrompts serves the built-in templates, with optional overrides.
type staticPrompts struct {
	overrides map[string]string
	fail      bool
}

func (p *staticPrompts) Load(name string) (string, error) {
	if p.fail {
		return "", errors.New("prompt store unavailable")
	}
	if t, ok := p.overrides[name]; ok {
		return t, nil
	}
	switch name {
	case driven.PromptQueryRewrite:
		return domain.DefaultQueryRewritePrompt, nil
	case driven.PromptAnswerGrounded:
		return domain.DefaultGroundedPrompt, nil
	case driven.PromptAnswerNoContext:
		return domain.DefaultNoContextPrompt, nil
	}
	return "", errors.New("unknown prompt " + name)
}

func (p *staticPrompts) Reload() {}

// fakeRetriever returns fixed passages and records the queries it saw.
type fakeRetriever struct {
	passages []domain.RetrievedPassage
	queries  []string
}

func (f *fakeRetriever) Retrieve(_ context.Context, query string, _ int, _ float64) []domain.RetrievedPassage {
	f.queries = append(f.queries, query)
	return f.passages
}

// memorySink collects feedback in memory.
type memorySink struct {
	records []domain.Feedback
	err     error
}

func (m *memorySink) Append(_ context.Context, fb domain.Feedback) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, fb)
	return nil
}

func (m *memorySink) Close() error { return nil }

// isRewritePrompt reports whether prompt was rendered from the rewrite template.
func isRewritePrompt(prompt string) bool {
	return strings.Contains(prompt, "Standalone question:")
}
