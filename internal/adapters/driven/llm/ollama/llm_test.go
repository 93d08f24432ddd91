package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/llm/stream"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewLLMService(LLMConfig{BaseURL: srv.URL, Model: "llama3.2", Attempts: 1})
	require.NoError(t, err)
	return svc
}

func TestNewLLMService_RequiresModel(t *testing.T) {
	_, err := NewLLMService(LLMConfig{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestGenerate(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)
		require.NotNil(t, req.Options)
		assert.InDelta(t, 0.2, req.Options.Temperature, 1e-9)

		_, _ = w.Write([]byte(`{"response":"Wash your hands.","done":true}`))
	})

	out, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{Temperature: 0.2})
	require.NoError(t, err)
	assert.Equal(t, "Wash your hands.", out)
}

func TestGenerate_ModelMissing(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3.2' not found"}`))
	})

	_, err := svc.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.ErrorContains(t, err, "not found")
}

func TestGenerateStream(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		for _, part := range []string{"Get ", "vaccinated."} {
			fmt.Fprintf(w, "{\"response\":%q,\"done\":false}\n", part)
		}
		fmt.Fprint(w, "{\"response\":\"\",\"done\":true}\n")
	})

	ch, err := svc.GenerateStream(context.Background(), "q", driven.GenerateOptions{})
	require.NoError(t, err)

	var sb strings.Builder
	for c := range ch {
		require.NoError(t, c.Err)
		sb.WriteString(c.Content)
	}
	assert.Equal(t, "Get vaccinated.", sb.String())
}

func TestGenerateStream_Truncated(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "{\"response\":\"Get \",\"done\":false}\n")
	})

	ch, err := svc.GenerateStream(context.Background(), "q", driven.GenerateOptions{})
	require.NoError(t, err)

	var streamErr error
	for c := range ch {
		if c.Err != nil {
			streamErr = c.Err
		}
	}
	assert.ErrorIs(t, streamErr, stream.ErrTruncated)
}
