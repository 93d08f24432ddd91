package googleai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/httpretry"
	"github.com/custodia-labs/faqrag/internal/core/domain"
)

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestModelPath(t *testing.T) {
	assert.Equal(t, "models/gemini-2.0-flash", ModelPath("gemini-2.0-flash"))
	assert.Equal(t, "models/text-embedding-004", ModelPath("models/text-embedding-004"))
}

func TestCall_SendsKeyAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		assert.Empty(t, r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"a"},{"text":"b"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "secret", BaseURL: srv.URL + "/v1beta/"})
	require.NoError(t, err)

	var out GenerateContentResponse
	require.NoError(t, c.Call(context.Background(), http.MethodGet, ModelPath("gemini-2.0-flash"), nil, &out))
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "ab", out.Candidates[0].Content.Text())
}

func TestCall_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	c, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	err = c.Call(context.Background(), http.MethodPost, "models/m:generateContent", struct{}{}, nil)
	var se *httpretry.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, "quota exceeded", se.Body)
	assert.True(t, httpretry.Retryable(err))
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil))

	plain := errors.New("dial tcp: refused")
	assert.Equal(t, plain, WrapError(plain))

	err := WrapError(&googleapi.Error{Code: http.StatusForbidden, Body: "denied"})
	var se *httpretry.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "denied", se.Body)
	assert.False(t, httpretry.Retryable(err))
}

func TestGenerateContentResponse_Blocked(t *testing.T) {
	r := GenerateContentResponse{PromptFeedback: &PromptFeedback{BlockReason: "SAFETY"}}
	assert.Equal(t, "SAFETY", r.Blocked())

	r = GenerateContentResponse{Candidates: []Candidate{{FinishReason: "RECITATION"}}}
	assert.Equal(t, "RECITATION", r.Blocked())

	r = GenerateContentResponse{Candidates: []Candidate{{FinishReason: "STOP"}}}
	assert.Empty(t, r.Blocked())
}
