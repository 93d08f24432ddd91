package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/faqrag/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "OpenAI key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Gemini key",
			input:    "AIzaSyD-0123456789abcdefghijklmnopqrst",
			expected: "AIza...qrst",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	embeddingMenu := len(domain.AllEmbeddingProviders())
	llmMenu := len(domain.AllLLMProviders())

	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input keeps current provider",
			input:      "",
			maxVal:     embeddingMenu,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Last embedding provider",
			input:      "4",
			maxVal:     embeddingMenu,
			defaultVal: 1,
			expected:   4,
		},
		{
			name:       "Beyond embedding menu returns default",
			input:      "5",
			maxVal:     embeddingMenu,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Zero returns default",
			input:      "0",
			maxVal:     llmMenu,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Surrounding whitespace is ignored",
			input:      " 3 ",
			maxVal:     llmMenu,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Provider name is not a choice",
			input:      "gemini",
			maxVal:     llmMenu,
			defaultVal: 2,
			expected:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow_RetrievalAndEmbedding(t *testing.T) {
	tests := []struct {
		name     string
		modify   func(s *domain.AppSettings)
		contains []string
		absent   []string
	}{
		{
			name: "embedding dimensions shown when set",
			modify: func(s *domain.AppSettings) {
				s.Embedding.Dimensions = 256
			},
			contains: []string{"Dimensions: 256"},
		},
		{
			name:   "embedding dimensions hidden at model default",
			modify: func(s *domain.AppSettings) { s.Embedding.Dimensions = 0 },
			absent: []string{"Dimensions:"},
		},
		{
			name:     "custom threshold",
			modify:   func(s *domain.AppSettings) { s.Retrieval.Threshold = 1.25 },
			contains: []string{"Threshold: 1.250"},
		},
		{
			name:     "negative threshold disables filtering",
			modify:   func(s *domain.AppSettings) { s.Retrieval.Threshold = -1 },
			contains: []string{"Threshold: disabled"},
		},
		{
			name:     "forced language",
			modify:   func(s *domain.AppSettings) { s.Retrieval.Language = "Spanish" },
			contains: []string{"Language: Spanish"},
			absent:   []string{"Language: auto"},
		},
		{
			name: "chunking and redis cache",
			modify: func(s *domain.AppSettings) {
				s.Corpus.ChunkSize = 400
				s.Corpus.ChunkOverlap = 40
				s.Cache.Backend = domain.CacheBackendRedis
				s.Cache.RedisAddr = "localhost:6379"
			},
			contains: []string{"Chunking: 400 chars, 40 overlap", "Redis: localhost:6379"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := domain.DefaultAppSettings()
			tt.modify(&settings)
			svc := &mockSettingsService{settings: settings}

			out, _, err := execute(t, &Services{SettingsService: svc}, "", "settings", "show")

			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}
