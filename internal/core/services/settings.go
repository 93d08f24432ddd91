package services

import (
	"context"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyEmbedDims       = "embedding.dimensions"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMMaxTokens    = "llm.max_tokens"
	keyLLMTemperature  = "llm.temperature"
	keyLLMTimeout      = "llm.timeout"
	keyVectorBackend   = "vector_store.backend"
	keyVectorPath      = "vector_store.path"
	keyVectorDSN       = "vector_store.dsn"
	keyVectorColl      = "vector_store.collection"
	keyTopK            = "retrieval.top_k"
	keyThreshold       = "retrieval.threshold"
	keyLanguage        = "retrieval.language"
	keyCorpusPath      = "corpus.path"
	keyChunkSize       = "corpus.chunk_size"
	keyChunkOverlap    = "corpus.chunk_overlap"
	keyMaxHistoryTurns = "chat.max_history_turns"
	keyFeedbackPath    = "feedback.path"
	keyCacheBackend    = "cache.backend"
	keyCacheRedisAddr  = "cache.redis_addr"
	keyCacheTTL        = "cache.ttl"
	keyServerAddr      = "server.addr"
	keyEmbedRPS        = "rate_limit.embed_rps"
)

// defaultOllamaURL is filled in for local providers without a base URL.
const defaultOllamaURL = "http://localhost:11434"

// SettingsService maps the flat config store onto domain.AppSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// aiValidator may be nil, which skips connectivity checks.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get reads current application settings. Keys absent from the store take
// their defaults; API keys absent from the store are read from the
// provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, d.Embedding.Provider),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.getInt(keyEmbedDims, d.Embedding.Dimensions),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, d.LLM.Provider),
			Model:       s.configStore.GetString(keyLLMModel),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL),
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			MaxTokens:   s.getInt(keyLLMMaxTokens, d.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, d.LLM.Temperature),
			Timeout:     s.getDuration(keyLLMTimeout, d.LLM.Timeout),
		},
		VectorStore: domain.VectorStoreSettings{
			Backend:    s.getBackend(d.VectorStore.Backend),
			Path:       s.configStore.GetString(keyVectorPath),
			DSN:        s.configStore.GetString(keyVectorDSN),
			Collection: s.getString(keyVectorColl, d.VectorStore.Collection),
		},
		Retrieval: domain.RetrievalSettings{
			TopK:      s.getInt(keyTopK, d.Retrieval.TopK),
			Threshold: s.getFloat(keyThreshold, d.Retrieval.Threshold),
			Language:  s.configStore.GetString(keyLanguage),
		},
		Corpus: domain.CorpusSettings{
			Path:         s.getString(keyCorpusPath, d.Corpus.Path),
			ChunkSize:    s.getInt(keyChunkSize, d.Corpus.ChunkSize),
			ChunkOverlap: s.getInt(keyChunkOverlap, d.Corpus.ChunkOverlap),
		},
		Chat: domain.ChatSettings{
			MaxHistoryTurns: s.getInt(keyMaxHistoryTurns, d.Chat.MaxHistoryTurns),
		},
		Cache: domain.CacheSettings{
			Backend:   s.getCacheBackend(d.Cache.Backend),
			RedisAddr: s.configStore.GetString(keyCacheRedisAddr),
			TTL:       s.getDuration(keyCacheTTL, d.Cache.TTL),
		},
		FeedbackPath: s.configStore.GetString(keyFeedbackPath),
		ServerAddr:   s.getString(keyServerAddr, d.ServerAddr),
		EmbedRPS:     s.getFloat(keyEmbedRPS, d.EmbedRPS),
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = s.envKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = s.envKey(settings.LLM.Provider)
	}

	return settings, nil
}

// Save persists application settings. API keys are only written when they
// did not come from the environment.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key string
		val any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyVectorBackend, string(settings.VectorStore.Backend)},
		{keyVectorPath, settings.VectorStore.Path},
		{keyVectorDSN, settings.VectorStore.DSN},
		{keyVectorColl, settings.VectorStore.Collection},
		{keyTopK, settings.Retrieval.TopK},
		{keyThreshold, settings.Retrieval.Threshold},
		{keyLanguage, settings.Retrieval.Language},
		{keyCorpusPath, settings.Corpus.Path},
		{keyChunkSize, settings.Corpus.ChunkSize},
		{keyChunkOverlap, settings.Corpus.ChunkOverlap},
		{keyMaxHistoryTurns, settings.Chat.MaxHistoryTurns},
		{keyFeedbackPath, settings.FeedbackPath},
		{keyCacheBackend, string(settings.Cache.Backend)},
		{keyCacheRedisAddr, settings.Cache.RedisAddr},
		{keyCacheTTL, settings.Cache.TTL.String()},
		{keyServerAddr, settings.ServerAddr},
		{keyEmbedRPS, settings.EmbedRPS},
	}

	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if k := settings.Embedding.APIKey; k != "" && k != s.envKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, k); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if k := settings.LLM.APIKey; k != "" && k != s.envKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, k); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return s.configStore.Save()
}

// SetEmbeddingProvider configures the embedding provider. An empty model
// selects the provider default.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("%w: provider %q does not support embeddings", domain.ErrInvalidInput, provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)",
			domain.ErrConfiguration, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = model
	if model == "" {
		settings.Embedding.Model = domain.DefaultEmbeddingModels()[provider]
	}
	settings.Embedding.BaseURL = localBaseURL(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider. The model is required: no
// default is applied on the caller's behalf.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("%w: provider %q does not support text generation", domain.ErrInvalidInput, provider)
	}
	if model == "" {
		return fmt.Errorf("%w: a model is required for %s (for example %q)",
			domain.ErrConfiguration, provider, domain.DefaultLLMModels()[provider])
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s (or set %s)",
			domain.ErrConfiguration, provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	settings.LLM.BaseURL = localBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the settings are complete enough to answer questions.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return ValidateSettings(settings)
}

// ValidateSettings reports the first configuration problem in settings.
func ValidateSettings(settings *domain.AppSettings) error {
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrConfiguration,
			settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		p := settings.LLM.Provider
		switch {
		case !slices.Contains(domain.AllLLMProviders(), p):
			return fmt.Errorf("%w: llm.provider must be one of ollama, openai, anthropic, gemini",
				domain.ErrConfiguration)
		case settings.LLM.Model == "":
			return fmt.Errorf("%w: llm.model is required (for example %q)",
				domain.ErrConfiguration, domain.DefaultLLMModels()[p])
		default:
			return fmt.Errorf("%w: API key required for %s (set llm.api_key or %s)",
				domain.ErrConfiguration, p, p.APIKeyEnv())
		}
	}
	if !settings.VectorStore.Backend.IsValid() {
		return fmt.Errorf("%w: unknown vector store backend %q", domain.ErrConfiguration, settings.VectorStore.Backend)
	}
	if settings.VectorStore.Backend == domain.VectorBackendPGVector && settings.VectorStore.DSN == "" {
		return fmt.Errorf("%w: vector_store.dsn is required for pgvector", domain.ErrConfiguration)
	}
	if settings.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive", domain.ErrConfiguration)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(ctx, &settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

func localBaseURL(provider domain.AIProvider, current string) string {
	switch {
	case provider == domain.AIProviderOllama && current == "":
		return defaultOllamaURL
	case provider == domain.AIProviderOllama:
		return current
	default:
		return ""
	}
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	if env := provider.APIKeyEnv(); env != "" {
		return s.getenv(env)
	}
	return ""
}

// Helper methods for reading config with defaults. A key that is present
// wins even when its value is zero, so threshold = 0 disables filtering.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getCacheBackend(defaultVal domain.CacheBackend) domain.CacheBackend {
	switch b := domain.CacheBackend(s.configStore.GetString(keyCacheBackend)); b {
	case domain.CacheBackendNone, domain.CacheBackendMemory, domain.CacheBackendRedis:
		return b
	default:
		return defaultVal
	}
}
