// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/cache"
	geminiembed "github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/gemini"
	localembed "github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/local"
	ollamaembed "github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/faqrag/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/faqrag/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/faqrag/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/faqrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/faqrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateEmbeddingService creates the configured embedding service,
// wraps it in the query cache and checks connectivity.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.AppSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, &settings.Embedding)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w). Run 'faqrag settings' to fix",
			domain.ErrEmbeddingUnavailable, settings.Embedding.Provider, err)
	}

	return WithCache(ctx, svc, settings.Cache), nil
}

// CreateAndValidateLLMService creates the configured LLM service and checks
// connectivity. A missing provider, model or key is a configuration error.
func CreateAndValidateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w). Run 'faqrag settings' to fix",
			domain.ErrGenerationUnavailable, settings.Provider, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates a service from settings and pings it.
// Used by the settings command to check credentials before saving.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// ValidateLLMConfig creates a service from settings and pings it.
func ValidateLLMConfig(ctx context.Context, settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(ctx, settings)
	if err != nil {
		return err
	}
	defer svc.Close()

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return svc.Ping(pingCtx)
}

// CreateEmbeddingService creates the embedding service selected by settings.
func CreateEmbeddingService(ctx context.Context, settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: embedding settings missing", domain.ErrConfiguration)
	}
	if !settings.IsConfigured() {
		return nil, embeddingConfigError(settings)
	}

	switch settings.Provider {
	case domain.AIProviderLocal:
		return localembed.NewEmbeddingService(settings.Dimensions), nil

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		}), nil

	case domain.AIProviderOpenAI:
		return openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:     settings.APIKey,
			BaseURL:    settings.BaseURL,
			Model:      settings.Model,
			Dimensions: settings.Dimensions,
		})

	case domain.AIProviderGemini:
		return geminiembed.NewEmbeddingService(geminiembed.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported embedding provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

func embeddingConfigError(settings *domain.EmbeddingSettings) error {
	switch {
	case settings.Provider == domain.AIProviderAnthropic:
		return fmt.Errorf("%w: anthropic does not support embeddings, use local, ollama, openai or gemini",
			domain.ErrConfiguration)
	case !settings.Provider.IsValid():
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrConfiguration, settings.Provider)
	default:
		return fmt.Errorf("%w: %s embeddings need an API key (set embedding.api_key or %s)",
			domain.ErrConfiguration, settings.Provider, settings.Provider.APIKeyEnv())
	}
}

// CreateLLMService creates the LLM service selected by settings.
func CreateLLMService(ctx context.Context, settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: llm settings missing", domain.ErrConfiguration)
	}
	if !settings.IsConfigured() {
		return nil, llmConfigError(settings)
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return ollamallm.NewLLMService(ollamallm.LLMConfig{
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderOpenAI:
		return openaillm.NewLLMService(openaillm.LLMConfig{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderAnthropic:
		return anthropicllm.NewLLMService(anthropicllm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	case domain.AIProviderGemini:
		return geminillm.NewLLMService(geminillm.Config{
			APIKey:  settings.APIKey,
			BaseURL: settings.BaseURL,
			Model:   settings.Model,
			Timeout: settings.Timeout,
		})

	default:
		return nil, fmt.Errorf("%w: unsupported LLM provider: %s", domain.ErrConfiguration, settings.Provider)
	}
}

func llmConfigError(settings *domain.LLMSettings) error {
	switch {
	case settings.Provider == "":
		return fmt.Errorf("%w: no LLM provider configured (set llm.provider and llm.model)", domain.ErrConfiguration)
	case settings.Provider == domain.AIProviderLocal || !settings.Provider.IsValid():
		return fmt.Errorf("%w: %q cannot generate answers, use ollama, openai, anthropic or gemini",
			domain.ErrConfiguration, settings.Provider)
	case settings.Model == "":
		return fmt.Errorf("%w: no model configured for %s (set llm.model, e.g. %s)",
			domain.ErrConfiguration, settings.Provider, domain.DefaultLLMModels()[settings.Provider])
	default:
		return fmt.Errorf("%w: %s needs an API key (set llm.api_key or %s)",
			domain.ErrConfiguration, settings.Provider, settings.Provider.APIKeyEnv())
	}
}

// WithCache wraps svc with the configured query embedding cache. If Redis is
// unreachable the in-memory cache is used instead.
func WithCache(ctx context.Context, svc driven.EmbeddingService, settings domain.CacheSettings) driven.EmbeddingService {
	switch settings.Backend {
	case domain.CacheBackendRedis:
		store, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: settings.RedisAddr, TTL: settings.TTL})
		if err == nil {
			return cache.NewEmbedder(svc, store)
		}
		logger.Warn("redis embedding cache unavailable, using memory: %v", err)
		return cache.NewEmbedder(svc, cache.NewMemoryCache(settings.TTL, 0))
	case domain.CacheBackendMemory:
		return cache.NewEmbedder(svc, cache.NewMemoryCache(settings.TTL, 0))
	default:
		return svc
	}
}
