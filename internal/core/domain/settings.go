package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderLocal is the built-in offline hashing embedder. Embeddings only.
	AIProviderLocal AIProvider = "local"

	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. LLM only.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is the Google Generative Language API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderLocal, AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderLocal
}

// APIKeyEnv returns the environment variable consulted when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderLocal:
		return "Local hashing embedder (offline)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// Dimensions sizes the local embedder, or truncates OpenAI
	// text-embedding-3 output. Zero uses the model default.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name. Never defaulted silently at generation time.
	Model string

	// BaseURL is the API endpoint override.
	BaseURL string

	// APIKey is the API key for cloud providers.
	APIKey string

	// MaxTokens caps the answer length. Zero uses the provider default.
	MaxTokens int

	// Temperature is the sampling temperature.
	Temperature float64

	// Timeout bounds a single generation round trip.
	Timeout time.Duration
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Model == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorBackend identifies the vector store implementation.
type VectorBackend string

// Available vector backends.
const (
	VectorBackendSQLite   VectorBackend = "sqlite"
	VectorBackendPGVector VectorBackend = "pgvector"
	VectorBackendMemory   VectorBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendSQLite, VectorBackendPGVector, VectorBackendMemory:
		return true
	default:
		return false
	}
}

// VectorStoreSettings holds vector index configuration.
type VectorStoreSettings struct {
	// Backend selects the store implementation.
	Backend VectorBackend

	// Path is the on-disk directory for the sqlite backend.
	Path string

	// DSN is the connection string for the pgvector backend.
	DSN string

	// Collection is the logical collection name.
	Collection string
}

// RetrievalSettings configures the retriever.
type RetrievalSettings struct {
	// TopK is the number of nearest neighbours requested.
	TopK int

	// Threshold is the maximum squared distance kept. Zero or less disables filtering.
	Threshold float64

	// Language forces the answer language. Empty means detect per question.
	Language string
}

// CorpusSettings configures the CSV loader.
type CorpusSettings struct {
	// Path is the CSV file with Question and Answer columns.
	Path string

	// ChunkSize splits long records into passages of this many characters. Zero disables.
	ChunkSize int

	// ChunkOverlap is the number of characters shared by adjacent passages.
	ChunkOverlap int
}

// ChatSettings configures conversational sessions.
type ChatSettings struct {
	// MaxHistoryTurns bounds the history suffix handed to the core.
	MaxHistoryTurns int
}

// CacheBackend identifies the embedding cache implementation.
type CacheBackend string

// Available cache backends.
const (
	CacheBackendNone   CacheBackend = "none"
	CacheBackendMemory CacheBackend = "memory"
	CacheBackendRedis  CacheBackend = "redis"
)

// CacheSettings configures the query embedding cache.
type CacheSettings struct {
	Backend   CacheBackend
	RedisAddr string
	TTL       time.Duration
}

// AppSettings holds all application settings.
// It is built once at startup and passed by reference.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	VectorStore VectorStoreSettings
	Retrieval   RetrievalSettings
	Corpus      CorpusSettings
	Chat        ChatSettings
	Cache       CacheSettings

	// FeedbackPath is the append-only feedback CSV file.
	FeedbackPath string

	// ServerAddr is the listen address for the HTTP front end.
	ServerAddr string

	// EmbedRPS throttles embedding requests during ingestion. Zero is unlimited.
	EmbedRPS float64
}

// Defaults shared with the configuration layer.
const (
	DefaultCollection      = "medical_faqs"
	DefaultTopK            = 3
	DefaultThreshold       = 0.5
	DefaultCorpusPath      = "data/medical_faqs.csv"
	DefaultMaxHistoryTurns = 10
	DefaultLocalDimensions = 512
	DefaultServerAddr      = ":8080"
)

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured: a model and credential must be supplied.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider: AIProviderLocal,
			Model:    DefaultEmbeddingModels()[AIProviderLocal],
		},
		LLM: LLMSettings{
			Temperature: 0.2,
			Timeout:     120 * time.Second,
		},
		VectorStore: VectorStoreSettings{
			Backend:    VectorBackendSQLite,
			Collection: DefaultCollection,
		},
		Retrieval: RetrievalSettings{
			TopK:      DefaultTopK,
			Threshold: DefaultThreshold,
		},
		Corpus: CorpusSettings{
			Path: DefaultCorpusPath,
		},
		Chat: ChatSettings{
			MaxHistoryTurns: DefaultMaxHistoryTurns,
		},
		Cache: CacheSettings{
			Backend: CacheBackendMemory,
			TTL:     24 * time.Hour,
		},
		ServerAddr: DefaultServerAddr,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderLocal,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderLocal:  "local-hash",
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderGemini: "text-embedding-004",
	}
}

// DefaultLLMModels returns suggested models for each LLM provider.
// They are offered by the settings command, never applied implicitly.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.0-flash",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}
