package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHashing is the built-in hashed bag-of-words embedder.
	// It needs no service and is deterministic, but it only matches shared words.
	AIProviderHashing AIProvider = "hashing"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGemini, AIProviderAnthropic, AIProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderHashing
}

// APIKeyEnv returns the environment variable consulted when no key is configured.
func (p AIProvider) APIKeyEnv() string {
	switch p {
	case AIProviderOpenAI:
		return "OPENAI_API_KEY"
	case AIProviderGemini:
		return "GEMINI_API_KEY"
	case AIProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Label returns the provider's display name, as used in user-facing messages.
func (p AIProvider) Label() string {
	switch p {
	case AIProviderOllama:
		return "Ollama"
	case AIProviderOpenAI:
		return "OpenAI"
	case AIProviderGemini:
		return "Gemini"
	case AIProviderAnthropic:
		return "Anthropic"
	case AIProviderHashing:
		return "Hashing"
	default:
		return unknownDescription
	}
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHashing:
		return "Hashing (built-in, offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name. It is recorded in the index manifest.
	Model string

	// BaseURL is the API endpoint (for Ollama, or a proxy).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini).
	APIKey string

	// BatchSize is how many chunks are embedded per request during a build.
	BatchSize int

	// RequestsPerSecond throttles remote calls. Zero disables throttling.
	RequestsPerSecond float64

	// CacheSize is the number of query embeddings kept in memory. Zero disables the cache.
	CacheSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
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

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama, or a proxy).
	BaseURL string

	// APIKey is the API key (for OpenAI/Gemini/Anthropic).
	APIKey string

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// RequestsPerSecond throttles remote calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderHashing {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds the sliding-window parameters, in characters.
type ChunkingSettings struct {
	ChunkSize int
	Overlap   int
}

// Validate rejects a window that cannot advance.
func (c ChunkingSettings) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrInvalidChunking, c.ChunkSize)
	}
	if c.Overlap < 0 || c.Overlap >= c.ChunkSize {
		return fmt.Errorf("%w: overlap must be >= 0 and < chunk_size (%d), got %d",
			ErrInvalidChunking, c.ChunkSize, c.Overlap)
	}
	return nil
}

// PathSettings locates the corpus and the persisted index pair.
type PathSettings struct {
	// DataPath is the CSV corpus.
	DataPath string

	// IndexPath is the binary vector index.
	IndexPath string

	// MetaPath is the JSON chunk metadata.
	MetaPath string
}

// RetrievalSettings holds query-time retrieval configuration.
type RetrievalSettings struct {
	TopK int
}

// ServerSettings holds HTTP server configuration.
type ServerSettings struct {
	Addr string
}

// HistorySettings controls the query history.
type HistorySettings struct {
	Enabled bool
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Chunking  ChunkingSettings
	Paths     PathSettings
	Retrieval RetrievalSettings
	Server    ServerSettings
	History   HistorySettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedder is the Ollama packaging of all-MiniLM-L6-v2 and the generator is
// Gemini; API keys are left empty and are usually supplied by the environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			Provider:  AIProviderOllama,
			Model:     DefaultEmbeddingModels()[AIProviderOllama],
			BatchSize: 32,
			CacheSize: 256,
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
			Timeout:  60 * time.Second,
		},
		Chunking: ChunkingSettings{
			ChunkSize: 400,
			Overlap:   50,
		},
		Paths: PathSettings{
			DataPath:  "data/insects.csv",
			IndexPath: "index/insects.index",
			MetaPath:  "index/meta.json",
		},
		Retrieval: RetrievalSettings{TopK: DefaultTopK},
		Server:    ServerSettings{Addr: "127.0.0.1:8000"},
		History:   HistorySettings{Enabled: true},
	}
}

// Validate checks settings that would otherwise fail deep inside a build or query.
func (s AppSettings) Validate() error {
	if err := s.Chunking.Validate(); err != nil {
		return err
	}
	if s.Retrieval.TopK <= 0 {
		return fmt.Errorf("%w: retrieval.top_k must be positive, got %d", ErrInvalidConfig, s.Retrieval.TopK)
	}
	if s.Embedding.BatchSize <= 0 {
		return fmt.Errorf("%w: embedding.batch_size must be positive, got %d", ErrInvalidConfig, s.Embedding.BatchSize)
	}
	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrInvalidConfig, s.Embedding.Provider)
	}
	if s.Paths.IndexPath == "" || s.Paths.MetaPath == "" {
		return fmt.Errorf("%w: index.path and index.meta_path are required", ErrInvalidConfig)
	}
	if s.Paths.IndexPath == s.Paths.MetaPath {
		return fmt.Errorf("%w: index.path and index.meta_path must differ", ErrInvalidConfig)
	}
	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderGemini,
		AIProviderHashing,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:  "all-minilm",
		AIProviderOpenAI:  "text-embedding-3-small",
		AIProviderGemini:  "text-embedding-004",
		AIProviderHashing: "hashing-384",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini:    "gemini-1.5-flash",
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"all-minilm":        384,
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
		"embedding-001":      768,
		// Built-in
		"hashing-384": 384,
	}
}
