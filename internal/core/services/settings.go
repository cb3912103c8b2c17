package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driven"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider  = "embedding.provider"
	keyEmbedModel     = "embedding.model"
	keyEmbedBaseURL   = "embedding.base_url"
	keyEmbedAPIKey    = "embedding.api_key"
	keyEmbedBatchSize = "embedding.batch_size"
	keyEmbedRPS       = "embedding.requests_per_second"
	keyEmbedCacheSize = "embedding.cache_size"
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTimeout     = "llm.timeout_seconds"
	keyLLMRPS         = "llm.requests_per_second"
	keyChunkSize      = "chunking.chunk_size"
	keyChunkOverlap   = "chunking.overlap"
	keyIndexPath      = "index.path"
	keyIndexMetaPath  = "index.meta_path"
	keyDataPath       = "data.path"
	keyTopK           = "retrieval.top_k"
	keyServerAddr     = "server.addr"
	keyHistory        = "history.enabled"
)

// valueKind says how a setting's string form is parsed by Set.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindBool
	kindProvider
)

// settingKinds lists every recognised key.
var settingKinds = map[string]valueKind{
	keyEmbedProvider:  kindProvider,
	keyEmbedModel:     kindString,
	keyEmbedBaseURL:   kindString,
	keyEmbedAPIKey:    kindString,
	keyEmbedBatchSize: kindInt,
	keyEmbedRPS:       kindFloat,
	keyEmbedCacheSize: kindInt,
	keyLLMProvider:    kindProvider,
	keyLLMModel:       kindString,
	keyLLMBaseURL:     kindString,
	keyLLMAPIKey:      kindString,
	keyLLMTimeout:     kindInt,
	keyLLMRPS:         kindFloat,
	keyChunkSize:      kindInt,
	keyChunkOverlap:   kindInt,
	keyIndexPath:      kindString,
	keyIndexMetaPath:  kindString,
	keyDataPath:       kindString,
	keyTopK:           kindInt,
	keyServerAddr:     kindString,
	keyHistory:        kindBool,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
// Stored values override defaults. An empty API key falls back to the
// provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider]),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:            s.apiKey(keyEmbedAPIKey, embedProvider),
			BatchSize:         s.getIntAllowZero(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			CacheSize:         s.getIntAllowZero(keyEmbedCacheSize, defaults.Embedding.CacheSize),
		},
		LLM: domain.LLMSettings{
			Provider:          llmProvider,
			Model:             s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.apiKey(keyLLMAPIKey, llmProvider),
			Timeout:           time.Duration(s.getInt(keyLLMTimeout, int(defaults.LLM.Timeout/time.Second))) * time.Second,
			RequestsPerSecond: s.configStore.GetFloat(keyLLMRPS),
		},
		Chunking: domain.ChunkingSettings{
			ChunkSize: s.getIntAllowZero(keyChunkSize, defaults.Chunking.ChunkSize),
			Overlap:   s.getIntAllowZero(keyChunkOverlap, defaults.Chunking.Overlap),
		},
		Paths: domain.PathSettings{
			DataPath:  s.getString(keyDataPath, defaults.Paths.DataPath),
			IndexPath: s.getString(keyIndexPath, defaults.Paths.IndexPath),
			MetaPath:  s.getString(keyIndexMetaPath, defaults.Paths.MetaPath),
		},
		Retrieval: domain.RetrievalSettings{
			TopK: s.getIntAllowZero(keyTopK, defaults.Retrieval.TopK),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		History: domain.HistorySettings{
			Enabled: s.getBool(keyHistory, defaults.History.Enabled),
		},
	}

	return settings, nil
}

// Save persists application settings.
// API keys that only came from the environment are not written to disk.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedBatchSize, settings.Embedding.BatchSize},
		{keyEmbedRPS, settings.Embedding.RequestsPerSecond},
		{keyEmbedCacheSize, settings.Embedding.CacheSize},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTimeout, int(settings.LLM.Timeout / time.Second)},
		{keyLLMRPS, settings.LLM.RequestsPerSecond},
		{keyChunkSize, settings.Chunking.ChunkSize},
		{keyChunkOverlap, settings.Chunking.Overlap},
		{keyDataPath, settings.Paths.DataPath},
		{keyIndexPath, settings.Paths.IndexPath},
		{keyIndexMetaPath, settings.Paths.MetaPath},
		{keyTopK, settings.Retrieval.TopK},
		{keyServerAddr, settings.Server.Addr},
		{keyHistory, settings.History.Enabled},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if err := s.saveAPIKey(keyEmbedAPIKey, settings.Embedding.Provider, settings.Embedding.APIKey); err != nil {
		return err
	}
	return s.saveAPIKey(keyLLMAPIKey, settings.LLM.Provider, settings.LLM.APIKey)
}

// Set parses value according to key and stores it. The change is rolled
// back if it leaves the settings invalid.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidConfig, key)
	}

	parsed, err := parseValue(kind, strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, key, err)
	}

	previous, had := s.configStore.Get(key)
	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	settings, err := s.Get()
	if err == nil {
		err = settings.Validate()
	}
	if err != nil {
		if had {
			_ = s.configStore.Set(key, previous)
		} else {
			_ = s.configStore.Unset(key)
		}
		return err
	}
	return nil
}

// Keys returns every recognised setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SetEmbeddingProvider configures the embedding provider.
// Changing it invalidates any existing index; the caller must rebuild.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !containsProvider(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s (or set %s)", provider, provider.APIKeyEnv())
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

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}
	if !containsProvider(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support text generation", provider)
	}
	if apiKey == "" {
		apiKey = s.envKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s (or set %s)", provider, provider.APIKeyEnv())
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = model
	if model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}
	settings.LLM.BaseURL = localBaseURL(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks that the current settings can build and query an index.
// A missing LLM key is not an error here; it surfaces as a generation failure.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if err := settings.Validate(); err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %s requires an API key (set %s or embedding.api_key)",
			domain.ErrInvalidConfig, settings.Embedding.Provider, settings.Embedding.Provider.APIKeyEnv())
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getIntAllowZero is getInt for settings where zero is meaningful.
func (s *SettingsService) getIntAllowZero(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) apiKey(key string, provider domain.AIProvider) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return s.envKey(provider)
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	if env := provider.APIKeyEnv(); env != "" {
		return s.getenv(env)
	}
	return ""
}

func (s *SettingsService) saveAPIKey(key string, provider domain.AIProvider, apiKey string) error {
	if apiKey == "" || apiKey == s.envKey(provider) {
		return nil
	}
	if err := s.configStore.Set(key, apiKey); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func localBaseURL(provider domain.AIProvider, current string) string {
	if provider == domain.AIProviderOllama {
		if current == "" {
			return "http://localhost:11434"
		}
		return current
	}
	// Cloud providers and the built-in embedder use their own endpoints.
	return ""
}

func containsProvider(list []domain.AIProvider, p domain.AIProvider) bool {
	for _, candidate := range list {
		if candidate == p {
			return true
		}
	}
	return false
}

func parseValue(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("expected an integer, got %q", value)
		}
		if n < 0 {
			return nil, fmt.Errorf("must not be negative, got %d", n)
		}
		return n, nil
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", value)
		}
		if f < 0 {
			return nil, fmt.Errorf("must not be negative, got %g", f)
		}
		return f, nil
	case kindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("expected true or false, got %q", value)
		}
		return b, nil
	case kindProvider:
		p := domain.AIProvider(strings.ToLower(value))
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return p.String(), nil
	default:
		return value, nil
	}
}
