package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/insectopedia/insectopedia/internal/core/domain"
	"github.com/insectopedia/insectopedia/internal/core/ports/driving"
)

var settingsYAML bool

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, chunking, paths and other options.

Settings are stored in config.toml in the configuration directory. API keys
may instead come from GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY.`,
	Args: cobra.NoArgs,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a single setting",
	Long: `Set a single setting by key, for example:

  insectopedia settings set chunking.chunk_size 500
  insectopedia settings set llm.provider ollama

The change is rejected, and the previous value kept, if the result is invalid.
Run 'insectopedia settings show' to list the keys.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate settings and contact the configured providers",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to build and query the index.

Changing the provider or model requires rebuilding the index.`,
	Args: cobra.NoArgs,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes answers.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

func init() {
	for _, c := range []*cobra.Command{settingsCmd, settingsShowCmd} {
		c.Flags().BoolVar(&settingsYAML, "yaml", false, "print settings as YAML")
	}
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func getSettingsService() (driving.SettingsService, error) {
	b, err := getBackend()
	if err != nil {
		return nil, err
	}
	svc := b.Settings()
	if svc == nil {
		return nil, errors.New("settings service not configured")
	}
	return svc, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if settingsYAML {
		return outputSettingsYAML(cmd, settings)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	cmd.Printf("  Query cache: %d\n", settings.Embedding.CacheSize)
	printRate(cmd, settings.Embedding.RequestsPerSecond)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.Embedding.IsConfigured()))
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printAPIKey(cmd, settings.LLM.Provider, settings.LLM.APIKey)
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	printRate(cmd, settings.LLM.RequestsPerSecond)
	cmd.Printf("  Status: %s\n", configuredStatus(settings.LLM.IsConfigured()))
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Corpus: %s\n", settings.Paths.DataPath)
	cmd.Printf("  Index: %s\n", settings.Paths.IndexPath)
	cmd.Printf("  Metadata: %s\n", settings.Paths.MetaPath)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", settings.Chunking.ChunkSize, settings.Chunking.Overlap)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Printf("  History: %s\n", enabledStatus(settings.History.Enabled))
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'insectopedia settings set' or 'insectopedia settings embedding' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := svc.Set(key, value); err != nil {
		if strings.Contains(err.Error(), "unknown setting") {
			return fmt.Errorf("%w\nKnown keys: %s", err, strings.Join(svc.Keys(), ", "))
		}
		return err
	}

	if strings.HasSuffix(key, ".api_key") {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	if err := svc.Validate(); err != nil {
		return err
	}
	cmd.Println("Settings: OK")

	cmd.Print("Embedding provider... ")
	if err := svc.ValidateEmbeddingConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Print("LLM provider... ")
	if err := svc.ValidateLLMConfig(); err != nil {
		cmd.Println("FAILED")
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, embeddingRole(svc), reader)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := getSettingsService()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	return configureProvider(cmd, llmRole(svc), reader)
}

// settingsDocument is the YAML form of the settings. API keys are masked.
type settingsDocument struct {
	Embedding struct {
		Provider          string  `yaml:"provider"`
		Model             string  `yaml:"model"`
		BaseURL           string  `yaml:"base_url,omitempty"`
		APIKey            string  `yaml:"api_key,omitempty"`
		BatchSize         int     `yaml:"batch_size"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		CacheSize         int     `yaml:"cache_size"`
	} `yaml:"embedding"`
	LLM struct {
		Provider          string  `yaml:"provider"`
		Model             string  `yaml:"model"`
		BaseURL           string  `yaml:"base_url,omitempty"`
		APIKey            string  `yaml:"api_key,omitempty"`
		TimeoutSeconds    int     `yaml:"timeout_seconds"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"llm"`
	Chunking struct {
		ChunkSize int `yaml:"chunk_size"`
		Overlap   int `yaml:"overlap"`
	} `yaml:"chunking"`
	Index struct {
		Path     string `yaml:"path"`
		MetaPath string `yaml:"meta_path"`
	} `yaml:"index"`
	Data struct {
		Path string `yaml:"path"`
	} `yaml:"data"`
	Retrieval struct {
		TopK int `yaml:"top_k"`
	} `yaml:"retrieval"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	History struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"history"`
}

func newSettingsDocument(s *domain.AppSettings) settingsDocument {
	var doc settingsDocument
	doc.Embedding.Provider = s.Embedding.Provider.String()
	doc.Embedding.Model = s.Embedding.Model
	doc.Embedding.BaseURL = s.Embedding.BaseURL
	if s.Embedding.APIKey != "" {
		doc.Embedding.APIKey = maskAPIKey(s.Embedding.APIKey)
	}
	doc.Embedding.BatchSize = s.Embedding.BatchSize
	doc.Embedding.RequestsPerSecond = s.Embedding.RequestsPerSecond
	doc.Embedding.CacheSize = s.Embedding.CacheSize

	doc.LLM.Provider = s.LLM.Provider.String()
	doc.LLM.Model = s.LLM.Model
	doc.LLM.BaseURL = s.LLM.BaseURL
	if s.LLM.APIKey != "" {
		doc.LLM.APIKey = maskAPIKey(s.LLM.APIKey)
	}
	doc.LLM.TimeoutSeconds = int(s.LLM.Timeout.Seconds())
	doc.LLM.RequestsPerSecond = s.LLM.RequestsPerSecond

	doc.Chunking.ChunkSize = s.Chunking.ChunkSize
	doc.Chunking.Overlap = s.Chunking.Overlap
	doc.Index.Path = s.Paths.IndexPath
	doc.Index.MetaPath = s.Paths.MetaPath
	doc.Data.Path = s.Paths.DataPath
	doc.Retrieval.TopK = s.Retrieval.TopK
	doc.Server.Addr = s.Server.Addr
	doc.History.Enabled = s.History.Enabled
	return doc
}

func outputSettingsYAML(cmd *cobra.Command, settings *domain.AppSettings) error {
	data, err := yaml.Marshal(newSettingsDocument(settings))
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

func printAPIKey(cmd *cobra.Command, provider domain.AIProvider, key string) {
	if !provider.RequiresAPIKey() {
		return
	}
	if key != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	} else {
		cmd.Printf("  API Key: (not set, export %s)\n", provider.APIKeyEnv())
	}
}

func printRate(cmd *cobra.Command, rps float64) {
	if rps > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", rps)
	}
}

func configuredStatus(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}

func enabledStatus(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}

// providerRole describes one of the two provider slots for the interactive setup.
type providerRole struct {
	name      string
	providers []domain.AIProvider
	models    map[domain.AIProvider]string
	set       func(p domain.AIProvider, model, apiKey string) error
	validate  func() error
}

func embeddingRole(svc driving.SettingsService) providerRole {
	return providerRole{
		name:      "embedding",
		providers: domain.AllEmbeddingProviders(),
		models:    domain.DefaultEmbeddingModels(),
		set:       svc.SetEmbeddingProvider,
		validate:  svc.ValidateEmbeddingConfig,
	}
}

func llmRole(svc driving.SettingsService) providerRole {
	return providerRole{
		name:      "LLM",
		providers: domain.AllLLMProviders(),
		models:    domain.DefaultLLMModels(),
		set:       svc.SetLLMProvider,
		validate:  svc.ValidateLLMConfig,
	}
}

// configureProvider asks for a provider, a model and, for cloud providers,
// an API key, then saves and pings the result.
func configureProvider(cmd *cobra.Command, role providerRole, reader *bufio.Reader) error {
	cmd.Printf("Select %s provider\n", role.name)
	for i, p := range role.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	selected := role.providers[parseChoice(readLine(reader), len(role.providers), 1)-1]

	defaultModel := role.models[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if selected.RequiresAPIKey() {
		env := selected.APIKeyEnv()
		if os.Getenv(env) != "" {
			cmd.Printf("Enter API key [from %s]: ", env)
		} else {
			cmd.Print("Enter API key: ")
		}
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" && os.Getenv(env) == "" {
			return fmt.Errorf("API key is required for %s (or set %s)", selected.Label(), env)
		}
	}

	if err := role.set(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", role.name, err)
	}

	cmd.Print("Validating configuration... ")
	if err := role.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", role.name, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", strings.ToUpper(role.name[:1])+role.name[1:], selected.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(reader *bufio.Reader) string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
