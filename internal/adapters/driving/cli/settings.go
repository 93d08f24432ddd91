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

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding and LLM providers, the vector store,
and retrieval options.

Use subcommands to configure specific settings or run the interactive wizard.`,
	Annotations: map[string]string{annotationScope: "settings"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure both providers step by step.`,
	RunE:  runSettingsWizard,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to index and query the FAQ
collection. Changing the model requires rebuilding the index.`,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that rewrites follow-ups and writes answers.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Dimensions > 0 {
		cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	}
	printAPIKey(cmd, settings.Embedding.Provider, settings.Embedding.APIKey)
	printStatus(cmd, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.LLM.Model)
	if settings.LLM.Provider == domain.AIProviderOllama {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	printAPIKey(cmd, settings.LLM.Provider, settings.LLM.APIKey)
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	if settings.LLM.MaxTokens > 0 {
		cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	}
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	printStatus(cmd, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Vector Store]")
	cmd.Printf("  Backend: %s\n", settings.VectorStore.Backend)
	cmd.Printf("  Collection: %s\n", settings.VectorStore.Collection)
	switch settings.VectorStore.Backend {
	case domain.VectorBackendSQLite:
		cmd.Printf("  Path: %s\n", settings.VectorStore.Path)
	case domain.VectorBackendPGVector:
		cmd.Printf("  DSN: %s\n", maskDSN(settings.VectorStore.DSN))
	}
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	if settings.Retrieval.Threshold > 0 {
		cmd.Printf("  Threshold: %.3f\n", settings.Retrieval.Threshold)
	} else {
		cmd.Printf("  Threshold: disabled\n")
	}
	language := settings.Retrieval.Language
	if language == "" {
		language = "auto"
	}
	cmd.Printf("  Language: %s\n", language)
	cmd.Println()

	cmd.Println("[Corpus]")
	cmd.Printf("  Path: %s\n", settings.Corpus.Path)
	if settings.Corpus.ChunkSize > 0 {
		cmd.Printf("  Chunking: %d chars, %d overlap\n", settings.Corpus.ChunkSize, settings.Corpus.ChunkOverlap)
	}
	cmd.Println()

	cmd.Println("[Chat]")
	cmd.Printf("  Max history turns: %d\n", settings.Chat.MaxHistoryTurns)
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend)
	if settings.Cache.Backend == domain.CacheBackendRedis {
		cmd.Printf("  Redis: %s\n", settings.Cache.RedisAddr)
	}
	if settings.Cache.Backend != domain.CacheBackendNone {
		cmd.Printf("  TTL: %s\n", settings.Cache.TTL)
	}
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.ServerAddr)
	if settings.FeedbackPath != "" {
		cmd.Printf("  Feedback log: %s\n", settings.FeedbackPath)
	}
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'faqrag settings wizard' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}

	cmd.Println("faqrag Settings Wizard")
	cmd.Println("======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Step 1: Configure Embedding Provider")
	cmd.Println("------------------------------------")
	cmd.Println("Passages and questions are embedded with this provider.")
	cmd.Println()
	if err := configureEmbeddingProvider(cmd, svc, reader); err != nil {
		return err
	}

	cmd.Println("Step 2: Configure LLM Provider")
	cmd.Println("------------------------------")
	cmd.Println("Answers are written by this provider.")
	cmd.Println()
	if err := configureLLMProvider(cmd, svc, reader); err != nil {
		return err
	}

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	if !indexBuilt(cmd.Context()) {
		cmd.Println("Next: run 'faqrag index build' to index the FAQ corpus.")
	}

	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	if err := configureEmbeddingProvider(cmd, svc, bufio.NewReader(cmd.InOrStdin())); err != nil {
		return err
	}
	cmd.Println("Run 'faqrag index build' to re-embed the corpus with the new model.")
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	return configureLLMProvider(cmd, svc, bufio.NewReader(cmd.InOrStdin()))
}

//nolint:dupl // mirrors configureLLMProvider
func configureEmbeddingProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey, err := promptAPIKey(cmd, selected, reader)
	if err != nil {
		return err
	}

	if err := svc.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateEmbeddingConfig(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selected.Description(), model)
	return nil
}

//nolint:dupl // mirrors configureEmbeddingProvider
func configureLLMProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader) error {
	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	apiKey, err := promptAPIKey(cmd, selected, reader)
	if err != nil {
		return err
	}

	if err := svc.SetLLMProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := svc.ValidateLLMConfig(cmd.Context()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n\n", selected.Description(), model)
	return nil
}

// promptAPIKey asks for a key when the provider needs one. A blank answer
// is accepted when the provider's environment variable is set.
func promptAPIKey(cmd *cobra.Command, p domain.AIProvider, reader *bufio.Reader) (string, error) {
	if !p.RequiresAPIKey() {
		return "", nil
	}
	env := p.APIKeyEnv()
	if os.Getenv(env) != "" {
		cmd.Printf("Enter API key [from %s]: ", env)
	} else {
		cmd.Print("Enter API key: ")
	}
	key := readPassword(cmd, reader)
	cmd.Println()
	if key == "" && os.Getenv(env) == "" {
		return "", errors.New("API key is required for this provider")
	}
	return key, nil
}

func printAPIKey(cmd *cobra.Command, p domain.AIProvider, key string) {
	if !p.RequiresAPIKey() {
		return
	}
	switch {
	case key != "":
		cmd.Printf("  API Key: %s\n", maskAPIKey(key))
	case os.Getenv(p.APIKeyEnv()) != "":
		cmd.Printf("  API Key: (from %s)\n", p.APIKeyEnv())
	default:
		cmd.Printf("  API Key: (not set)\n")
	}
}

func printStatus(cmd *cobra.Command, configured bool) {
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
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

// maskDSN hides the password of a postgres URL.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	scheme := strings.Index(dsn, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return dsn
	}
	userinfo := dsn[scheme+3 : at]
	user, _, found := strings.Cut(userinfo, ":")
	if !found {
		return dsn
	}
	return dsn[:scheme+3] + user + ":****" + dsn[at:]
}
