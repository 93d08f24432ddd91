// Package cli implements the faqrag command line interface.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/core/ports/driving"
	"github.com/custodia-labs/faqrag/internal/logger"
)

// version is overridden at build time via SetVersion.
var version = "dev"

// Services holds what the commands drive. A nil Assistant or Index means
// that part could not be configured and the matching error says why.
type Services struct {
	Settings        *domain.AppSettings
	SettingsService driving.SettingsService

	Index     driving.IndexService
	Retriever driving.Retriever
	Assistant driving.Assistant
	Feedback  driving.FeedbackService

	Loader   driven.CorpusLoader
	Pipeline driven.PostProcessorPipeline

	// AssistantErr is the configuration error that left Assistant nil.
	AssistantErr error

	// IndexErr is the embedding or store error that left Index nil.
	IndexErr error

	// IndexBuilt reports whether the configured collection has been built.
	IndexBuilt func(ctx context.Context) bool

	// WatchPrompts reloads prompt templates on change until ctx ends.
	WatchPrompts func(ctx context.Context) error

	// Close releases stores and clients.
	Close func() error
}

// BootstrapOptions tells the bootstrap what the command about to run needs.
type BootstrapOptions struct {
	// ConfigDir is the configuration directory. Empty selects the default.
	ConfigDir string

	// Index requests the embedding provider and vector store.
	Index bool

	// Assistant requests the LLM and the answering pipeline.
	Assistant bool
}

// Bootstrap builds the services a command needs.
type Bootstrap func(ctx context.Context, opts BootstrapOptions) (*Services, error)

// Command annotations read by setup.
const (
	// annotationNoServices marks commands that run without bootstrapping.
	annotationNoServices = "faqrag/no-services"

	// annotationScope limits what a command tree bootstraps: "settings"
	// or "index". Unannotated commands get everything.
	annotationScope = "faqrag/scope"
)

var (
	bootstrap Bootstrap
	services  *Services

	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "faqrag",
	Short: "Answer medical questions from an FAQ corpus",
	Long: `faqrag answers natural-language medical questions from an indexed FAQ
collection. Relevant passages are retrieved by embedding similarity and
handed to a language model, which answers citing its sources as [FAQ-n].

Start by building the index from a CSV with Question and Answer columns:
  faqrag index build --csv data/medical_faqs.csv

Then ask a question, chat, or serve the assistant:
  faqrag ask "What are the symptoms of flu?"
  faqrag chat
  faqrag serve`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline steps to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "configuration directory (default ~/.faqrag)")
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if services != nil || bootstrap == nil || cmd.Annotations[annotationNoServices] == "true" {
		return nil
	}

	opts := BootstrapOptions{ConfigDir: configDir, Index: true, Assistant: true}
	switch scope(cmd) {
	case "settings":
		opts.Index, opts.Assistant = false, false
	case "index":
		opts.Assistant = false
	}

	s, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	services = s
	return nil
}

// scope returns the nearest annotationScope on cmd or its parents.
func scope(cmd *cobra.Command) string {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[annotationScope]; ok {
			return v
		}
	}
	return ""
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects ready-made services, bypassing the bootstrap.
func SetServices(s *Services) {
	services = s
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Shutdown releases whatever the bootstrap opened.
func Shutdown() error {
	if services == nil || services.Close == nil {
		return nil
	}
	return services.Close()
}

func requireServices() (*Services, error) {
	if services == nil {
		return nil, errors.New("services not configured")
	}
	return services, nil
}

func requireAssistant() (driving.Assistant, error) {
	s, err := requireServices()
	if err != nil {
		return nil, err
	}
	if s.Assistant == nil {
		if s.AssistantErr != nil {
			return nil, s.AssistantErr
		}
		return nil, errors.New("assistant not configured")
	}
	return s.Assistant, nil
}

func requireIndex() (driving.IndexService, error) {
	s, err := requireServices()
	if err != nil {
		return nil, err
	}
	if s.Index == nil {
		if s.IndexErr != nil {
			return nil, s.IndexErr
		}
		return nil, errors.New("index service not configured")
	}
	return s.Index, nil
}

func requireSettingsService() (driving.SettingsService, error) {
	s, err := requireServices()
	if err != nil {
		return nil, err
	}
	if s.SettingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return s.SettingsService, nil
}

// currentSettings returns the loaded settings, or defaults.
func currentSettings() *domain.AppSettings {
	if services != nil && services.Settings != nil {
		return services.Settings
	}
	defaults := domain.DefaultAppSettings()
	return &defaults
}

func indexBuilt(ctx context.Context) bool {
	if services == nil || services.IndexBuilt == nil {
		return true
	}
	return services.IndexBuilt(ctx)
}

// watchPrompts starts the prompt watcher for long-running commands.
func watchPrompts(ctx context.Context) {
	if services == nil || services.WatchPrompts == nil {
		return
	}
	go func() {
		if err := services.WatchPrompts(ctx); err != nil {
			logger.Warn("prompt watcher stopped: %v", err)
		}
	}()
}
