// Command faqrag answers medical questions from an indexed FAQ corpus.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/faqrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/corpus"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/feedback"
	"github.com/custodia-labs/faqrag/internal/adapters/driven/vectorstore"
	"github.com/custodia-labs/faqrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/faqrag/internal/core/domain"
	"github.com/custodia-labs/faqrag/internal/core/ports/driven"
	"github.com/custodia-labs/faqrag/internal/core/services"
	"github.com/custodia-labs/faqrag/internal/logger"
	"github.com/custodia-labs/faqrag/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute(ctx)
	if cerr := cli.Shutdown(); cerr != nil {
		logger.Warn("shutdown: %v", cerr)
	}
	stop()

	if err != nil {
		os.Exit(1)
	}
}

// bootstrap wires the adapters into the services a command asked for.
// Provider failures are recorded on the returned Services rather than
// returned, so commands that do not need them still run.
func bootstrap(ctx context.Context, opts cli.BootstrapOptions) (*cli.Services, error) {
	dir := opts.ConfigDir
	if dir == "" {
		var err error
		if dir, err = file.DefaultDir(); err != nil {
			return nil, fmt.Errorf("%w: locating home directory: %w", domain.ErrConfiguration, err)
		}
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %s: %w", domain.ErrConfiguration, dir, err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}
	if settings.VectorStore.Path == "" {
		settings.VectorStore.Path = filepath.Join(dir, "data")
	}
	if settings.FeedbackPath == "" {
		settings.FeedbackPath = filepath.Join(dir, "feedback.csv")
	}

	svc := &cli.Services{
		Settings:        settings,
		SettingsService: settingsService,
		Loader:          corpus.NewLoader(),
		IndexBuilt: func(context.Context) bool {
			return vectorstore.Built(settings.VectorStore)
		},
	}

	var closers []func() error
	svc.Close = func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	if svc.Pipeline, err = postprocessors.FromSettings(registry, settings.Corpus); err != nil {
		return nil, err
	}

	if !opts.Index && !opts.Assistant {
		return svc, nil
	}

	logger.Section("Bootstrap")
	logger.Info("config directory: %s", dir)

	embedder, err := ai.CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		svc.IndexErr = err
		svc.AssistantErr = err
		return svc, nil
	}
	closers = append(closers, embedder.Close)
	logger.Info("embedding: %s (%s)", settings.Embedding.Provider, embedder.ModelName())

	store, err := vectorstore.Open(ctx, settings.VectorStore)
	if err != nil {
		svc.IndexErr = err
		svc.AssistantErr = err
		return svc, nil
	}
	closers = append(closers, store.Close)
	logger.Info("vector store: %s", settings.VectorStore.Backend)

	index := services.NewVectorIndex(store, embedder, services.IndexConfig{
		Collection: settings.VectorStore.Collection,
		EmbedRPS:   settings.EmbedRPS,
	})
	retriever := services.NewRetriever(index, embedder)
	svc.Index = index
	svc.Retriever = retriever
	svc.IndexBuilt = func(ctx context.Context) bool {
		return collectionBuilt(ctx, index)
	}

	if !opts.Assistant {
		return svc, nil
	}

	sink, err := feedback.NewCSVSink(settings.FeedbackPath)
	if err != nil {
		logger.Warn("feedback disabled: %v", err)
	} else {
		closers = append(closers, sink.Close)
		svc.Feedback = services.NewFeedbackService(sink)
	}

	llm, err := ai.CreateAndValidateLLMService(ctx, &settings.LLM)
	if err != nil {
		svc.AssistantErr = err
		return svc, nil
	}
	closers = append(closers, llm.Close)
	logger.Info("llm: %s (%s)", settings.LLM.Provider, llm.ModelName())

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return nil, err
	}
	if err := prompts.Ensure(); err != nil {
		logger.Warn("using built-in prompts: %v", err)
	} else {
		svc.WatchPrompts = watchPrompts(prompts)
	}

	svc.Assistant = services.NewAssistant(
		services.NewRewriter(llm, prompts),
		retriever,
		services.NewComposer(prompts),
		services.NewAnswerGenerator(llm, driven.GenerateOptions{
			MaxTokens:   settings.LLM.MaxTokens,
			Temperature: settings.LLM.Temperature,
		}),
		services.AssistantConfig{
			TopK:      settings.Retrieval.TopK,
			Threshold: settings.Retrieval.Threshold,
			Language:  settings.Retrieval.Language,
		},
	)

	return svc, nil
}

// collectionBuilt is false only when the store has no live collection.
// Other status errors surface when the index is queried.
func collectionBuilt(ctx context.Context, index *services.VectorIndex) bool {
	_, err := index.Status(ctx)
	return !errors.Is(err, domain.ErrCollectionNotFound)
}

func watchPrompts(prompts *file.PromptStore) func(context.Context) error {
	return func(ctx context.Context) error {
		w, err := file.NewPromptWatcher(prompts, prompts.Dir())
		if err != nil {
			return err
		}
		return w.Run(ctx)
	}
}
