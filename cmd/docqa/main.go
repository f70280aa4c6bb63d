// Command docqa ingests documents and answers questions from them.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/docqa/internal/adapters/driven/ai"
	"github.com/custodia-labs/docqa/internal/adapters/driven/classifier/phrase"
	"github.com/custodia-labs/docqa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docqa/internal/adapters/driven/metrics"
	"github.com/custodia-labs/docqa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docqa/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/docqa/internal/adapters/driving/cli"
	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/services"
	"github.com/custodia-labs/docqa/internal/extractors"
	"github.com/custodia-labs/docqa/internal/extractors/docx"
	"github.com/custodia-labs/docqa/internal/extractors/pdf"
	"github.com/custodia-labs/docqa/internal/logger"
	"github.com/custodia-labs/docqa/internal/postprocessors"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	cli.SetBootstrap(bootstrap)
	err := cli.Execute(context.Background())
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

// resolveConfigDir picks --config, then $DOCQA_HOME, then ~/.docqa.
func resolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if home := os.Getenv(services.EnvHome); home != "" {
		return home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".docqa"), nil
}

// bootstrap wires adapters into services for one command invocation.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	dir, err := resolveConfigDir(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}
	applyLogging(settings.Logging, opts)

	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, func() {}, nil
	}

	var closers []func() error
	release := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logger.Warn("closing: %v", err)
			}
		}
	}
	fail := func(err error) (*cli.Services, func(), error) {
		release()
		return nil, nil, err
	}

	logger.Section("Embedding")
	embedder, err := ai.CreateEmbedder(&settings.Embedding)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err))
	}
	closers = append(closers, embedder.Close)
	logger.Debug("embedder %s with %d dimensions", embedder.ModelName(), embedder.Dimensions())

	logger.Section("Storage")
	indexPath := filepath.Join(settings.Storage.DataDir, settings.Storage.IndexFile)
	index, err := flat.Open(indexPath, embedder.Dimensions())
	if err != nil {
		if errors.Is(err, domain.ErrIndexCorrupt) || errors.Is(err, domain.ErrDimensionMismatch) {
			return fail(fmt.Errorf("refusing to start: %w", err))
		}
		return fail(fmt.Errorf("opening vector index: %w", err))
	}
	closers = append(closers, index.Close)

	store, err := sqlite.NewStore(settings.Storage.DataDir)
	if err != nil {
		return fail(fmt.Errorf("opening metadata store: %w", err))
	}
	closers = append(closers, store.Close)
	if v, err := store.SchemaVersion(ctx); err == nil {
		logger.Debug("metadata schema version %d", v)
	}
	docStore := store.DocumentStore()

	logger.Section("Generation")
	llm, err := ai.CreateLLMService(ctx, &settings.LLM)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err))
	}
	if llm != nil {
		closers = append(closers, llm.Close)
		logger.Debug("llm %s", llm.ModelName())
	} else {
		logger.Debug("no llm configured; questions cannot be answered")
	}

	prompts, err := file.NewPromptStore(filepath.Join(dir, "prompts"))
	if err != nil {
		return fail(fmt.Errorf("loading prompts: %w", err))
	}

	m := metrics.New()
	registry := extractors.NewRegistry(pdf.New(), docx.New())

	processors := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(processors)
	textPipeline, err := processors.BuildPipeline(settings.Ingest.TextProcessors, nil)
	if err != nil {
		return fail(fmt.Errorf("ingest.text_processors: %w", err))
	}
	logger.Debug("text processors %v", textPipeline.Names())

	classifier := phrase.New(settings.Retrieval.FallbackPhrases)
	logger.Debug("%d low-confidence phrases", len(classifier.Phrases()))

	return &cli.Services{
		Ingest: services.NewIngestService(registry, embedder, index, docStore, m).
			WithTextProcessor(textPipeline),
		Retrieval: services.NewRetrievalService(embedder, index, docStore, llm, prompts,
			classifier, m, services.RetrievalConfig{
				Retrieval:   settings.Retrieval,
				Temperature: settings.LLM.Temperature,
				MaxTokens:   settings.LLM.MaxTokens,
				Timeout:     settings.LLM.Timeout,
			}),
		Document:    services.NewDocumentService(docStore),
		Consistency: services.NewConsistencyService(index, docStore, m),
		Settings:    settingsService,
		Metrics:     m.Handler(),
	}, release, nil
}

// applyLogging applies logging settings unless a flag already chose.
func applyLogging(s domain.LoggingSettings, opts cli.Options) {
	if s.Verbose && !opts.Verbose {
		logger.SetVerbose(true)
	}
	if opts.LogFormat == "" && s.Format != "" {
		if err := logger.SetFormat(s.Format); err != nil {
			logger.Warn("logging.format: %v", err)
		}
	}
}
