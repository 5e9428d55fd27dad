package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/ai"
	configfile "github.com/custodia-labs/journal-assistant/internal/adapters/driven/config/file"
	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/mediasource/filesystem"
	filestore "github.com/custodia-labs/journal-assistant/internal/adapters/driven/storage/file"
	"github.com/custodia-labs/journal-assistant/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/journal-assistant/internal/core/ports/driven"
	"github.com/custodia-labs/journal-assistant/internal/core/services"
)

// Persisted file names under the data directory.
const (
	scanStateFile = "scan_state.json"
	indexFile     = "index.json"
)

// app holds the wired services behind the commands. It is built lazily on
// the first command that needs it, so commands like version never touch the
// config file or the network.
type app struct {
	cfg       configfile.Config
	source    *filesystem.Source
	pages     driven.PageStore
	index     *services.VectorIndex
	processor *services.Processor
	indexer   *services.Indexer
	scheduler *services.Scheduler
	search    *services.SearchService
	vision    driven.VisionService
	embedder  driven.EmbeddingService
}

var (
	appOnce sync.Once
	appVal  *app
	appErr  error
)

// ensureApp wires the application once and returns it.
func ensureApp(ctx context.Context) (*app, error) {
	appOnce.Do(func() {
		appVal, appErr = buildApp(ctx)
	})
	return appVal, appErr
}

// buildApp loads the configuration and assembles adapters and services.
func buildApp(ctx context.Context) (*app, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = configfile.DefaultPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := configfile.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}

	source, err := filesystem.New(cfg.Media.Root)
	if err != nil {
		return nil, fmt.Errorf("media source: %w", err)
	}

	prompts, err := configfile.NewPromptStore(cfg.PromptsDir)
	if err != nil {
		return nil, err
	}

	vision, embedder, err := ai.CreateServices(ai.Config{
		Provider:    cfg.AI.Provider,
		APIKey:      cfg.AI.APIKey,
		VisionModel: cfg.AI.VisionModel,
		EmbedModel:  cfg.AI.EmbedModel,
		OllamaURL:   cfg.AI.OllamaURL,
	})
	if err != nil {
		return nil, err
	}
	if err := ai.ValidateEmbeddingService(embedder); err != nil {
		return nil, err
	}

	pages, err := sqlite.NewPageStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("page store: %w", err)
	}

	indexBlobs := filestore.NewBlobStore(filepath.Join(cfg.DataDir, indexFile))
	index := services.NewVectorIndex(embedder.EmbedDocuments, queryEmbedFunc(embedder), indexBlobs)
	if err := index.LoadStore(ctx); err != nil {
		return nil, err
	}

	stateBlobs := filestore.NewBlobStore(filepath.Join(cfg.DataDir, scanStateFile))
	state := services.NewScanStateStore(stateBlobs)

	extractor := services.NewExtractor(vision, prompts)
	handler := services.NewExtractionHandler(extractor, pages)
	walker := services.NewWalker(source, nil)
	processor := services.NewProcessor(walker, state, source.RootIdentifier(), handler)
	indexer := services.NewIndexer(pages, index, cfg.Journal.Notebooks, cfg.Journal.DefaultNotebook)

	return &app{
		cfg:       cfg,
		source:    source,
		pages:     pages,
		index:     index,
		processor: processor,
		indexer:   indexer,
		scheduler: services.NewScheduler(processor, indexer, cfg.Media.ScanInterval.Duration),
		search:    services.NewSearchService(index),
		vision:    vision,
		embedder:  embedder,
	}, nil
}

// queryEmbedFunc adapts an embedding service's query mode to the batch
// capability the index expects.
func queryEmbedFunc(embedder driven.EmbeddingService) driven.EmbedFunc {
	return func(ctx context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vec, err := embedder.EmbedQuery(ctx, text)
			if err != nil {
				return nil, err
			}
			vectors[i] = vec
		}
		return vectors, nil
	}
}

// Close releases the app's resources.
func (a *app) Close() error {
	var firstErr error
	if err := a.pages.Close(); err != nil {
		firstErr = err
	}
	if err := a.embedder.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := a.vision.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
