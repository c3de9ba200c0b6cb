package docgraph

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/docgraph"
	"github.com/soundprediction/docgraph/pkg/config"
	"github.com/soundprediction/docgraph/pkg/fetch"
	docgraphLogger "github.com/soundprediction/docgraph/pkg/logger"
	"github.com/soundprediction/docgraph/pkg/nlp"
	"github.com/soundprediction/docgraph/pkg/store"
	memorystore "github.com/soundprediction/docgraph/pkg/store/memory"
	neo4jstore "github.com/soundprediction/docgraph/pkg/store/neo4j"
)

// initializeClient wires a docgraph client from configuration: the graph
// store backend, the optional enrichment chain, and the source fetcher.
func initializeClient(cfg *config.Config) (*docgraph.Client, *slog.Logger, error) {
	logger := docgraphLogger.New(cfg.Log.Level, cfg.Log.Format)

	graphStore, err := initializeStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	var enricher nlp.Client
	if cfg.NLP.Enabled() {
		switch cfg.NLP.Provider {
		case "", "openai":
			nlpConfig := nlp.Config{
				Model:       cfg.NLP.Model,
				Temperature: &cfg.NLP.Temperature,
				MaxTokens:   &cfg.NLP.MaxTokens,
				BaseURL:     cfg.NLP.BaseURL,
			}
			base, err := nlp.NewOpenAIClient(cfg.NLP.APIKey, nlpConfig)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create NLP client: %w", err)
			}
			// Retries inside, circuit breaker outside: the breaker counts
			// whole operations, not individual attempts.
			retried := nlp.NewRetryClient(base, nlp.DefaultRetryConfig())
			enricher = nlp.NewBreakerClient(retried, "enrichment", logger)
		default:
			return nil, nil, fmt.Errorf("unsupported NLP provider: %s", cfg.NLP.Provider)
		}
	}

	fetcher, err := fetch.NewExtractor(&fetch.Options{
		Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MaxBytes:     cfg.Fetch.MaxBytes,
		CachePath:    cfg.Fetch.CachePath,
		DisableCache: cfg.Fetch.DisableCache,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fetch extractor: %w", err)
	}

	client, err := docgraph.NewClient(graphStore, &docgraph.Options{
		MaxCorpusBytes: cfg.Ingest.MaxCorpusBytes,
		Stem:           cfg.Ingest.Stem,
		DisablePhrases: cfg.Ingest.DisablePhrases,
		Enricher:       enricher,
		Fetcher:        fetcher,
		Logger:         logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create docgraph client: %w", err)
	}

	logger.Info("docgraph initialized",
		"store", cfg.Store.Driver, "enrichment", cfg.NLP.Enabled())
	return client, logger, nil
}

func initializeStore(cfg *config.Config) (store.GraphStore, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return memorystore.New(), nil
	case "neo4j":
		if cfg.Store.URI == "" {
			return nil, fmt.Errorf("neo4j driver requires store.uri")
		}
		graphStore, err := neo4jstore.New(cfg.Store.URI, cfg.Store.Username, cfg.Store.Password, cfg.Store.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create neo4j store: %w", err)
		}
		return graphStore, nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}
