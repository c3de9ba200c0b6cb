package docgraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/soundprediction/docgraph/pkg/community"
	"github.com/soundprediction/docgraph/pkg/extract"
	"github.com/soundprediction/docgraph/pkg/fetch"
	"github.com/soundprediction/docgraph/pkg/nlp"
	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/text"
	"github.com/soundprediction/docgraph/pkg/types"
)

// DefaultMaxCorpusBytes is the total corpus ceiling applied when Options
// does not set one.
const DefaultMaxCorpusBytes = 100 << 20

// ErrCorpusLimit is returned when ingesting a document would push the
// total corpus past the configured ceiling. The graph is left untouched.
var ErrCorpusLimit = errors.New("corpus size ceiling reached")

// Options tunes a Client. The zero value selects an enrichment-free
// client with default limits.
type Options struct {
	// MaxCorpusBytes caps the total size of ingested content. Zero or
	// negative selects DefaultMaxCorpusBytes.
	MaxCorpusBytes int64

	// Stem enables suffix stemming during normalization. Stemming widens
	// recall at the cost of excerpt precision, so it is off by default.
	Stem bool

	// DisablePhrases turns off two-word phrase extraction.
	DisablePhrases bool

	// Enricher is the optional LLM collaborator. When nil, or when it
	// fails, ingestion falls back to the deterministic extractor and
	// global answers fall back to a deterministic community listing.
	Enricher nlp.Client

	// Fetcher resolves file and URL sources for IngestSources. When nil,
	// only IngestText is available.
	Fetcher *fetch.Extractor

	Logger *slog.Logger
}

// Client is the concept-graph engine.
type Client struct {
	store     store.GraphStore
	enricher  nlp.Client
	fetcher   *fetch.Extractor
	norm      *text.Normalizer
	extractor *extract.Extractor
	detector  *community.Detector

	maxCorpusBytes int64
	logger         *slog.Logger
}

// NewClient creates a Client on top of a graph store. A nil options value
// selects defaults.
func NewClient(graphStore store.GraphStore, opts *Options) (*Client, error) {
	if graphStore == nil {
		return nil, errors.New("graph store is required")
	}

	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.MaxCorpusBytes <= 0 {
		o.MaxCorpusBytes = DefaultMaxCorpusBytes
	}

	norm := text.NewNormalizer(&text.Options{Stem: o.Stem})
	extractor := extract.NewExtractor(norm, &extract.Config{DisablePhrases: o.DisablePhrases})

	return &Client{
		store:          graphStore,
		enricher:       o.Enricher,
		fetcher:        o.Fetcher,
		norm:           norm,
		extractor:      extractor,
		detector:       community.NewDetector(graphStore, o.Logger),
		maxCorpusBytes: o.MaxCorpusBytes,
		logger:         o.Logger,
	}, nil
}

// DetectCommunities recomputes community labels for every concept and
// returns the number of distinct communities found.
func (c *Client) DetectCommunities(ctx context.Context) (int, error) {
	return c.detector.Detect(ctx)
}

// Communities returns detected communities ranked by size, capped at
// limit. A non-positive limit selects the global retrieval default.
func (c *Client) Communities(ctx context.Context, limit int) ([]*types.CommunitySummary, error) {
	if limit <= 0 {
		limit = globalCommunityLimit
	}
	return c.store.ListCommunities(ctx, limit)
}

// Stats returns graph size counters.
func (c *Client) Stats(ctx context.Context) (*types.Stats, error) {
	return c.store.Stats(ctx)
}

// Clear removes every document, concept, and edge from the graph.
func (c *Client) Clear(ctx context.Context) error {
	if err := c.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to clear graph: %w", err)
	}
	c.logger.Info("graph cleared")
	return nil
}

// Close releases the store, the enrichment client, and the fetch cache.
func (c *Client) Close(ctx context.Context) error {
	var errs []error
	if c.enricher != nil {
		if err := c.enricher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("enricher: %w", err))
		}
	}
	if c.fetcher != nil {
		if err := c.fetcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("fetcher: %w", err))
		}
	}
	if err := c.store.Close(ctx); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	return errors.Join(errs...)
}
