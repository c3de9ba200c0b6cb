package docgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soundprediction/docgraph/pkg/extract"
	"github.com/soundprediction/docgraph/pkg/nlp"
	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/types"
)

// IngestText ingests content passed in directly as a string.
func (c *Client) IngestText(ctx context.Context, name, content string) (*types.DocumentSummary, error) {
	return c.ingest(ctx, name, content, types.TextSource)
}

// IngestSources resolves each source (file path or URL) to plain text and
// ingests it. A failed source is reported in its SourceResult and does not
// abort the rest of the batch; only a missing fetcher is a hard error.
func (c *Client) IngestSources(ctx context.Context, sources []string) (*types.IngestResult, error) {
	if c.fetcher == nil {
		return nil, errors.New("no text extractor configured")
	}

	result := &types.IngestResult{Results: make([]types.SourceResult, 0, len(sources))}
	for _, src := range sources {
		extracted, err := c.fetcher.ExtractPlainText(ctx, src)
		if err != nil {
			c.logger.Warn("source extraction failed", "source", src, "error", err)
			result.Results = append(result.Results, types.SourceResult{Source: src, Err: err.Error()})
			result.Failed++
			continue
		}

		summary, err := c.ingest(ctx, extracted.Name, extracted.Text, extracted.Kind)
		if err != nil {
			c.logger.Warn("source ingestion failed", "source", src, "error", err)
			result.Results = append(result.Results, types.SourceResult{Source: src, Err: err.Error()})
			result.Failed++
			continue
		}

		result.Results = append(result.Results, types.SourceResult{Source: src, Ok: true, Summary: summary})
		result.Succeeded++
	}
	return result, nil
}

// ingest runs the full pipeline for one document: ceiling check, concept
// extraction, document node, concept merges, CONTAINS edges, and pairwise
// RELATED_TO co-occurrence edges. The ceiling is checked before any
// mutation so a rejected document leaves the graph unchanged.
func (c *Client) ingest(ctx context.Context, name, content string, kind types.SourceKind) (*types.DocumentSummary, error) {
	if strings.TrimSpace(name) == "" {
		return nil, types.ErrEmptyName
	}

	stats, err := c.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph stats: %w", err)
	}
	if stats.CorpusBytes+int64(len(content)) > c.maxCorpusBytes {
		return nil, fmt.Errorf("ingesting %q (%d bytes) would exceed the %d byte ceiling: %w",
			name, len(content), c.maxCorpusBytes, ErrCorpusLimit)
	}

	candidates := c.extractConcepts(ctx, content)

	doc := &types.Document{
		ID:         uuid.New().String(),
		Name:       name,
		SourceKind: kind,
		Content:    content,
		Size:       len(content),
		CreatedAt:  time.Now().UTC(),
	}
	if err := c.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to create document %q: %w", name, err)
	}

	for _, cand := range candidates {
		attrs := store.ConceptAttrs{Type: cand.Type, Description: cand.Description}
		if _, err := c.store.UpsertConcept(ctx, cand.Name, cand.Frequency, attrs); err != nil {
			return nil, fmt.Errorf("failed to upsert concept %q: %w", cand.Name, err)
		}
		if err := c.store.CreateContainsEdge(ctx, doc.ID, cand.Name, cand.Frequency); err != nil {
			return nil, fmt.Errorf("failed to link %q to %q: %w", name, cand.Name, err)
		}
	}

	// Every unordered pair of concepts in this document co-occurs; the
	// edge weight grows by the smaller of the two local frequencies.
	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			delta := min(candidates[i].Frequency, candidates[j].Frequency)
			if err := c.store.UpsertRelatedEdge(ctx, candidates[i].Name, candidates[j].Name, delta); err != nil {
				return nil, fmt.Errorf("failed to relate %q and %q: %w",
					candidates[i].Name, candidates[j].Name, err)
			}
		}
	}

	c.logger.Info("document ingested",
		"document", name, "kind", kind, "concepts", len(candidates), "bytes", len(content))

	return &types.DocumentSummary{
		DocumentID:   doc.ID,
		Name:         name,
		ConceptCount: len(candidates),
		Size:         len(content),
		SourceKind:   kind,
	}, nil
}

// extractConcepts asks the enrichment collaborator first and falls back to
// the deterministic extractor when enrichment is absent, fails, or returns
// nothing usable.
func (c *Client) extractConcepts(ctx context.Context, content string) []types.Concept {
	if c.enricher != nil {
		ex, err := c.enricher.ExtractEntities(ctx, content)
		if err == nil {
			if merged := extract.MergeExtraction(ex); len(merged) > 0 {
				return merged
			}
		} else if !errors.Is(err, nlp.ErrUnavailable) {
			c.logger.Warn("entity enrichment failed, using deterministic extraction", "error", err)
		}
	}
	return c.extractor.Extract(content)
}
