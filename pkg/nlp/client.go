package nlp

import (
	"context"
	"errors"

	"github.com/soundprediction/docgraph/pkg/types"
)

// ErrUnavailable is returned when no enrichment backend is configured or
// the backend cannot be reached. Callers fall back to deterministic paths.
var ErrUnavailable = errors.New("enrichment unavailable")

// Client is the enrichment collaborator interface. Both operations are
// latency-bound and fallible; implementations must respect context
// cancellation.
type Client interface {
	// ExtractEntities extracts typed entities and explicit relationships
	// from raw text.
	ExtractEntities(ctx context.Context, text string) (*types.Extraction, error)

	// SummarizeCommunities phrases a prose answer to question from
	// community-level aggregates.
	SummarizeCommunities(ctx context.Context, question string, communities []*types.CommunitySummary) (string, error)

	// Close cleans up any resources.
	Close() error
}

// Config holds tuning for LLM-backed clients.
type Config struct {
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	// BaseURL points at an OpenAI-compatible service when non-empty.
	BaseURL string `json:"base_url,omitempty"`
}
