package nlp

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/docgraph/pkg/types"
)

// BreakerClient wraps a Client with a circuit breaker so that a flapping
// enrichment backend stops being called for a cool-down period instead of
// adding its timeout to every ingestion. While the breaker is open, calls
// fail fast and the deterministic fallback takes over.
type BreakerClient struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewBreakerClient creates a circuit-breaker wrapper around client.
func NewBreakerClient(client Client, name string, logger *slog.Logger) *BreakerClient {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:    name,
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("enrichment circuit breaker state change",
				"breaker", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerClient{
		client: client,
		cb:     gobreaker.NewCircuitBreaker(settings),
	}
}

// ExtractEntities implements Client.
func (b *BreakerClient) ExtractEntities(ctx context.Context, text string) (*types.Extraction, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.ExtractEntities(ctx, text)
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.Extraction), nil
}

// SummarizeCommunities implements Client.
func (b *BreakerClient) SummarizeCommunities(ctx context.Context, question string, communities []*types.CommunitySummary) (string, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.client.SummarizeCommunities(ctx, question, communities)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Close implements Client.
func (b *BreakerClient) Close() error {
	return b.client.Close()
}
