package nlp

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/soundprediction/docgraph/pkg/types"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialDelay:      time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// RetryClient wraps a Client with exponential-backoff retries on
// transient failures.
type RetryClient struct {
	client Client
	config *RetryConfig
}

// NewRetryClient creates a retry wrapper. A nil config selects defaults.
func NewRetryClient(client Client, config *RetryConfig) *RetryClient {
	if config == nil {
		config = DefaultRetryConfig()
	}
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.BackoffMultiplier <= 0 {
		config.BackoffMultiplier = 2.0
	}
	return &RetryClient{client: client, config: config}
}

// ExtractEntities implements Client with retries.
func (r *RetryClient) ExtractEntities(ctx context.Context, text string) (*types.Extraction, error) {
	var result *types.Extraction
	err := r.withRetries(ctx, func() error {
		var callErr error
		result, callErr = r.client.ExtractEntities(ctx, text)
		return callErr
	})
	return result, err
}

// SummarizeCommunities implements Client with retries.
func (r *RetryClient) SummarizeCommunities(ctx context.Context, question string, communities []*types.CommunitySummary) (string, error) {
	var result string
	err := r.withRetries(ctx, func() error {
		var callErr error
		result, callErr = r.client.SummarizeCommunities(ctx, question, communities)
		return callErr
	})
	return result, err
}

// Close implements Client.
func (r *RetryClient) Close() error {
	return r.client.Close()
}

func (r *RetryClient) withRetries(ctx context.Context, call func() error) error {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(r.delay(attempt)):
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during retry backoff: %w", ctx.Err())
			}
		}
		if lastErr = call(); lastErr == nil {
			return nil
		}
		if !isRetryable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (r *RetryClient) delay(attempt int) time.Duration {
	d := float64(r.config.InitialDelay) * math.Pow(r.config.BackoffMultiplier, float64(attempt-1))
	if d > float64(r.config.MaxDelay) {
		return r.config.MaxDelay
	}
	return time.Duration(d)
}

// isRetryable treats rate limits, timeouts, and 5xx-ish failures as
// transient. Parse failures are not retried; a model that emits bad JSON
// once will usually do it again.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "429", "timeout", "deadline", "502", "503", "504", "connection"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
