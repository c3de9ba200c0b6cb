package nlp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/docgraph/pkg/types"
)

// scriptedClient fails a fixed number of times before succeeding.
type scriptedClient struct {
	failures int
	err      error
	calls    int
}

func (c *scriptedClient) ExtractEntities(context.Context, string) (*types.Extraction, error) {
	c.calls++
	if c.calls <= c.failures {
		return nil, c.err
	}
	return &types.Extraction{
		Entities: []types.ExtractedEntity{{Name: "ok", Type: types.EntityConcept}},
	}, nil
}

func (c *scriptedClient) SummarizeCommunities(context.Context, string, []*types.CommunitySummary) (string, error) {
	c.calls++
	if c.calls <= c.failures {
		return "", c.err
	}
	return "summary", nil
}

func (c *scriptedClient) Close() error { return nil }

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestRetryRecoversFromTransientFailures(t *testing.T) {
	inner := &scriptedClient{failures: 2, err: errors.New("rate limit exceeded")}
	client := NewRetryClient(inner, fastRetryConfig())

	extraction, err := client.ExtractEntities(context.Background(), "text")
	require.NoError(t, err)
	require.Len(t, extraction.Entities, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestRetryGivesUpAfterMaxRetries(t *testing.T) {
	inner := &scriptedClient{failures: 10, err: errors.New("503 service unavailable")}
	client := NewRetryClient(inner, fastRetryConfig())

	_, err := client.ExtractEntities(context.Background(), "text")
	assert.Error(t, err)
	assert.Equal(t, 3, inner.calls) // initial attempt plus two retries
}

func TestRetrySkipsNonRetryableErrors(t *testing.T) {
	inner := &scriptedClient{failures: 10, err: errors.New("failed to parse extraction response")}
	client := NewRetryClient(inner, fastRetryConfig())

	_, err := client.ExtractEntities(context.Background(), "text")
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryHonorsContextDuringBackoff(t *testing.T) {
	inner := &scriptedClient{failures: 10, err: errors.New("timeout")}
	client := NewRetryClient(inner, &RetryConfig{
		MaxRetries:        3,
		InitialDelay:      time.Second,
		MaxDelay:          time.Second,
		BackoffMultiplier: 1.0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.SummarizeCommunities(ctx, "q", nil)
	assert.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("rate limit exceeded"), true},
		{errors.New("429 too many requests"), true},
		{errors.New("request timeout"), true},
		{errors.New("502 bad gateway"), true},
		{errors.New("connection refused"), true},
		{errors.New("invalid json"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, isRetryable(tt.err), "err: %v", tt.err)
	}
}

func TestBreakerOpensAfterRepeatedFailures(t *testing.T) {
	inner := &scriptedClient{failures: 1000, err: errors.New("backend down")}
	client := NewBreakerClient(inner, "test", nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := client.ExtractEntities(ctx, "text")
		assert.Error(t, err)
	}

	// Once open, calls fail fast without reaching the backend.
	callsBefore := inner.calls
	_, err := client.ExtractEntities(ctx, "text")
	assert.Error(t, err)
	assert.Equal(t, callsBefore, inner.calls)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	inner := &scriptedClient{}
	client := NewBreakerClient(inner, "test", nil)

	summary, err := client.SummarizeCommunities(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, "summary", summary)
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, stripFences(tt.in))
	}
}
