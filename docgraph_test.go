package docgraph

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/docgraph/pkg/fetch"
	"github.com/soundprediction/docgraph/pkg/nlp"
	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/store/memory"
	"github.com/soundprediction/docgraph/pkg/types"
)

func newTestClient(t *testing.T, opts *Options) (*Client, *memory.Store) {
	t.Helper()
	s := memory.New()
	client, err := NewClient(s, opts)
	require.NoError(t, err)
	return client, s
}

func TestNewClientRequiresStore(t *testing.T) {
	_, err := NewClient(nil, nil)
	assert.Error(t, err)
}

func TestIngestTextBuildsGraph(t *testing.T) {
	client, s := newTestClient(t, nil)
	ctx := context.Background()

	summary, err := client.IngestText(ctx, "notes", "alpha beta alpha gamma")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ConceptCount)
	assert.Equal(t, types.TextSource, summary.SourceKind)
	assert.NotEmpty(t, summary.DocumentID)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 2, stats.Concepts)
	assert.Equal(t, 1, stats.Relations)

	// Co-occurrence weight is the smaller of the two local frequencies.
	edges, err := s.ListRelatedEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, "alpha", edges[0].A)
	assert.Equal(t, "gamma", edges[0].B)
	assert.Equal(t, 1, edges[0].Weight)
}

func TestIngestMergesAcrossDocuments(t *testing.T) {
	client, s := newTestClient(t, nil)
	ctx := context.Background()

	content := "alpha beta alpha gamma"
	_, err := client.IngestText(ctx, "first", content)
	require.NoError(t, err)
	_, err = client.IngestText(ctx, "second", content)
	require.NoError(t, err)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Documents)
	assert.Equal(t, 2, stats.Concepts)

	concepts, err := s.FindConceptsBySubstring(ctx, []string{"alpha"}, 1)
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, 4, concepts[0].Frequency)

	// Edge weight only grows.
	edges, err := s.ListRelatedEdges(ctx)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, 2, edges[0].Weight)
}

func TestIngestCorpusCeiling(t *testing.T) {
	client, _ := newTestClient(t, &Options{MaxCorpusBytes: 10})
	ctx := context.Background()

	_, err := client.IngestText(ctx, "big", strings.Repeat("word ", 20))
	assert.ErrorIs(t, err, ErrCorpusLimit)

	// A rejected document leaves the graph untouched.
	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &types.Stats{}, stats)
}

func TestIngestEmptyContent(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	summary, err := client.IngestText(ctx, "empty", "")
	require.NoError(t, err)
	assert.Zero(t, summary.ConceptCount)

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Documents)
	assert.Zero(t, stats.Concepts)
}

func TestIngestEmptyName(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.IngestText(context.Background(), "  ", "content")
	assert.ErrorIs(t, err, types.ErrEmptyName)
}

func TestClear(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	_, err := client.IngestText(ctx, "doc", "alpha beta alpha")
	require.NoError(t, err)
	require.NoError(t, client.Clear(ctx))

	stats, err := client.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &types.Stats{}, stats)
}

func TestChooseMode(t *testing.T) {
	client, _ := newTestClient(t, nil)

	tests := []struct {
		question string
		want     types.QueryMode
	}{
		{"Give me an overview of the major trends", types.GlobalMode},
		{"Who founded the company?", types.LocalMode},
		{"Compare the overall patterns", types.GlobalMode},
		{"What is artificial intelligence?", types.LocalMode},
		{"Summarize the main themes", types.GlobalMode},
		{"Tell me about databases", types.LocalMode},
	}

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			assert.Equal(t, tt.want, client.chooseMode(tt.question))
		})
	}
}

func TestQueryEmptyQuestion(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.Query(context.Background(), "   ", types.AutoMode)
	assert.ErrorIs(t, err, types.ErrEmptyQuery)
}

// spyStore counts search calls so tests can assert a query never reached
// the repository.
type spyStore struct {
	*memory.Store
	searches int
}

func (s *spyStore) FindConceptsBySubstring(ctx context.Context, terms []string, limit int) ([]*types.Concept, error) {
	s.searches++
	return s.Store.FindConceptsBySubstring(ctx, terms, limit)
}

func (s *spyStore) FindConceptsByIndex(ctx context.Context, terms []string, limit int) ([]*types.Concept, error) {
	s.searches++
	return s.Store.FindConceptsByIndex(ctx, terms, limit)
}

func (s *spyStore) FindDocumentsByConcepts(ctx context.Context, names []string, limit int) ([]*types.DocumentMatch, error) {
	s.searches++
	return s.Store.FindDocumentsByConcepts(ctx, names, limit)
}

func TestQueryStopWordsOnlySkipsSearch(t *testing.T) {
	spy := &spyStore{Store: memory.New()}
	client, err := NewClient(spy, nil)
	require.NoError(t, err)

	answer, err := client.Query(context.Background(), "the and of it", types.AutoMode)
	require.NoError(t, err)
	assert.Equal(t, types.LocalMode, answer.Mode)
	assert.Contains(t, answer.Text, "more specific")
	assert.Zero(t, spy.searches)
}

func TestQueryLocalExcerpt(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	_, err := client.IngestText(ctx, "ai-primer",
		"Artificial intelligence enables automated reasoning. It is studied widely.")
	require.NoError(t, err)

	answer, err := client.Query(ctx, "What is artificial intelligence?", types.AutoMode)
	require.NoError(t, err)

	assert.Equal(t, types.LocalMode, answer.Mode)
	assert.Contains(t, answer.Text, "Artificial intelligence enables automated reasoning")
	assert.Contains(t, answer.Text, "ai-primer")
	assert.Contains(t, answer.Concepts, "artificial")
	assert.Contains(t, answer.Concepts, "intelligence")
	assert.Contains(t, answer.Documents, "ai-primer")
}

func TestQueryLocalNoMatches(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	_, err := client.IngestText(ctx, "doc", "alpha beta alpha")
	require.NoError(t, err)

	answer, err := client.Query(ctx, "Tell me about xylophones", types.LocalMode)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "No concepts matching")
	assert.Empty(t, answer.Concepts)
}

func TestQueryGlobalDetectsOnDemand(t *testing.T) {
	client, _ := newTestClient(t, nil)
	ctx := context.Background()

	_, err := client.IngestText(ctx, "first", "quantum physics quantum particles")
	require.NoError(t, err)
	_, err = client.IngestText(ctx, "second", "ancient history ancient empires")
	require.NoError(t, err)

	answer, err := client.Query(ctx, "Give me an overview of the major trends", types.AutoMode)
	require.NoError(t, err)

	assert.Equal(t, types.GlobalMode, answer.Mode)
	assert.Contains(t, answer.Text, "thematic clusters")
	assert.NotEmpty(t, answer.Concepts)
}

func TestQueryGlobalEmptyGraph(t *testing.T) {
	client, _ := newTestClient(t, nil)

	answer, err := client.Query(context.Background(), "Summarize the themes", types.GlobalMode)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "empty")
}

// errStore fails every search operation.
type errStore struct {
	*memory.Store
}

func (s *errStore) FindConceptsBySubstring(context.Context, []string, int) ([]*types.Concept, error) {
	return nil, store.ErrUnavailable
}

func (s *errStore) FindConceptsByIndex(context.Context, []string, int) ([]*types.Concept, error) {
	return nil, store.ErrUnavailable
}

func (s *errStore) ListCommunities(context.Context, int) ([]*types.CommunitySummary, error) {
	return nil, store.ErrUnavailable
}

func TestQueryStorageFailureIsSafe(t *testing.T) {
	client, err := NewClient(&errStore{Store: memory.New()}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, mode := range []types.QueryMode{types.LocalMode, types.GlobalMode} {
		answer, err := client.Query(ctx, "what about databases overall", mode)
		require.NoError(t, err)
		assert.Contains(t, answer.Text, "error occurred while searching")
		assert.Equal(t, mode, answer.Mode)
	}
}

// fakeEnricher scripts enrichment behavior for fallback tests.
type fakeEnricher struct {
	extraction *types.Extraction
	summary    string
	err        error
	calls      int
}

func (f *fakeEnricher) ExtractEntities(context.Context, string) (*types.Extraction, error) {
	f.calls++
	return f.extraction, f.err
}

func (f *fakeEnricher) SummarizeCommunities(context.Context, string, []*types.CommunitySummary) (string, error) {
	f.calls++
	return f.summary, f.err
}

func (f *fakeEnricher) Close() error { return nil }

func TestIngestWithEnrichment(t *testing.T) {
	enricher := &fakeEnricher{
		extraction: &types.Extraction{
			Entities: []types.ExtractedEntity{
				{Name: "ada lovelace", Type: types.EntityPerson},
				{Name: "analytical engine", Type: types.EntityTechnology},
			},
			Relationships: []types.ExtractedRelationship{
				{Source: "ada lovelace", Target: "analytical engine", Type: "WORKED_ON"},
			},
		},
	}
	client, s := newTestClient(t, &Options{Enricher: enricher})
	ctx := context.Background()

	summary, err := client.IngestText(ctx, "bio", "Ada Lovelace designed programs for the analytical engine.")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ConceptCount)
	assert.Equal(t, 1, enricher.calls)

	concepts, err := s.FindConceptsBySubstring(ctx, []string{"ada"}, 5)
	require.NoError(t, err)
	require.Len(t, concepts, 1)
	assert.Equal(t, types.EntityPerson, concepts[0].Type)
}

func TestIngestEnrichmentFailureFallsBack(t *testing.T) {
	enricher := &fakeEnricher{err: errors.New("backend down")}
	client, _ := newTestClient(t, &Options{Enricher: enricher})
	ctx := context.Background()

	summary, err := client.IngestText(ctx, "notes", "alpha beta alpha gamma")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ConceptCount)
	assert.Equal(t, 1, enricher.calls)
}

func TestQueryGlobalWithEnrichment(t *testing.T) {
	enricher := &fakeEnricher{err: nlp.ErrUnavailable}
	client, _ := newTestClient(t, &Options{Enricher: enricher})
	ctx := context.Background()

	// Enrichment fails for both extraction and summarization; everything
	// falls back to the deterministic paths.
	_, err := client.IngestText(ctx, "doc", "quantum physics quantum particles")
	require.NoError(t, err)

	answer, err := client.Query(ctx, "Summarize the overall themes", types.GlobalMode)
	require.NoError(t, err)
	assert.Contains(t, answer.Text, "thematic clusters")
}

func TestIngestSourcesRequiresFetcher(t *testing.T) {
	client, _ := newTestClient(t, nil)

	_, err := client.IngestSources(context.Background(), []string{"file.txt"})
	assert.Error(t, err)
}

func TestIngestSourcesPartialFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("alpha beta alpha gamma"), 0o644))

	fetcher, err := fetch.NewExtractor(&fetch.Options{DisableCache: true}, nil)
	require.NoError(t, err)

	client, _ := newTestClient(t, &Options{Fetcher: fetcher})
	ctx := context.Background()

	result, err := client.IngestSources(ctx, []string{path, filepath.Join(dir, "missing.txt")})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Results, 2)
	assert.True(t, result.Results[0].Ok)
	assert.Equal(t, "doc.txt", result.Results[0].Summary.Name)
	assert.False(t, result.Results[1].Ok)
	assert.NotEmpty(t, result.Results[1].Err)
}
