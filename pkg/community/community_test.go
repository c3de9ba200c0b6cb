package community

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/store/memory"
	"github.com/soundprediction/docgraph/pkg/types"
)

func seedConcepts(t *testing.T, s store.GraphStore, names ...string) {
	t.Helper()
	ctx := context.Background()
	for _, name := range names {
		_, err := s.UpsertConcept(ctx, name, 1, store.ConceptAttrs{})
		require.NoError(t, err)
	}
}

func TestDetectConnectedComponents(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	// a-b and b-c chain into one component; d stays isolated.
	seedConcepts(t, s, "a", "b", "c", "d")
	require.NoError(t, s.UpsertRelatedEdge(ctx, "a", "b", 1))
	require.NoError(t, s.UpsertRelatedEdge(ctx, "b", "c", 1))

	detector := NewDetector(s, nil)
	count, err := detector.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	concepts, err := s.ListConcepts(ctx)
	require.NoError(t, err)
	labels := make(map[string]string, len(concepts))
	for _, c := range concepts {
		labels[c.Name] = c.Community
	}

	// The three-member component is numbered first.
	assert.Equal(t, "community-1", labels["a"])
	assert.Equal(t, "community-1", labels["b"])
	assert.Equal(t, "community-1", labels["c"])
	assert.Equal(t, "community-2", labels["d"])
}

func TestDetectIsDeterministic(t *testing.T) {
	build := func() store.GraphStore {
		s := memory.New()
		ctx := context.Background()
		seedConcepts(t, s, "w", "x", "y", "z")
		require.NoError(t, s.UpsertRelatedEdge(ctx, "w", "x", 1))
		require.NoError(t, s.UpsertRelatedEdge(ctx, "y", "z", 1))
		return s
	}

	labelsFor := func(s store.GraphStore) map[string]string {
		ctx := context.Background()
		_, err := NewDetector(s, nil).Detect(ctx)
		require.NoError(t, err)
		concepts, err := s.ListConcepts(ctx)
		require.NoError(t, err)
		out := make(map[string]string, len(concepts))
		for _, c := range concepts {
			out[c.Name] = c.Community
		}
		return out
	}

	first := labelsFor(build())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, labelsFor(build()))
	}

	// Equal-sized components break ties on the lexically smallest member.
	assert.Equal(t, "community-1", first["w"])
	assert.Equal(t, "community-2", first["y"])
}

func TestDetectOverwritesPreviousLabels(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	seedConcepts(t, s, "a", "b")
	detector := NewDetector(s, nil)

	count, err := detector.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Linking the two previously isolated concepts collapses them into one
	// community on the next run.
	require.NoError(t, s.UpsertRelatedEdge(ctx, "a", "b", 1))
	count, err = detector.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDetectEmptyGraph(t *testing.T) {
	detector := NewDetector(memory.New(), nil)
	count, err := detector.Detect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

type failingStrategy struct{}

func (f *failingStrategy) Name() string { return "failing" }
func (f *failingStrategy) Detect([]*types.Concept, []*types.RelatedEdge) (map[string]string, error) {
	return nil, errors.New("boom")
}

func TestDetectFallsBackToNextStrategy(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	seedConcepts(t, s, "ada", "acme")
	require.NoError(t, s.LabelCommunity(ctx, "ada", ""))

	detector := NewDetectorWithStrategies(s, nil, &failingStrategy{}, &Categorical{})
	count, err := detector.Detect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count) // both untyped concepts land in the default bucket

	concepts, err := s.ListConcepts(ctx)
	require.NoError(t, err)
	for _, c := range concepts {
		assert.Equal(t, "concepts", c.Community)
	}
}

func TestDetectAllStrategiesFail(t *testing.T) {
	s := memory.New()
	seedConcepts(t, s, "a")

	detector := NewDetectorWithStrategies(s, nil, &failingStrategy{})
	_, err := detector.Detect(context.Background())
	assert.Error(t, err)
}

func TestCategoricalBuckets(t *testing.T) {
	c := &Categorical{}
	concepts := []*types.Concept{
		{Name: "ada", Type: types.EntityPerson},
		{Name: "acme", Type: types.EntityOrganization},
		{Name: "paris", Type: types.EntityLocation},
		{Name: "golang", Type: types.EntityTechnology},
		{Name: "recursion"},
	}

	labels, err := c.Detect(concepts, nil)
	require.NoError(t, err)
	assert.Equal(t, "people", labels["ada"])
	assert.Equal(t, "organizations", labels["acme"])
	assert.Equal(t, "locations", labels["paris"])
	assert.Equal(t, "technologies", labels["golang"])
	assert.Equal(t, "concepts", labels["recursion"])
}
