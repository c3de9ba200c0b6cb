// Package community partitions the concept graph into clusters used by
// global retrieval. The primary strategy is connected components over the
// RELATED_TO adjacency; a categorical fallback buckets concepts by entity
// type when graph-based detection is unavailable. Strategies are tried in
// order and the first non-failing result wins; detection overwrites every
// label, it never accumulates.
package community

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/types"
)

// Strategy assigns a community label to every concept. Implementations
// must be deterministic: the same graph yields the same labeling.
type Strategy interface {
	Name() string
	Detect(concepts []*types.Concept, edges []*types.RelatedEdge) (map[string]string, error)
}

// Detector runs community detection against the graph store.
type Detector struct {
	store      store.GraphStore
	strategies []Strategy
	logger     *slog.Logger
}

// NewDetector creates a Detector with the default strategy chain:
// connected components first, categorical bucketing as the fallback.
func NewDetector(graphStore store.GraphStore, logger *slog.Logger) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Detector{
		store:      graphStore,
		strategies: []Strategy{&ConnectedComponents{}, &Categorical{}},
		logger:     logger,
	}
}

// NewDetectorWithStrategies creates a Detector with an explicit chain.
func NewDetectorWithStrategies(graphStore store.GraphStore, logger *slog.Logger, strategies ...Strategy) *Detector {
	d := NewDetector(graphStore, logger)
	if len(strategies) > 0 {
		d.strategies = strategies
	}
	return d
}

// Detect recomputes community labels for every concept node and returns
// the number of distinct communities. Re-running overwrites all labels.
func (d *Detector) Detect(ctx context.Context) (int, error) {
	concepts, err := d.store.ListConcepts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list concepts: %w", err)
	}
	if len(concepts) == 0 {
		return 0, nil
	}
	edges, err := d.store.ListRelatedEdges(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list related edges: %w", err)
	}

	var labels map[string]string
	for _, strategy := range d.strategies {
		labels, err = strategy.Detect(concepts, edges)
		if err == nil {
			break
		}
		d.logger.Warn("community strategy failed, trying next",
			"strategy", strategy.Name(), "error", err)
		labels = nil
	}
	if labels == nil {
		return 0, fmt.Errorf("all community strategies failed, last error: %w", err)
	}

	distinct := make(map[string]struct{}, len(labels))
	for _, concept := range concepts {
		label := labels[concept.Name]
		if err := d.store.LabelCommunity(ctx, concept.Name, label); err != nil {
			return 0, fmt.Errorf("failed to label %q: %w", concept.Name, err)
		}
		distinct[label] = struct{}{}
	}

	d.logger.Info("community detection complete",
		"concepts", len(concepts), "communities", len(distinct))
	return len(distinct), nil
}

// ConnectedComponents labels each maximal set of concepts transitively
// linked by positive-weight RELATED_TO edges. Components are numbered by
// descending size, breaking ties on the lexically smallest member, so the
// labeling is stable across runs.
type ConnectedComponents struct{}

// Name identifies the strategy in logs.
func (c *ConnectedComponents) Name() string { return "connected-components" }

// Detect runs union-find over the adjacency.
func (c *ConnectedComponents) Detect(concepts []*types.Concept, edges []*types.RelatedEdge) (map[string]string, error) {
	parent := make(map[string]string, len(concepts))
	for _, node := range concepts {
		parent[node.Name] = node.Name
	}

	var find func(string) string
	find = func(name string) string {
		if parent[name] != name {
			parent[name] = find(parent[name])
		}
		return parent[name]
	}
	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}

	for _, edge := range edges {
		if edge.Weight <= 0 {
			continue
		}
		if _, ok := parent[edge.A]; !ok {
			continue
		}
		if _, ok := parent[edge.B]; !ok {
			continue
		}
		union(edge.A, edge.B)
	}

	components := make(map[string][]string)
	for _, node := range concepts {
		root := find(node.Name)
		components[root] = append(components[root], node.Name)
	}

	type group struct {
		smallest string
		members  []string
	}
	groups := make([]group, 0, len(components))
	for _, members := range components {
		sort.Strings(members)
		groups = append(groups, group{smallest: members[0], members: members})
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].members) != len(groups[j].members) {
			return len(groups[i].members) > len(groups[j].members)
		}
		return groups[i].smallest < groups[j].smallest
	})

	labels := make(map[string]string, len(concepts))
	for i, g := range groups {
		label := fmt.Sprintf("community-%d", i+1)
		for _, name := range g.members {
			labels[name] = label
		}
	}
	return labels, nil
}

// Categorical buckets concepts by their entity type tag. It needs no graph
// structure at all, which makes it the fallback for environments where the
// adjacency cannot be read.
type Categorical struct{}

// Name identifies the strategy in logs.
func (c *Categorical) Name() string { return "categorical" }

// Detect maps each type tag to a fixed bucket label.
func (c *Categorical) Detect(concepts []*types.Concept, _ []*types.RelatedEdge) (map[string]string, error) {
	labels := make(map[string]string, len(concepts))
	for _, node := range concepts {
		labels[node.Name] = bucketFor(node.Type)
	}
	return labels, nil
}

func bucketFor(entityType string) string {
	switch entityType {
	case types.EntityPerson:
		return "people"
	case types.EntityOrganization:
		return "organizations"
	case types.EntityLocation:
		return "locations"
	case types.EntityTechnology:
		return "technologies"
	default:
		return "concepts"
	}
}
