// Package memory provides the in-process GraphStore driver. All state
// lives behind a single RWMutex: merges take the write lock for the whole
// read-modify-write, so concurrent ingestions never lose frequency or
// weight increments, and ClearAll is exclusive with every other operation
// for its duration.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/types"
)

// maxCommunityMembers bounds the example member names per community summary.
const maxCommunityMembers = 5

type pairKey struct {
	a, b string
}

// Store is the in-memory GraphStore implementation.
type Store struct {
	mu        sync.RWMutex
	documents map[string]*types.Document
	concepts  map[string]*types.Concept
	contains  map[string]map[string]int // document ID -> concept name -> weight
	related   map[pairKey]int
	index     map[string][]string // name word -> concept names (legacy simple index)
	corpus    int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		documents: make(map[string]*types.Document),
		concepts:  make(map[string]*types.Concept),
		contains:  make(map[string]map[string]int),
		related:   make(map[pairKey]int),
		index:     make(map[string][]string),
	}
}

// CreateDocument stores a new document node.
func (s *Store) CreateDocument(ctx context.Context, doc *types.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *doc
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	s.documents[stored.ID] = &stored
	s.contains[stored.ID] = make(map[string]int)
	s.corpus += int64(stored.Size)
	return nil
}

// UpsertConcept merges a concept under the write lock; the read, increment,
// and write are a single critical section.
func (s *Store) UpsertConcept(ctx context.Context, name string, deltaFrequency int, attrs store.ConceptAttrs) (*types.Concept, error) {
	if name == "" {
		return nil, types.ErrEmptyName
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.concepts[name]
	if !ok {
		node = &types.Concept{
			Name:        name,
			Type:        attrs.Type,
			Description: attrs.Description,
			CreatedAt:   time.Now().UTC(),
		}
		s.concepts[name] = node
		s.indexConcept(name)
	}
	node.Frequency += deltaFrequency

	out := *node
	return &out, nil
}

// indexConcept records each word of a concept name in the simple index.
// Callers hold the write lock.
func (s *Store) indexConcept(name string) {
	for _, word := range strings.Fields(name) {
		s.index[word] = append(s.index[word], name)
	}
}

// CreateContainsEdge links a document to a concept. Re-linking the same
// pair overwrites the weight rather than creating a second edge.
func (s *Store) CreateContainsEdge(ctx context.Context, docID, conceptName string, weight int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	edges, ok := s.contains[docID]
	if !ok {
		return store.ErrNotFound
	}
	edges[conceptName] = weight
	return nil
}

// UpsertRelatedEdge merges the undirected edge for the pair, increasing its
// weight. Self-edges are ignored.
func (s *Store) UpsertRelatedEdge(ctx context.Context, nameA, nameB string, deltaWeight int) error {
	if nameA == nameB {
		return nil
	}
	a, b := types.RelatedKey(nameA, nameB)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.related[pairKey{a, b}] += deltaWeight
	return nil
}

// ClearAll wipes the graph. It holds the write lock for its whole
// duration, excluding any in-flight ingestion or query.
func (s *Store) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents = make(map[string]*types.Document)
	s.concepts = make(map[string]*types.Concept)
	s.contains = make(map[string]map[string]int)
	s.related = make(map[pairKey]int)
	s.index = make(map[string][]string)
	s.corpus = 0
	return nil
}

// FindConceptsBySubstring matches terms against concept names and
// descriptions, case-insensitively.
func (s *Store) FindConceptsBySubstring(ctx context.Context, terms []string, limit int) ([]*types.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*types.Concept
	for _, node := range s.concepts {
		if conceptMatches(node, terms) {
			out := *node
			matched = append(matched, &out)
		}
	}
	rankConcepts(matched)
	return capConcepts(matched, limit), nil
}

// FindConceptsByIndex is the legacy fallback: substring match against the
// name-word index keys only.
func (s *Store) FindConceptsByIndex(ctx context.Context, terms []string, limit int) ([]*types.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	var matched []*types.Concept
	for word, names := range s.index {
		if !wordMatches(word, terms) {
			continue
		}
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			if node, ok := s.concepts[name]; ok {
				out := *node
				matched = append(matched, &out)
			}
		}
	}
	rankConcepts(matched)
	return capConcepts(matched, limit), nil
}

// FindDocumentsByConcepts aggregates CONTAINS edge weights to the named
// concepts per document and ranks by the sum.
func (s *Store) FindDocumentsByConcepts(ctx context.Context, names []string, limit int) ([]*types.DocumentMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	var matches []*types.DocumentMatch
	for docID, edges := range s.contains {
		relevance := 0
		for conceptName, weight := range edges {
			if _, ok := wanted[conceptName]; ok {
				relevance += weight
			}
		}
		if relevance == 0 {
			continue
		}
		doc, ok := s.documents[docID]
		if !ok {
			continue
		}
		out := *doc
		matches = append(matches, &types.DocumentMatch{Document: &out, Relevance: relevance})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Relevance != matches[j].Relevance {
			return matches[i].Relevance > matches[j].Relevance
		}
		return matches[i].Document.Name < matches[j].Document.Name
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// LabelCommunity overwrites a concept's community label.
func (s *Store) LabelCommunity(ctx context.Context, conceptName, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.concepts[conceptName]
	if !ok {
		return store.ErrNotFound
	}
	node.Community = label
	return nil
}

// ListCommunities groups concepts by label and ranks the groups by size.
func (s *Store) ListCommunities(ctx context.Context, limit int) ([]*types.CommunitySummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make(map[string][]*types.Concept)
	for _, node := range s.concepts {
		if node.Community == "" {
			continue
		}
		groups[node.Community] = append(groups[node.Community], node)
	}

	summaries := make([]*types.CommunitySummary, 0, len(groups))
	for label, members := range groups {
		rankConcepts(members)
		names := make([]string, 0, maxCommunityMembers)
		for _, m := range members {
			if len(names) == maxCommunityMembers {
				break
			}
			names = append(names, m.Name)
		}
		summaries = append(summaries, &types.CommunitySummary{
			Label:   label,
			Size:    len(members),
			Members: names,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Size != summaries[j].Size {
			return summaries[i].Size > summaries[j].Size
		}
		return summaries[i].Label < summaries[j].Label
	})
	if limit > 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// ListConcepts returns a snapshot of every concept node.
func (s *Store) ListConcepts(ctx context.Context) ([]*types.Concept, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*types.Concept, 0, len(s.concepts))
	for _, node := range s.concepts {
		out := *node
		nodes = append(nodes, &out)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes, nil
}

// ListRelatedEdges returns a snapshot of every RELATED_TO edge.
func (s *Store) ListRelatedEdges(ctx context.Context) ([]*types.RelatedEdge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edges := make([]*types.RelatedEdge, 0, len(s.related))
	for key, weight := range s.related {
		edges = append(edges, &types.RelatedEdge{A: key.a, B: key.b, Weight: weight})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges, nil
}

// Stats returns graph counters.
func (s *Store) Stats(ctx context.Context) (*types.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return &types.Stats{
		Documents:   len(s.documents),
		Concepts:    len(s.concepts),
		Relations:   len(s.related),
		CorpusBytes: s.corpus,
	}, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

func conceptMatches(node *types.Concept, terms []string) bool {
	name := strings.ToLower(node.Name)
	desc := strings.ToLower(node.Description)
	for _, term := range terms {
		t := strings.ToLower(term)
		if t == "" {
			continue
		}
		if strings.Contains(name, t) || (desc != "" && strings.Contains(desc, t)) {
			return true
		}
	}
	return false
}

func wordMatches(word string, terms []string) bool {
	for _, term := range terms {
		t := strings.ToLower(term)
		if t != "" && strings.Contains(word, t) {
			return true
		}
	}
	return false
}

func rankConcepts(nodes []*types.Concept) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Frequency != nodes[j].Frequency {
			return nodes[i].Frequency > nodes[j].Frequency
		}
		return nodes[i].Name < nodes[j].Name
	})
}

func capConcepts(nodes []*types.Concept, limit int) []*types.Concept {
	if limit > 0 && len(nodes) > limit {
		return nodes[:limit]
	}
	return nodes
}
