package store

import (
	"context"
	"errors"

	"github.com/soundprediction/docgraph/pkg/types"
)

var (
	// ErrUnavailable is returned when the backing store cannot be reached.
	ErrUnavailable = errors.New("graph store unavailable")
	// ErrNotFound is returned when a requested node does not exist.
	ErrNotFound = errors.New("not found")
)

// ConceptAttrs carries the optional attributes applied when a concept node
// is first created. Later upserts of the same name never overwrite a
// non-empty type or description with an empty one.
type ConceptAttrs struct {
	Type        string
	Description string
}

// GraphStore is the repository interface the ingestion and retrieval
// engines depend on. Implementations must make UpsertConcept and
// UpsertRelatedEdge atomic per key: two concurrent ingestions touching the
// same concept must not lose increments. ClearAll must be mutually
// exclusive with in-flight reads and writes.
type GraphStore interface {
	// CreateDocument stores a new document node.
	CreateDocument(ctx context.Context, doc *types.Document) error

	// UpsertConcept merges a concept by canonical name, incrementing its
	// frequency by deltaFrequency, and returns the merged node. Attributes
	// apply only on first creation.
	UpsertConcept(ctx context.Context, name string, deltaFrequency int, attrs ConceptAttrs) (*types.Concept, error)

	// CreateContainsEdge links a document to a concept with the concept's
	// local occurrence count as weight. At most one edge exists per pair.
	CreateContainsEdge(ctx context.Context, docID, conceptName string, weight int) error

	// UpsertRelatedEdge merges the undirected co-occurrence edge between
	// two concepts, increasing its weight by deltaWeight.
	UpsertRelatedEdge(ctx context.Context, nameA, nameB string, deltaWeight int) error

	// ClearAll removes every document, concept, and edge.
	ClearAll(ctx context.Context) error

	// FindConceptsBySubstring returns concepts whose name or description
	// contains any term as a case-insensitive substring, ranked by
	// frequency descending, capped at limit.
	FindConceptsBySubstring(ctx context.Context, terms []string, limit int) ([]*types.Concept, error)

	// FindConceptsByIndex is the legacy fallback lookup: a substring match
	// against the simple name-word index only, same ranking and cap.
	FindConceptsByIndex(ctx context.Context, terms []string, limit int) ([]*types.Concept, error)

	// FindDocumentsByConcepts returns documents linked to any of the named
	// concepts via CONTAINS, ranked by the sum of edge weights to the
	// matched concepts, capped at limit.
	FindDocumentsByConcepts(ctx context.Context, names []string, limit int) ([]*types.DocumentMatch, error)

	// LabelCommunity overwrites a concept's community label.
	LabelCommunity(ctx context.Context, conceptName, label string) error

	// ListCommunities returns community summaries ranked by size
	// descending, capped at limit.
	ListCommunities(ctx context.Context, limit int) ([]*types.CommunitySummary, error)

	// ListConcepts returns every concept node.
	ListConcepts(ctx context.Context) ([]*types.Concept, error)

	// ListRelatedEdges returns every RELATED_TO edge.
	ListRelatedEdges(ctx context.Context) ([]*types.RelatedEdge, error)

	// Stats returns node, edge, and corpus-size counters.
	Stats(ctx context.Context) (*types.Stats, error)

	// Close releases driver resources.
	Close(ctx context.Context) error
}
