package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyName    = errors.New("name cannot be empty")
	ErrEmptyContent = errors.New("content cannot be empty")
	ErrEmptyQuery   = errors.New("query cannot be empty")
)

// SourceKind identifies where a document's content came from.
type SourceKind string

const (
	// FileSource is content read from a local file path.
	FileSource SourceKind = "file"
	// URLSource is content fetched from a network URL.
	URLSource SourceKind = "url"
	// TextSource is content passed in directly as a string.
	TextSource SourceKind = "text"
)

// Entity type tags assigned by the enrichment collaborator. Deterministic
// extraction leaves Type empty; enriched concepts carry one of these or a
// free-form tag.
const (
	EntityPerson       = "PERSON"
	EntityOrganization = "ORGANIZATION"
	EntityConcept      = "CONCEPT"
	EntityTechnology   = "TECHNOLOGY"
	EntityLocation     = "LOCATION"
)

// Document is an ingested source. Documents are immutable after creation
// and are removed only by clearing the whole graph.
type Document struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	SourceKind SourceKind `json:"source_kind"`
	Content    string     `json:"content,omitempty"`
	Size       int        `json:"size"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Validate checks if the Document has all required fields set. Empty
// content is allowed: a degenerate document ingests to zero concepts.
func (d *Document) Validate() error {
	if d.Name == "" {
		return ErrEmptyName
	}
	return nil
}

// Concept is a graph node representing an extracted term or named thing.
// The same type carries both deterministically extracted terms (Name and
// Frequency only) and LLM-extracted entities (Type and Description set);
// retrieval operates only on the common fields.
type Concept struct {
	Name        string    `json:"name"`
	Type        string    `json:"type,omitempty"`
	Description string    `json:"description,omitempty"`
	Frequency   int       `json:"frequency"`
	Community   string    `json:"community,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// ContainsEdge links a document to a concept it mentions, weighted by the
// concept's occurrence count within that document. At most one exists per
// (document, concept) pair.
type ContainsEdge struct {
	DocumentID  string `json:"document_id"`
	ConceptName string `json:"concept_name"`
	Weight      int    `json:"weight"`
}

// RelatedEdge is an undirected co-occurrence edge between two concepts.
// A and B are stored in canonical order (A < B lexically) so that one edge
// exists per unordered pair. Weight only increases.
type RelatedEdge struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Weight int    `json:"weight"`
}

// RelatedKey returns the canonical ordering for an unordered concept pair.
func RelatedKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// DocumentSummary is returned after a single document is ingested.
type DocumentSummary struct {
	DocumentID   string     `json:"document_id"`
	Name         string     `json:"name"`
	ConceptCount int        `json:"concept_count"`
	Size         int        `json:"size"`
	SourceKind   SourceKind `json:"source_kind"`
}

// SourceResult reports the outcome of one source within a batch ingest.
// A failed source does not abort the rest of the batch.
type SourceResult struct {
	Source  string           `json:"source"`
	Ok      bool             `json:"ok"`
	Summary *DocumentSummary `json:"summary,omitempty"`
	Err     string           `json:"error,omitempty"`
}

// IngestResult aggregates per-source outcomes for a batch ingest.
type IngestResult struct {
	Results   []SourceResult `json:"results"`
	Succeeded int            `json:"succeeded"`
	Failed    int            `json:"failed"`
}

// DocumentMatch is a document ranked by aggregate relevance to a set of
// matched concepts (sum of CONTAINS edge weights).
type DocumentMatch struct {
	Document  *Document `json:"document"`
	Relevance int       `json:"relevance"`
}

// CommunitySummary describes one detected community: its label, member
// count, and a handful of example member names.
type CommunitySummary struct {
	Label   string   `json:"label"`
	Size    int      `json:"size"`
	Members []string `json:"members,omitempty"`
}

// QueryMode selects the retrieval strategy.
type QueryMode string

const (
	// AutoMode picks global or local from indicator-word overlap.
	AutoMode QueryMode = "auto"
	// GlobalMode reasons over community-level aggregates.
	GlobalMode QueryMode = "global"
	// LocalMode surfaces specific concepts, documents, and an excerpt.
	LocalMode QueryMode = "local"
)

// Answer is the result of a query: composed answer text plus the concepts
// and documents that support it. A no-match outcome is a valid Answer with
// an explanatory Text, not an error.
type Answer struct {
	Text      string    `json:"text"`
	Mode      QueryMode `json:"mode"`
	Concepts  []string  `json:"concepts,omitempty"`
	Documents []string  `json:"documents,omitempty"`
}

// Extraction is the enrichment collaborator's output: typed entities plus
// explicit relationships between them.
type Extraction struct {
	Entities      []ExtractedEntity       `json:"entities"`
	Relationships []ExtractedRelationship `json:"relationships"`
}

// ExtractedEntity is an entity returned by the enrichment collaborator.
type ExtractedEntity struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// ExtractedRelationship is a relationship returned by the enrichment
// collaborator.
type ExtractedRelationship struct {
	Source      string `json:"source"`
	Target      string `json:"target"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Stats reports graph size counters.
type Stats struct {
	Documents   int   `json:"documents"`
	Concepts    int   `json:"concepts"`
	Relations   int   `json:"relations"`
	CorpusBytes int64 `json:"corpus_bytes"`
}
