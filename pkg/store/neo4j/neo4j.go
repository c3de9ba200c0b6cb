// Package neo4j implements the GraphStore interface on a Neo4j database.
// Frequency and weight merges are single Cypher MERGE statements, so the
// read-modify-write happens server-side inside one transaction and two
// concurrent ingestions cannot lose increments.
package neo4j

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/soundprediction/docgraph/pkg/store"
	"github.com/soundprediction/docgraph/pkg/types"
)

// Store is the Neo4j-backed GraphStore implementation.
type Store struct {
	client   neo4j.DriverWithContext
	database string
}

// New creates a Neo4j store. An empty database name selects "neo4j".
func New(uri, username, password, database string) (*Store, error) {
	client, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create neo4j driver: %w", err)
	}
	if database == "" {
		database = "neo4j"
	}
	return &Store{client: client, database: database}, nil
}

func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.client.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// CreateDocument stores a new document node.
func (s *Store) CreateDocument(ctx context.Context, doc *types.Document) error {
	if err := doc.Validate(); err != nil {
		return err
	}
	createdAt := doc.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			CREATE (d:Document {
				id: $id, name: $name, source_kind: $source_kind,
				content: $content, size: $size, created_at: $created_at
			})
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":          doc.ID,
			"name":        doc.Name,
			"source_kind": string(doc.SourceKind),
			"content":     doc.Content,
			"size":        doc.Size,
			"created_at":  createdAt.Format(time.RFC3339),
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// UpsertConcept merges a concept by name. ON CREATE sets the attributes,
// ON MATCH only increments the frequency, all in one statement.
func (s *Store) UpsertConcept(ctx context.Context, name string, deltaFrequency int, attrs store.ConceptAttrs) (*types.Concept, error) {
	if name == "" {
		return nil, types.ErrEmptyName
	}
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (c:Entity {name: $name})
			ON CREATE SET c.frequency = $delta, c.type = $type,
				c.description = $description, c.created_at = $created_at
			ON MATCH SET c.frequency = c.frequency + $delta
			RETURN c.name AS name, c.type AS type, c.description AS description,
				c.frequency AS frequency, c.community AS community
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"name":        name,
			"delta":       deltaFrequency,
			"type":        attrs.Type,
			"description": attrs.Description,
			"created_at":  time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	record, ok := result.(interface{ Get(string) (any, bool) })
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return conceptFromRecord(record), nil
}

// CreateContainsEdge links a document to a concept, overwriting the weight
// if the pair is re-linked so only one edge exists per pair.
func (s *Store) CreateContainsEdge(ctx context.Context, docID, conceptName string, weight int) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (d:Document {id: $doc_id})
			MATCH (c:Entity {name: $name})
			MERGE (d)-[r:CONTAINS]->(c)
			SET r.weight = $weight
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"doc_id": docID,
			"name":   conceptName,
			"weight": weight,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// UpsertRelatedEdge merges the undirected co-occurrence edge. The pair is
// canonically ordered before the MERGE so (a,b) and (b,a) hit one edge.
func (s *Store) UpsertRelatedEdge(ctx context.Context, nameA, nameB string, deltaWeight int) error {
	if nameA == nameB {
		return nil
	}
	a, b := types.RelatedKey(nameA, nameB)

	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (a:Entity {name: $a})
			MATCH (b:Entity {name: $b})
			MERGE (a)-[r:RELATED_TO]-(b)
			ON CREATE SET r.weight = $delta
			ON MATCH SET r.weight = r.weight + $delta
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"a":     a,
			"b":     b,
			"delta": deltaWeight,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// ClearAll removes every docgraph node and edge.
func (s *Store) ClearAll(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (n)
			WHERE n:Document OR n:Entity OR n:Concept
			DETACH DELETE n
		`
		_, err := tx.Run(ctx, query, nil)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// FindConceptsBySubstring matches terms against entity names and
// descriptions.
func (s *Store) FindConceptsBySubstring(ctx context.Context, terms []string, limit int) ([]*types.Concept, error) {
	query := `
		MATCH (c:Entity)
		WHERE any(term IN $terms WHERE
			toLower(c.name) CONTAINS toLower(term) OR
			(c.description IS NOT NULL AND toLower(c.description) CONTAINS toLower(term)))
		RETURN c.name AS name, c.type AS type, c.description AS description,
			c.frequency AS frequency, c.community AS community
		ORDER BY c.frequency DESC, c.name ASC
		LIMIT $limit
	`
	return s.queryConcepts(ctx, query, map[string]any{"terms": terms, "limit": limit})
}

// FindConceptsByIndex matches terms against the legacy :Concept label kept
// for graphs written by earlier schema versions.
func (s *Store) FindConceptsByIndex(ctx context.Context, terms []string, limit int) ([]*types.Concept, error) {
	query := `
		MATCH (c:Concept)
		WHERE any(term IN $terms WHERE toLower(c.name) CONTAINS toLower(term))
		RETURN c.name AS name, c.type AS type, c.description AS description,
			c.frequency AS frequency, c.community AS community
		ORDER BY c.frequency DESC, c.name ASC
		LIMIT $limit
	`
	return s.queryConcepts(ctx, query, map[string]any{"terms": terms, "limit": limit})
}

func (s *Store) queryConcepts(ctx context.Context, query string, params map[string]any) ([]*types.Concept, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	nodes := make([]*types.Concept, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, conceptFromRecord(record))
	}
	return nodes, nil
}

// FindDocumentsByConcepts ranks documents by the sum of CONTAINS weights to
// the matched concepts.
func (s *Store) FindDocumentsByConcepts(ctx context.Context, names []string, limit int) ([]*types.DocumentMatch, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (d:Document)-[r:CONTAINS]->(c:Entity)
			WHERE c.name IN $names
			WITH d, sum(r.weight) AS relevance
			RETURN d.id AS id, d.name AS name, d.source_kind AS source_kind,
				d.content AS content, d.size AS size, relevance
			ORDER BY relevance DESC, d.name ASC
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{"names": names, "limit": limit})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	matches := make([]*types.DocumentMatch, 0, len(records))
	for _, record := range records {
		doc := &types.Document{
			ID:         stringValue(record, "id"),
			Name:       stringValue(record, "name"),
			SourceKind: types.SourceKind(stringValue(record, "source_kind")),
			Content:    stringValue(record, "content"),
			Size:       intValue(record, "size"),
		}
		matches = append(matches, &types.DocumentMatch{
			Document:  doc,
			Relevance: intValue(record, "relevance"),
		})
	}
	return matches, nil
}

// LabelCommunity overwrites a concept's community label.
func (s *Store) LabelCommunity(ctx context.Context, conceptName, label string) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (c:Entity {name: $name})
			SET c.community = $label
		`
		_, err := tx.Run(ctx, query, map[string]any{"name": conceptName, "label": label})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// ListCommunities returns community summaries ranked by member count.
func (s *Store) ListCommunities(ctx context.Context, limit int) ([]*types.CommunitySummary, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (c:Entity)
			WHERE c.community IS NOT NULL AND c.community <> ''
			WITH c.community AS label, count(c) AS size,
				collect(c.name)[0..5] AS members
			RETURN label, size, members
			ORDER BY size DESC, label ASC
			LIMIT $limit
		`
		res, err := tx.Run(ctx, query, map[string]any{"limit": limit})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	summaries := make([]*types.CommunitySummary, 0, len(records))
	for _, record := range records {
		summary := &types.CommunitySummary{
			Label: stringValue(record, "label"),
			Size:  intValue(record, "size"),
		}
		if raw, found := record.Get("members"); found {
			if list, ok := raw.([]any); ok {
				for _, v := range list {
					if name, ok := v.(string); ok {
						summary.Members = append(summary.Members, name)
					}
				}
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// ListConcepts returns every entity node.
func (s *Store) ListConcepts(ctx context.Context) ([]*types.Concept, error) {
	query := `
		MATCH (c:Entity)
		RETURN c.name AS name, c.type AS type, c.description AS description,
			c.frequency AS frequency, c.community AS community
		ORDER BY c.name ASC
	`
	return s.queryConcepts(ctx, query, nil)
}

// ListRelatedEdges returns every RELATED_TO edge, each pair once.
func (s *Store) ListRelatedEdges(ctx context.Context) ([]*types.RelatedEdge, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (a:Entity)-[r:RELATED_TO]-(b:Entity)
			WHERE a.name < b.name
			RETURN a.name AS a, b.name AS b, r.weight AS weight
		`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	records, ok := result.([]*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	edges := make([]*types.RelatedEdge, 0, len(records))
	for _, record := range records {
		edges = append(edges, &types.RelatedEdge{
			A:      stringValue(record, "a"),
			B:      stringValue(record, "b"),
			Weight: intValue(record, "weight"),
		})
	}
	return edges, nil
}

// Stats returns node and edge counters. Corpus bytes are the sum of stored
// document sizes.
func (s *Store) Stats(ctx context.Context) (*types.Stats, error) {
	session := s.session(ctx)
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			OPTIONAL MATCH (d:Document)
			WITH count(d) AS documents, coalesce(sum(d.size), 0) AS corpus_bytes
			OPTIONAL MATCH (c:Entity)
			WITH documents, corpus_bytes, count(c) AS concepts
			OPTIONAL MATCH (:Entity)-[r:RELATED_TO]-(:Entity)
			RETURN documents, concepts, count(DISTINCT r) AS relations, corpus_bytes
		`
		res, err := tx.Run(ctx, query, nil)
		if err != nil {
			return nil, err
		}
		return res.Single(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	record, ok := result.(*neo4j.Record)
	if !ok {
		return nil, fmt.Errorf("unexpected result type %T", result)
	}
	return &types.Stats{
		Documents:   intValue(record, "documents"),
		Concepts:    intValue(record, "concepts"),
		Relations:   intValue(record, "relations"),
		CorpusBytes: int64(intValue(record, "corpus_bytes")),
	}, nil
}

// Close releases the underlying driver.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

func conceptFromRecord(record interface{ Get(string) (any, bool) }) *types.Concept {
	node := &types.Concept{}
	if v, ok := record.Get("name"); ok {
		if s, ok := v.(string); ok {
			node.Name = s
		}
	}
	if v, ok := record.Get("type"); ok {
		if s, ok := v.(string); ok {
			node.Type = s
		}
	}
	if v, ok := record.Get("description"); ok {
		if s, ok := v.(string); ok {
			node.Description = s
		}
	}
	if v, ok := record.Get("frequency"); ok {
		node.Frequency = asInt(v)
	}
	if v, ok := record.Get("community"); ok {
		if s, ok := v.(string); ok {
			node.Community = s
		}
	}
	return node
}

func stringValue(record *neo4j.Record, key string) string {
	if v, found := record.Get(key); found {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func intValue(record *neo4j.Record, key string) int {
	if v, found := record.Get(key); found {
		return asInt(v)
	}
	return 0
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
