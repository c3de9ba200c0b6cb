// Package docgraph builds a frequency-weighted concept graph from
// free-form text and answers questions against it.
//
// Documents ingested from files, URLs, or raw strings are reduced to
// Concept nodes linked by two edge kinds: CONTAINS (document to concept,
// weighted by the concept's occurrence count in that document) and
// RELATED_TO (undirected concept co-occurrence, whose weight only grows).
// Community detection partitions the concepts into thematic clusters, and
// queries are answered in one of two modes: local retrieval surfaces
// specific concepts, their source documents, and a supporting excerpt,
// while global retrieval synthesizes an answer from community-level
// aggregates.
//
// The Client is the library facade. It composes a GraphStore backend
// (in-memory or neo4j), the deterministic extractor, and two optional
// collaborators: an enrichment client for LLM-backed entity extraction and
// summarization, and a fetch extractor for resolving file and URL sources.
// Both collaborators degrade gracefully; with neither configured the whole
// pipeline runs deterministically.
package docgraph
