// Package nlp holds the optional enrichment collaborator: an LLM client
// that extracts typed entities and relationships from text and phrases
// global answers from community summaries. Every client here is fallible
// by contract; ingestion and retrieval treat any error as a signal to fall
// back to their deterministic paths, never as a hard failure.
package nlp
