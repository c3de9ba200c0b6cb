// Package types defines the shared data model for the docgraph knowledge
// graph: documents, concepts, the two edge kinds (CONTAINS and RELATED_TO),
// community summaries, and the result shapes returned by ingestion and
// retrieval.
//
// A concept with a given canonical name is a single node shared across all
// documents; its Frequency is the sum of per-document occurrence counts
// since creation and never decreases.
package types
