// Package extract turns normalized token streams into ranked, deduplicated
// concept candidates. It implements the deterministic extraction path; the
// LLM-backed enrichment collaborator in pkg/nlp can replace it, and
// ingestion falls back here whenever enrichment is absent or fails.
package extract
