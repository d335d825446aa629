// Package pipeline orchestrates the full ingestion of a federal contract
// document: fetch, text extraction, two-tier entity extraction, chunking,
// embedding, metadata mapping, quality checking, and persistence.
//
// The Pipeline type runs one document at a time through the stages in
// order; batch ingestion fans documents out over a worker pool. A run is
// all-or-nothing: any stage failure aborts the document with nothing
// persisted and a FAILURE audit entry, while a completed run ends with a
// SUCCESS or NEEDS_REVIEW entry depending on the quality verdict.
//
// The other files in this package hold the pure stages the orchestrator
// calls: the tiered merge of rule-based and model entities, the metadata
// mapper, the quality checker, and entity-to-chunk assignment. These are
// side-effect-free functions over their inputs and are safe to invoke
// concurrently across documents.
package pipeline
