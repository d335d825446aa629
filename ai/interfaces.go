package ai

import (
	"context"

	"github.com/poiesic/contractforge/core"
)

// Embedder generates vector embeddings from chunk text for semantic search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in the same order as the
	// input texts. Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// EntityModel produces statistical entity predictions over raw text. It is
// the second extraction tier behind the deterministic pattern battery;
// rule-based spans always win over its output on conflict.
// Implementations must be thread-safe for concurrent use.
type EntityModel interface {
	// ExtractEntities returns model-predicted entity annotations for text,
	// sorted by start offset. Every annotation carries Confidence 0 (the
	// model exposes no per-span confidence) and a metadata "source" tag of
	// "model". Returns an error wrapping ErrModelUnavailable when the model
	// backend cannot be reached, so callers can degrade to pattern-only
	// extraction.
	ExtractEntities(ctx context.Context, text string) ([]core.EntityAnnotation, error)
}

// Provider aggregates AI collaborators for convenient initialization and
// lifecycle management. A provider creates and manages Embedder and
// EntityModel instances, ensuring they share configuration and resources.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// EntityModel returns the statistical entity extraction service.
	EntityModel() EntityModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
