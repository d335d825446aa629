package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/poiesic/contractforge/ai"
	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/extract"
)

// CombinedExtractor merges the deterministic pattern battery (Tier-1,
// confidence 1.0) with statistical model predictions (Tier-2, confidence
// 0.0). Rule-based spans win every conflict; the model only fills in
// entities the patterns cannot detect, such as CONTRACTING_OFFICER and
// SCOPE_DESCRIPTION.
type CombinedExtractor struct {
	model  ai.EntityModel
	logger *slog.Logger
}

// NewCombinedExtractor creates an extractor backed by the given model.
// A nil model runs Tier-1 only.
func NewCombinedExtractor(model ai.EntityModel) *CombinedExtractor {
	return &CombinedExtractor{
		model:  model,
		logger: slog.Default().With("component", "combined-extractor"),
	}
}

// Extract runs both tiers over text and merges the results. When the model
// backend is unavailable the document degrades to Tier-1 output instead of
// failing; any other model error aborts the extraction.
func (e *CombinedExtractor) Extract(ctx context.Context, text string) ([]core.EntityAnnotation, error) {
	tier1 := extract.All(text)

	if e.model == nil {
		return tier1, nil
	}

	tier2, err := e.model.ExtractEntities(ctx, text)
	if err != nil {
		if errors.Is(err, ai.ErrModelUnavailable) {
			e.logger.Warn("entity model unavailable, using pattern extraction only", "err", err)
			return tier1, nil
		}
		return nil, err
	}

	return MergeTiers(tier1, tier2), nil
}

type spanKey struct {
	entityType core.EntityType
	start, end int
}

// MergeTiers merges Tier-1 and Tier-2 annotation lists with Tier-1
// priority. A Tier-2 annotation is discarded when its exact
// (type, start, end) key already exists in Tier-1, or when its span
// overlaps any Tier-1 span regardless of entity type. The result is sorted
// by (start offset, entity type).
func MergeTiers(tier1, tier2 []core.EntityAnnotation) []core.EntityAnnotation {
	merged := make([]core.EntityAnnotation, len(tier1), len(tier1)+len(tier2))
	copy(merged, tier1)

	seen := make(map[spanKey]bool, len(tier1))
	for _, ann := range tier1 {
		seen[spanKey{ann.Type, ann.StartChar, ann.EndChar}] = true
	}

	for _, ann := range tier2 {
		key := spanKey{ann.Type, ann.StartChar, ann.EndChar}
		if seen[key] {
			continue
		}
		if overlapsAny(ann.Span(), tier1) {
			continue
		}
		seen[key] = true
		merged = append(merged, ann)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].StartChar != merged[j].StartChar {
			return merged[i].StartChar < merged[j].StartChar
		}
		return merged[i].Type < merged[j].Type
	})
	return merged
}

func overlapsAny(span core.Span, annotations []core.EntityAnnotation) bool {
	for _, ann := range annotations {
		if span.Overlaps(ann.Span()) {
			return true
		}
	}
	return false
}
