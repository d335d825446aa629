package extract

import (
	"sort"

	"github.com/poiesic/contractforge/core"
)

// Extractor is a single stateless span-finder over raw text.
type Extractor func(text string) []core.EntityAnnotation

// allExtractors is the full battery in its fixed canonical order.
var allExtractors = []Extractor{
	ExtractFARClauses,
	ExtractDFARSClauses,
	ExtractContractNumbers,
	ExtractNAICSCodes,
	ExtractPSCCodes,
	ExtractCAGECodes,
	ExtractUEINumbers,
	ExtractDollarAmounts,
	ExtractDates,
	ExtractPOPRanges,
	ExtractSecurityLevels,
	ExtractCLINs,
}

type dedupKey struct {
	entityType core.EntityType
	start, end int
}

// All runs every extractor and returns the merged, deduplicated result:
// sorted by (start offset, entity type), with annotations sharing an exact
// (type, start, end) key collapsed to the first occurrence in sorted order.
// This is the canonical Tier-1 entity list for a document.
func All(text string) []core.EntityAnnotation {
	var pooled []core.EntityAnnotation
	for _, extractor := range allExtractors {
		pooled = append(pooled, extractor(text)...)
	}

	sort.SliceStable(pooled, func(i, j int) bool {
		if pooled[i].StartChar != pooled[j].StartChar {
			return pooled[i].StartChar < pooled[j].StartChar
		}
		return pooled[i].Type < pooled[j].Type
	})

	seen := make(map[dedupKey]bool, len(pooled))
	deduped := pooled[:0]
	for _, ann := range pooled {
		key := dedupKey{ann.Type, ann.StartChar, ann.EndChar}
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, ann)
	}
	return deduped
}
