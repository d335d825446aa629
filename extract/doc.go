// Package extract provides deterministic, rule-based entity extraction for
// federal contract documents.
//
// Twelve stateless extractors cover FAR/DFARS clause citations, contract
// numbers, NAICS/PSC/CAGE codes, UEI numbers, dollar amounts, dates,
// period-of-performance ranges, security markings, and CLINs. Each extractor
// is a pure function from text to annotations: pattern mismatch is not an
// error, and malformed dates or amounts are rejected silently at the point
// of validation.
//
// All returns the canonical merged output: every extractor's results pooled,
// sorted by (start offset, entity type), with exact duplicates removed.
// Annotations produced here carry confidence 1.0; a deterministic pattern
// match is the highest-trust tier in the system.
//
// Offsets are byte offsets into the UTF-8 input, half-open.
package extract
