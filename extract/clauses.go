package extract

import (
	"regexp"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// Clause citations: base number, optional (Dev) deviation marker, optional
// Alt/Alternate suffix with a roman or arabic numeral.
var (
	farClauseRe   = regexp.MustCompile(`\b(52\.\d{3}-\d{1,4})(?:\s*\(Dev\))?(?:\s+Alt(?:ernate)?\s+([IVX]+|\d+))?`)
	dfarsClauseRe = regexp.MustCompile(`\b(252\.\d{3}-\d{4})(?:\s*\(Dev\))?(?:\s+Alt(?:ernate)?\s+([IVX]+|\d+))?`)
)

// ExtractFARClauses finds FAR clause citations (52.xxx-y).
func ExtractFARClauses(text string) []core.EntityAnnotation {
	return extractClauses(text, farClauseRe, core.EntityFARClause)
}

// ExtractDFARSClauses finds DFARS clause citations (252.xxx-yyyy).
func ExtractDFARSClauses(text string) []core.EntityAnnotation {
	return extractClauses(text, dfarsClauseRe, core.EntityDFARSClause)
}

func extractClauses(text string, re *regexp.Regexp, entityType core.EntityType) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		base := text[m[2]:m[3]]
		full := strings.TrimSpace(text[m[0]:m[1]])

		meta := map[string]any{"clause_base": base}
		if strings.Contains(full, "(Dev)") {
			meta["deviation"] = true
		}
		if m[4] >= 0 {
			meta["alternate"] = text[m[4]:m[5]]
		}

		results = append(results, core.EntityAnnotation{
			Type:       entityType,
			Value:      full,
			StartChar:  m[0],
			EndChar:    m[0] + len(full),
			Confidence: 1.0,
			Metadata:   meta,
		})
	}
	return results
}
