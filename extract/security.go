package extract

import (
	"regexp"

	"github.com/poiesic/contractforge/core"
)

// Security markings in priority order: a later, less-specific match is
// suppressed when its span overlaps an already-accepted one, so the SECRET
// inside TOP SECRET never surfaces on its own.
var securityPatterns = []struct {
	level string
	re    *regexp.Regexp
}{
	{"TS/SCI", regexp.MustCompile(`\bTS/SCI\b`)},
	{"TOP_SECRET", regexp.MustCompile(`(?i)\bTOP\s+SECRET\b`)},
	{"SECRET", regexp.MustCompile(`(?i)\bSECRET\b`)},
	{"CUI", regexp.MustCompile(`(?i)\bCUI\b|\bControlled\s+Unclassified\s+Information\b`)},
	{"FOUO", regexp.MustCompile(`(?i)\bFOUO\b|\bFor\s+Official\s+Use\s+Only\b`)},
	{"UNCLASSIFIED", regexp.MustCompile(`(?i)\bUNCLASSIFIED\b`)},
}

// Words that rule out "SECRET" as a classification marking when they follow
// it directly ("secret service", "secret key", ...).
var secretExclusionRe = regexp.MustCompile(`(?i)^\s+(?:service|sauce|key|weapon)`)

// ExtractSecurityLevels finds classification markings. The annotation value
// is the canonical level name; the raw matched text is kept in metadata.
func ExtractSecurityLevels(text string) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	var seen []core.Span
	for _, p := range securityPatterns {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			if p.level == "SECRET" && secretExclusionRe.MatchString(text[m[1]:]) {
				continue
			}
			span := core.Span{Start: m[0], End: m[1]}
			overlaps := false
			for _, s := range seen {
				if span.Overlaps(s) {
					overlaps = true
					break
				}
			}
			if overlaps {
				continue
			}
			seen = append(seen, span)
			results = append(results, core.EntityAnnotation{
				Type:       core.EntitySecurityLevel,
				Value:      p.level,
				StartChar:  m[0],
				EndChar:    m[1],
				Confidence: 1.0,
				Metadata:   map[string]any{"raw_text": text[m[0]:m[1]]},
			})
		}
	}
	return results
}
