package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// Agency-specific contract number shapes, tried in priority order so the
// generic fallback cannot double-count an agency-specific hit.
var contractPatterns = []struct {
	agency string
	re     *regexp.Regexp
}{
	{"Army", regexp.MustCompile(`\bW911[A-Z]{2}-\d{2}-[A-Z]-\d{4}\b`)},
	{"Navy", regexp.MustCompile(`\bN\d{5}-\d{2}-[A-Z]-\d{4}\b`)},
	{"Air Force", regexp.MustCompile(`\bFA\d{4}-\d{2}-[A-Z]-\d{4}\b`)},
	{"GSA", regexp.MustCompile(`\bGS-\d{2}[A-Z]-\d{4}[A-Z]\b`)},
	{"Generic", regexp.MustCompile(`\b[A-Z][A-Z0-9]{5,}-\d{2}-[A-Z]-\d{4}\b`)},
}

// ExtractContractNumbers finds contract numbers in agency-specific formats.
// A later pattern's match is discarded when its span exactly matches or
// overlaps a span already accepted by an earlier pattern.
func ExtractContractNumbers(text string) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	var seen []core.Span
	for _, p := range contractPatterns {
		for _, m := range p.re.FindAllStringIndex(text, -1) {
			span := core.Span{Start: m[0], End: m[1]}
			overlaps := false
			for _, s := range seen {
				if span == s || span.Overlaps(s) {
					overlaps = true
					break
				}
			}
			if overlaps {
				continue
			}
			seen = append(seen, span)
			results = append(results, core.EntityAnnotation{
				Type:       core.EntityContractNumber,
				Value:      text[m[0]:m[1]],
				StartChar:  m[0],
				EndChar:    m[1],
				Confidence: 1.0,
				Metadata:   map[string]any{"agency_format": p.agency},
			})
		}
	}
	return results
}

// NAICS extraction: a bare 6-digit number only counts with a NAICS label
// immediately before it, or with "NAICS" mentioned within the preceding
// 100 characters. Phone numbers and ZIP+4 codes are excluded.
var (
	naicsLabeledRe = regexp.MustCompile(`NAICS(?:\s+[Cc]ode)?[\s:]+(\d{6})`)
	naicsBareRe    = regexp.MustCompile(`\b\d{6}\b`)
	phoneRe        = regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	zipPlus4Re     = regexp.MustCompile(`\d{5}-\d{4}`)
)

// ExtractNAICSCodes finds NAICS industry codes.
func ExtractNAICSCodes(text string) []core.EntityAnnotation {
	type candidate struct {
		span    core.Span
		labeled bool
	}
	var candidates []candidate
	taken := make(map[core.Span]bool)

	for _, m := range naicsLabeledRe.FindAllStringSubmatchIndex(text, -1) {
		span := core.Span{Start: m[2], End: m[3]}
		if taken[span] {
			continue
		}
		taken[span] = true
		candidates = append(candidates, candidate{span: span, labeled: true})
	}
	for _, m := range naicsBareRe.FindAllStringIndex(text, -1) {
		span := core.Span{Start: m[0], End: m[1]}
		if taken[span] {
			continue
		}
		taken[span] = true
		candidates = append(candidates, candidate{span: span, labeled: false})
	}

	phoneSpans := findSpans(phoneRe, text)
	zipSpans := findSpans(zipPlus4Re, text)

	var results []core.EntityAnnotation
	for _, c := range candidates {
		start, end := c.span.Start, c.span.End

		// Part of a longer number
		if start > 0 && isDigit(text[start-1]) {
			continue
		}
		if end < len(text) && isDigit(text[end]) {
			continue
		}
		if anyContains(phoneSpans, start) || anyContains(zipSpans, start) {
			continue
		}

		code := text[start:end]
		if !c.labeled {
			if code[0] < '1' || code[0] > '9' {
				continue
			}
			windowStart := start - 100
			if windowStart < 0 {
				windowStart = 0
			}
			if !strings.Contains(strings.ToUpper(text[windowStart:start]), "NAICS") {
				continue
			}
		}

		results = append(results, core.EntityAnnotation{
			Type:       core.EntityNAICSCode,
			Value:      code,
			StartChar:  start,
			EndChar:    end,
			Confidence: 1.0,
			Metadata:   map[string]any{"labeled": c.labeled},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartChar < results[j].StartChar
	})
	return results
}

var pscRe = regexp.MustCompile(`(?i)(?:PSC\s*(?:Code)?|Product\s+Service\s+Code|Product/Service\s+Code)[\s:]+([A-Z][A-Z0-9]{3})\b`)

// ExtractPSCCodes finds Product Service Codes following a PSC label.
func ExtractPSCCodes(text string) []core.EntityAnnotation {
	return extractLabeledCode(text, pscRe, core.EntityPSCCode)
}

var cageRe = regexp.MustCompile(`(?i)(?:CAGE\s+Code|CAGE\s*:)[\s:]*([A-Z0-9]{5})\b`)

// ExtractCAGECodes finds CAGE codes following a CAGE label.
func ExtractCAGECodes(text string) []core.EntityAnnotation {
	return extractLabeledCode(text, cageRe, core.EntityCAGECode)
}

var ueiRe = regexp.MustCompile(`(?i)(?:UEI|Unique\s+Entity\s+(?:ID|Identifier))[\s:]+([A-Z0-9]{12})\b`)

// ExtractUEINumbers finds Unique Entity Identifiers following a UEI label.
func ExtractUEINumbers(text string) []core.EntityAnnotation {
	return extractLabeledCode(text, ueiRe, core.EntityUEINumber)
}

// extractLabeledCode emits one annotation per match, spanning only the
// captured code (not the label).
func extractLabeledCode(text string, re *regexp.Regexp, entityType core.EntityType) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		results = append(results, core.EntityAnnotation{
			Type:       entityType,
			Value:      text[m[2]:m[3]],
			StartChar:  m[2],
			EndChar:    m[3],
			Confidence: 1.0,
			Metadata:   map[string]any{},
		})
	}
	return results
}

var clinRe = regexp.MustCompile(`(?i)\bCLIN\s+(\d{4}[A-Z]{0,2})\b`)

// ExtractCLINs finds contract line item numbers: the CLIN keyword plus a
// 4-digit code with an optional letter suffix. The span covers the whole
// keyword-plus-code phrase; the value is the code alone.
func ExtractCLINs(text string) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	for _, m := range clinRe.FindAllStringSubmatchIndex(text, -1) {
		results = append(results, core.EntityAnnotation{
			Type:       core.EntityCLIN,
			Value:      text[m[2]:m[3]],
			StartChar:  m[0],
			EndChar:    m[1],
			Confidence: 1.0,
			Metadata:   map[string]any{},
		})
	}
	return results
}

func findSpans(re *regexp.Regexp, text string) []core.Span {
	var spans []core.Span
	for _, m := range re.FindAllStringIndex(text, -1) {
		spans = append(spans, core.Span{Start: m[0], End: m[1]})
	}
	return spans
}

func anyContains(spans []core.Span, pos int) bool {
	for _, s := range spans {
		if s.Contains(pos) {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
