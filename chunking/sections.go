package chunking

import (
	"regexp"
	"sort"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// Header pattern families for UCF sections, ordered by specificity.
// Group 1 captures the section letter, PART roman numeral, or ARTICLE number.
var sectionPatterns = []*regexp.Regexp{
	// "SECTION A", "Section A -", "SECTION A:"
	regexp.MustCompile(`(?im)^[ \t]*SECTION\s+([A-M])\b[\s\-–—:]*`),
	// "B. SUPPLIES OR SERVICES AND PRICES" — letter, dot, all-caps title
	regexp.MustCompile(`(?m)^[ \t]*([A-M])\.\s+[A-Z][A-Z /,()]+`),
	// "PART I", "PART II" — map to a representative section letter
	regexp.MustCompile(`(?im)^[ \t]*PART\s+(I{1,3}V?|IV|V)\b`),
	// "ARTICLE 1" — undifferentiated structure, maps to OTHER
	regexp.MustCompile(`(?im)^[ \t]*ARTICLE\s+(\d+)\b`),
}

// PART roman numerals map to the first section letter in that part.
var partMap = map[string]byte{
	"I":   'A',
	"II":  'B',
	"III": 'H',
	"IV":  'K',
}

var digitsRe = regexp.MustCompile(`^\d+$`)

// DetectSections finds UCF section boundaries in a document.
//
// All matches across all pattern families are pooled, sorted by offset, and
// deduplicated by section type keeping the earliest occurrence. Each
// section runs until the start of the next; the final section extends to
// the end of the text. Returns nil if nothing matched — the caller must
// fall back to treating the whole document as a single section.
func DetectSections(text string) []core.DetectedSection {
	type rawMatch struct {
		sectionType core.SectionType
		start       int
		header      string
	}
	var raw []rawMatch

	for _, pattern := range sectionPatterns {
		for _, m := range pattern.FindAllStringSubmatchIndex(text, -1) {
			captured := strings.ToUpper(text[m[2]:m[3]])

			var sectionType core.SectionType
			if len(captured) == 1 {
				if st, ok := core.SectionForLetter(captured[0]); ok {
					sectionType = st
				}
			}
			if sectionType == "" {
				if letter, ok := partMap[captured]; ok {
					sectionType, _ = core.SectionForLetter(letter)
				} else if digitsRe.MatchString(captured) {
					sectionType = core.SectionOther
				} else {
					continue
				}
			}

			headerEnd := strings.IndexByte(text[m[0]:], '\n')
			if headerEnd == -1 {
				headerEnd = len(text) - m[0]
			}
			raw = append(raw, rawMatch{
				sectionType: sectionType,
				start:       m[0],
				header:      strings.TrimSpace(text[m[0] : m[0]+headerEnd]),
			})
		}
	}

	if len(raw) == 0 {
		return nil
	}

	// Earliest occurrence of each section type wins; later duplicates are
	// dropped entirely, not merged.
	sort.SliceStable(raw, func(i, j int) bool { return raw[i].start < raw[j].start })
	seenTypes := make(map[core.SectionType]bool)
	deduped := raw[:0]
	for _, rm := range raw {
		if seenTypes[rm.sectionType] {
			continue
		}
		seenTypes[rm.sectionType] = true
		deduped = append(deduped, rm)
	}

	sections := make([]core.DetectedSection, len(deduped))
	for i, rm := range deduped {
		end := len(text)
		if i+1 < len(deduped) {
			end = deduped[i+1].start
		}
		sections[i] = core.DetectedSection{
			Type:       rm.sectionType,
			StartChar:  rm.start,
			EndChar:    end,
			HeaderText: rm.header,
		}
	}
	return sections
}
