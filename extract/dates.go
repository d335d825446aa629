package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/contractforge/core"
)

var monthMap = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sept": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

// Longer alternatives first so "september" is not cut short at "sep".
const monthNames = `january|february|march|april|may|june|july|august|september|october|november|december` +
	`|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec`

// The four accepted literal date formats, tried in this order.
// First-detected format wins when spans overlap.
var (
	dateDMYRe = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(` + monthNames + `)\s+(\d{4})\b`) // 01 January 2026
	dateMDYRe = regexp.MustCompile(`(?i)\b(` + monthNames + `)\s+(\d{1,2}),?\s+(\d{4})\b`) // January 1, 2026
	dateISORe = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)                          // 2026-01-01
	dateUSRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)                      // 01/01/2026
)

// validDate checks y/m/d against true calendar length, leap years included.
func validDate(year, month, day int) bool {
	if month < 1 || month > 12 || day < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Year() == year && int(t.Month()) == month && t.Day() == day
}

func toISO(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// dateMatch is one candidate from a single format pass.
type dateMatch struct {
	span             core.Span
	year, month, day int
}

func scanDMY(text string) []dateMatch {
	var out []dateMatch
	for _, m := range dateDMYRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, dateMatch{
			span:  core.Span{Start: m[0], End: m[1]},
			day:   atoi(text[m[2]:m[3]]),
			month: monthMap[strings.ToLower(text[m[4]:m[5]])],
			year:  atoi(text[m[6]:m[7]]),
		})
	}
	return out
}

func scanMDY(text string) []dateMatch {
	var out []dateMatch
	for _, m := range dateMDYRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, dateMatch{
			span:  core.Span{Start: m[0], End: m[1]},
			month: monthMap[strings.ToLower(text[m[2]:m[3]])],
			day:   atoi(text[m[4]:m[5]]),
			year:  atoi(text[m[6]:m[7]]),
		})
	}
	return out
}

func scanISO(text string) []dateMatch {
	var out []dateMatch
	for _, m := range dateISORe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, dateMatch{
			span:  core.Span{Start: m[0], End: m[1]},
			year:  atoi(text[m[2]:m[3]]),
			month: atoi(text[m[4]:m[5]]),
			day:   atoi(text[m[6]:m[7]]),
		})
	}
	return out
}

func scanUS(text string) []dateMatch {
	var out []dateMatch
	for _, m := range dateUSRe.FindAllStringSubmatchIndex(text, -1) {
		out = append(out, dateMatch{
			span:  core.Span{Start: m[0], End: m[1]},
			month: atoi(text[m[2]:m[3]]),
			day:   atoi(text[m[4]:m[5]]),
			year:  atoi(text[m[6]:m[7]]),
		})
	}
	return out
}

// ExtractDates finds dates in the four literal formats, validates them
// against the calendar, and normalizes to ISO YYYY-MM-DD in metadata.
func ExtractDates(text string) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	var seen []core.Span

	passes := [][]dateMatch{scanDMY(text), scanMDY(text), scanISO(text), scanUS(text)}
	for _, pass := range passes {
		for _, dm := range pass {
			if !validDate(dm.year, dm.month, dm.day) {
				continue
			}
			if anySpanContains(seen, dm.span.Start) {
				continue
			}
			seen = append(seen, dm.span)
			results = append(results, core.EntityAnnotation{
				Type:       core.EntityDate,
				Value:      text[dm.span.Start:dm.span.End],
				StartChar:  dm.span.Start,
				EndChar:    dm.span.End,
				Confidence: 1.0,
				Metadata:   map[string]any{"iso_date": toISO(dm.year, dm.month, dm.day)},
			})
		}
	}
	return results
}

// Period-of-performance ranges: two date fragments joined by a separator
// word. Any of the four date formats is accepted on either side.
const dateFrag = `(?:\d{1,2}\s+(?:` + monthNames + `)\s+\d{4}` +
	`|(?:` + monthNames + `)\s+\d{1,2},?\s+\d{4}` +
	`|\d{4}-\d{2}-\d{2}` +
	`|\d{1,2}/\d{1,2}/\d{4})`

var (
	popFromRe = regexp.MustCompile(`(?i)\bfrom\s+(` + dateFrag + `)\s+to\s+(` + dateFrag + `)`)
	popRe     = regexp.MustCompile(`(?i)(?:(?:period\s+of\s+performance|POP)[:\s]*)?` +
		`(` + dateFrag + `)\s+(?:through|thru|to|-|–|—)\s+(` + dateFrag + `)`)
)

// Anchored fragment parsers. A fragment must parse as a valid date from its
// first byte or the whole range candidate is discarded.
func parseDateFragment(frag string) (string, bool) {
	frag = strings.TrimSpace(frag)

	if m := dateDMYRe.FindStringSubmatchIndex(frag); m != nil && m[0] == 0 {
		day, month, year := atoi(frag[m[2]:m[3]]), monthMap[strings.ToLower(frag[m[4]:m[5]])], atoi(frag[m[6]:m[7]])
		if validDate(year, month, day) {
			return toISO(year, month, day), true
		}
	}
	if m := dateMDYRe.FindStringSubmatchIndex(frag); m != nil && m[0] == 0 {
		month, day, year := monthMap[strings.ToLower(frag[m[2]:m[3]])], atoi(frag[m[4]:m[5]]), atoi(frag[m[6]:m[7]])
		if validDate(year, month, day) {
			return toISO(year, month, day), true
		}
	}
	if m := dateISORe.FindStringSubmatchIndex(frag); m != nil && m[0] == 0 {
		year, month, day := atoi(frag[m[2]:m[3]]), atoi(frag[m[4]:m[5]]), atoi(frag[m[6]:m[7]])
		if validDate(year, month, day) {
			return toISO(year, month, day), true
		}
	}
	if m := dateUSRe.FindStringSubmatchIndex(frag); m != nil && m[0] == 0 {
		month, day, year := atoi(frag[m[2]:m[3]]), atoi(frag[m[4]:m[5]]), atoi(frag[m[6]:m[7]])
		if validDate(year, month, day) {
			return toISO(year, month, day), true
		}
	}
	return "", false
}

// ExtractPOPRanges finds period-of-performance date ranges. When candidate
// spans overlap, the longest span wins, ties broken by earliest start.
func ExtractPOPRanges(text string) []core.EntityAnnotation {
	type rangeCandidate struct {
		span             core.Span
		value            string
		startISO, endISO string
	}
	var candidates []rangeCandidate

	for _, re := range []*regexp.Regexp{popFromRe, popRe} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			startISO, ok := parseDateFragment(text[m[2]:m[3]])
			if !ok {
				continue
			}
			endISO, ok := parseDateFragment(text[m[4]:m[5]])
			if !ok {
				continue
			}
			candidates = append(candidates, rangeCandidate{
				span:     core.Span{Start: m[0], End: m[1]},
				value:    strings.TrimSpace(text[m[0]:m[1]]),
				startISO: startISO,
				endISO:   endISO,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if li, lj := candidates[i].span.Len(), candidates[j].span.Len(); li != lj {
			return li > lj
		}
		return candidates[i].span.Start < candidates[j].span.Start
	})

	var results []core.EntityAnnotation
	var taken []core.Span
	for _, c := range candidates {
		overlaps := false
		for _, s := range taken {
			if c.span.Overlaps(s) {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		taken = append(taken, c.span)
		results = append(results, core.EntityAnnotation{
			Type:       core.EntityPOPRange,
			Value:      c.value,
			StartChar:  c.span.Start,
			EndChar:    c.span.End,
			Confidence: 1.0,
			Metadata: map[string]any{
				"start_date": c.startISO,
				"end_date":   c.endISO,
			},
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].StartChar < results[j].StartChar
	})
	return results
}

func anySpanContains(spans []core.Span, pos int) bool {
	for _, s := range spans {
		if s.Contains(pos) {
			return true
		}
	}
	return false
}
