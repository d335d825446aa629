package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// Multiplier suffixes scale the digit group: $1.2M is 1,200,000.
var multiplierMap = map[byte]float64{
	'k': 1e3, 'K': 1e3,
	'm': 1e6, 'M': 1e6,
	'b': 1e9, 'B': 1e9,
	't': 1e12, 'T': 1e12,
}

var dollarRe = regexp.MustCompile(
	`(?:\$\s*([\d,]+(?:\.\d+)?)\s*([kKmMbBtT](?:illion)?)?\b` +
		`|USD\s+([\d,]+(?:\.\d+)?)\s*([kKmMbBtT](?:illion)?)?\b)`)

// ExtractDollarAmounts finds monetary amounts with a $ or USD prefix.
// The normalized numeric value is stored in metadata alongside the raw text.
func ExtractDollarAmounts(text string) []core.EntityAnnotation {
	var results []core.EntityAnnotation
	for _, m := range dollarRe.FindAllStringSubmatchIndex(text, -1) {
		digitsIdx, suffixIdx := 2, 4
		if m[digitsIdx] < 0 {
			digitsIdx, suffixIdx = 6, 8
		}
		if m[digitsIdx] < 0 {
			continue
		}
		rawDigits := text[m[digitsIdx]:m[digitsIdx+1]]

		var suffix string
		if m[suffixIdx] >= 0 {
			suffix = text[m[suffixIdx]:m[suffixIdx+1]]
		}

		normalized, ok := normalizeDollar(rawDigits, suffix)
		if !ok {
			continue
		}

		full := strings.TrimSpace(text[m[0]:m[1]])
		results = append(results, core.EntityAnnotation{
			Type:       core.EntityDollarAmount,
			Value:      full,
			StartChar:  m[0],
			EndChar:    m[0] + len(full),
			Confidence: 1.0,
			Metadata: map[string]any{
				"normalized_value": normalized,
				"raw_text":         full,
			},
		})
	}
	return results
}

// normalizeDollar converts raw matched digits plus an optional multiplier
// suffix to a numeric value. Returns false for a non-numeric core.
func normalizeDollar(rawDigits, suffix string) (float64, bool) {
	cleaned := strings.ReplaceAll(rawDigits, ",", "")
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if suffix != "" {
		if mult, ok := multiplierMap[suffix[0]]; ok {
			value *= mult
		}
	}
	return value, true
}
