package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// Context keywords deciding which record field a dollar amount or date
// belongs to.
var (
	ceilingKeywordsRe  = regexp.MustCompile(`(?i)ceil|total\s+(?:contract\s+)?value|maximum|not[- ]to[- ]exceed|NTE|estimated\s+cost`)
	fundedKeywordsRe   = regexp.MustCompile(`(?i)fund(?:ed|ing)|obligat|current(?:ly)?\s+fund|allot`)
	popStartKeywordsRe = regexp.MustCompile(`(?i)period\s+of\s+performance|effective\s+date|start(?:ing)?\s+date|commence|begin`)
	popEndKeywordsRe   = regexp.MustCompile(`(?i)end(?:ing)?\s+date|expir|through|completion|terminat`)
)

// contextWindow is the number of characters before and after an entity
// inspected for keyword disambiguation.
const contextWindow = 100

// MapEntities projects a merged entity list onto the fixed contract record.
//
// Scalar fields take the first qualifying entity in list order; the clause
// lists accumulate every occurrence. Dollar amounts and standalone dates
// are disambiguated by the keywords found in a +-100 character window
// around their span. POP_RANGE entities fill the performance dates first;
// standalone dates only fill what ranges left empty.
func MapEntities(text string, entities []core.EntityAnnotation) core.ContractMetadata {
	var meta core.ContractMetadata

	var dollarEntities, dateEntities []core.EntityAnnotation

	for _, ent := range entities {
		switch ent.Type {
		case core.EntityContractNumber:
			if meta.ContractNumber == "" {
				meta.ContractNumber = ent.Value
			}
		case core.EntityNAICSCode:
			if meta.NAICSCode == "" {
				meta.NAICSCode = ent.Value
			}
		case core.EntityPSCCode:
			if meta.PSCCode == "" {
				meta.PSCCode = ent.Value
			}
		case core.EntityCAGECode:
			if meta.CAGECode == "" {
				meta.CAGECode = ent.Value
			}
		case core.EntityUEINumber:
			if meta.UEINumber == "" {
				meta.UEINumber = ent.Value
			}
		case core.EntitySecurityLevel:
			if meta.SecurityLevel == "" {
				meta.SecurityLevel = strings.ReplaceAll(strings.ToUpper(ent.Value), " ", "_")
			}
		case core.EntityFARClause:
			meta.FARClauses = append(meta.FARClauses, ent.Value)
		case core.EntityDFARSClause:
			meta.DFARSClauses = append(meta.DFARSClauses, ent.Value)
		case core.EntityContractingOfficer:
			if meta.ContractingOfficerName == "" {
				meta.ContractingOfficerName = ent.Value
			}
		case core.EntityDollarAmount:
			dollarEntities = append(dollarEntities, ent)
		case core.EntityDate:
			dateEntities = append(dateEntities, ent)
		case core.EntityPOPRange:
			// Range entities carry normalized dates in metadata
			if start, ok := ent.Metadata["start_date"].(string); ok && start != "" && meta.PopStart == "" {
				meta.PopStart = start
			}
			if end, ok := ent.Metadata["end_date"].(string); ok && end != "" && meta.PopEnd == "" {
				meta.PopEnd = end
			}
		}
	}

	// Disambiguate dollar amounts using context
	for _, ent := range dollarEntities {
		ctx := entityContext(text, ent)
		switch {
		case meta.CeilingValue == "" && ceilingKeywordsRe.MatchString(ctx):
			meta.CeilingValue = normalizedAmount(ent)
		case meta.FundedValue == "" && fundedKeywordsRe.MatchString(ctx):
			meta.FundedValue = normalizedAmount(ent)
		case meta.CeilingValue == "":
			// First amount without clear context defaults to ceiling
			meta.CeilingValue = normalizedAmount(ent)
		}
	}

	// Disambiguate standalone dates, only filling what ranges left empty
	for _, ent := range dateEntities {
		ctx := entityContext(text, ent)
		iso := ent.Value
		if v, ok := ent.Metadata["iso_date"].(string); ok && v != "" {
			iso = v
		}
		switch {
		case meta.PopStart == "" && popStartKeywordsRe.MatchString(ctx):
			meta.PopStart = iso
		case meta.PopEnd == "" && popEndKeywordsRe.MatchString(ctx):
			meta.PopEnd = iso
		}
	}

	return meta
}

// entityContext returns the lowercased text window surrounding an entity.
func entityContext(text string, ent core.EntityAnnotation) string {
	start := max(0, ent.StartChar-contextWindow)
	end := min(len(text), ent.EndChar+contextWindow)
	return strings.ToLower(text[start:end])
}

// normalizedAmount returns the entity's normalized dollar value when the
// extractor attached one, otherwise the raw matched text.
func normalizedAmount(ent core.EntityAnnotation) string {
	if v, ok := ent.Metadata["normalized_value"].(float64); ok {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ent.Value
}
