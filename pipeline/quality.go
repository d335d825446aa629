package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/contractforge/core"
)

// lowConfidenceThreshold flags model predictions below this confidence.
// Zero-confidence entities are excluded: the model reports no confidence
// at all, which is not the same signal as a low one.
const lowConfidenceThreshold = 0.6

// emptyChunkRatioLimit is the fraction of entity-free chunks above which a
// document is flagged for review.
const emptyChunkRatioLimit = 0.5

// CheckQuality inspects extraction output and flags issues for human
// review. It is a pure function of its inputs; rules are evaluated
// independently and appended in a fixed order, so issue codes appear in a
// stable sequence.
func CheckQuality(metadata core.ContractMetadata, entities []core.EntityAnnotation, chunkCount int, chunkEntityCounts []int) *core.QualityReport {
	report := &core.QualityReport{
		EntityCount: len(entities),
		ChunkCount:  chunkCount,
	}

	if metadata.ContractNumber == "" {
		addIssue(report, core.SeverityError, "MISSING_CONTRACT_NUMBER",
			"No contract number was extracted from the document.", nil)
		flagForReview(report, "Missing contract number")
	}

	if metadata.CeilingValue == "" {
		addIssue(report, core.SeverityWarning, "MISSING_CEILING_VALUE",
			"No ceiling value was extracted from the document.", nil)
	}

	if metadata.PopStart == "" || metadata.PopEnd == "" {
		var missing []string
		if metadata.PopStart == "" {
			missing = append(missing, "start date")
		}
		if metadata.PopEnd == "" {
			missing = append(missing, "end date")
		}
		addIssue(report, core.SeverityWarning, "MISSING_POP_DATES",
			fmt.Sprintf("Missing period of performance %s.", strings.Join(missing, ", ")),
			map[string]any{"missing_fields": missing})
	}

	checkLowConfidence(entities, report)
	checkConflicts(entities, report)

	if chunkEntityCounts != nil && chunkCount > 0 {
		emptyChunks := 0
		for _, n := range chunkEntityCounts {
			if n == 0 {
				emptyChunks++
			}
		}
		if emptyChunks > 0 && float64(emptyChunks)/float64(chunkCount) > emptyChunkRatioLimit {
			addIssue(report, core.SeverityWarning, "MANY_EMPTY_CHUNKS",
				fmt.Sprintf("%d/%d chunks have no entities. Possible OCR or text extraction issue.",
					emptyChunks, chunkCount),
				map[string]any{"empty_chunks": emptyChunks, "total_chunks": chunkCount})
			flagForReview(report, "Many chunks without entities, possible extraction issue")
		}
	}

	if len(entities) == 0 {
		addIssue(report, core.SeverityError, "NO_ENTITIES_EXTRACTED",
			"No entities were extracted from the document.", nil)
		flagForReview(report, "Zero entities extracted")
	}

	return report
}

// checkLowConfidence flags entities with confidence in (0, 0.6).
func checkLowConfidence(entities []core.EntityAnnotation, report *core.QualityReport) {
	var lowConf []core.EntityAnnotation
	for _, e := range entities {
		if e.Confidence > 0 && e.Confidence < lowConfidenceThreshold {
			lowConf = append(lowConf, e)
		}
	}
	if len(lowConf) == 0 {
		return
	}

	// Cap examples at 5 for brevity
	examples := make([]map[string]any, 0, 5)
	for _, e := range lowConf {
		if len(examples) == 5 {
			break
		}
		examples = append(examples, map[string]any{
			"type":       string(e.Type),
			"value":      e.Value,
			"confidence": e.Confidence,
		})
	}
	addIssue(report, core.SeverityWarning, "LOW_CONFIDENCE_ENTITIES",
		fmt.Sprintf("%d entities have confidence below %v.", len(lowConf), lowConfidenceThreshold),
		map[string]any{"count": len(lowConf), "entities": examples})
}

// checkConflicts flags documents naming more than one distinct contract
// number or security level.
func checkConflicts(entities []core.EntityAnnotation, report *core.QualityReport) {
	contractNums := distinctValues(entities, core.EntityContractNumber)
	if len(contractNums) > 1 {
		addIssue(report, core.SeverityError, "CONFLICTING_CONTRACT_NUMBERS",
			fmt.Sprintf("Multiple different contract numbers found: %s.", strings.Join(contractNums, ", ")),
			map[string]any{"contract_numbers": contractNums})
		flagForReview(report, "Conflicting contract numbers")
	}

	secLevels := distinctValues(entities, core.EntitySecurityLevel)
	if len(secLevels) > 1 {
		addIssue(report, core.SeverityWarning, "CONFLICTING_SECURITY_LEVELS",
			fmt.Sprintf("Multiple security levels found: %s.", strings.Join(secLevels, ", ")),
			map[string]any{"security_levels": secLevels})
	}
}

// distinctValues returns the sorted distinct values of one entity type.
func distinctValues(entities []core.EntityAnnotation, entityType core.EntityType) []string {
	seen := make(map[string]bool)
	var values []string
	for _, e := range entities {
		if e.Type == entityType && !seen[e.Value] {
			seen[e.Value] = true
			values = append(values, e.Value)
		}
	}
	sort.Strings(values)
	return values
}

func addIssue(report *core.QualityReport, severity core.IssueSeverity, code, message string, details map[string]any) {
	report.Issues = append(report.Issues, core.QualityIssue{
		Severity: severity,
		Code:     code,
		Message:  message,
		Details:  details,
	})
}

func flagForReview(report *core.QualityReport, reason string) {
	report.NeedsHumanReview = true
	report.ReviewReasons = append(report.ReviewReasons, reason)
}
