package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContent(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := IDFromContent("W911NF-22-C-0012")
		b := IDFromContent("W911NF-22-C-0012")
		assert.Equal(t, a, b)
	})

	t.Run("different content produces different IDs", func(t *testing.T) {
		a := IDFromContent("W911NF-22-C-0012")
		b := IDFromContent("W911NF-22-C-0013")
		assert.NotEqual(t, a, b)
	})

	t.Run("empty content still hashes", func(t *testing.T) {
		assert.NotZero(t, IDFromContent(""))
	})
}

func TestSectionForLetter(t *testing.T) {
	tests := []struct {
		letter   byte
		expected SectionType
		ok       bool
	}{
		{'A', SectionA, true},
		{'a', SectionA, true},
		{'I', SectionI, true},
		{'M', SectionM, true},
		{'m', SectionM, true},
		{'N', "", false},
		{'z', "", false},
		{'1', "", false},
	}

	for _, tt := range tests {
		st, ok := SectionForLetter(tt.letter)
		assert.Equal(t, tt.ok, ok, "letter %q", tt.letter)
		assert.Equal(t, tt.expected, st, "letter %q", tt.letter)
	}
}

func TestSpan(t *testing.T) {
	t.Run("overlapping intervals", func(t *testing.T) {
		assert.True(t, Span{0, 10}.Overlaps(Span{5, 15}))
		assert.True(t, Span{5, 15}.Overlaps(Span{0, 10}))
		assert.True(t, Span{0, 10}.Overlaps(Span{2, 4}))
	})

	t.Run("adjacent intervals do not overlap", func(t *testing.T) {
		assert.False(t, Span{0, 10}.Overlaps(Span{10, 20}))
		assert.False(t, Span{10, 20}.Overlaps(Span{0, 10}))
	})

	t.Run("contains is half-open", func(t *testing.T) {
		s := Span{5, 10}
		assert.True(t, s.Contains(5))
		assert.True(t, s.Contains(9))
		assert.False(t, s.Contains(10))
		assert.False(t, s.Contains(4))
	})

	t.Run("len", func(t *testing.T) {
		assert.Equal(t, 5, Span{5, 10}.Len())
	})
}

func TestAnnotationSpan(t *testing.T) {
	ann := EntityAnnotation{Type: EntityDate, Value: "2026-01-01", StartChar: 3, EndChar: 13}
	assert.Equal(t, Span{Start: 3, End: 13}, ann.Span())
}

func TestQualityReportCounts(t *testing.T) {
	report := &QualityReport{
		Issues: []QualityIssue{
			{Severity: SeverityError, Code: "MISSING_CONTRACT_NUMBER"},
			{Severity: SeverityWarning, Code: "MISSING_CEILING_VALUE"},
			{Severity: SeverityWarning, Code: "MISSING_POP_DATES"},
		},
	}
	assert.Equal(t, 1, report.ErrorCount())
	assert.Equal(t, 2, report.WarningCount())
}

func TestChunkWordCount(t *testing.T) {
	t.Run("reads metadata", func(t *testing.T) {
		chunk := DocumentChunk{Metadata: map[string]any{"word_count": 42}}
		assert.Equal(t, 42, chunk.WordCount())
	})

	t.Run("missing metadata is zero", func(t *testing.T) {
		assert.Zero(t, DocumentChunk{}.WordCount())
	})
}

func TestAllEntityTypesComplete(t *testing.T) {
	assert.Len(t, AllEntityTypes, 14)
	seen := make(map[EntityType]bool)
	for _, et := range AllEntityTypes {
		assert.False(t, seen[et], "duplicate entity type %s", et)
		seen[et] = true
	}
}
