package extract

import (
	"testing"

	"github.com/poiesic/contractforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDates(t *testing.T) {
	t.Run("all four literal formats", func(t *testing.T) {
		tests := []struct {
			text string
			iso  string
		}{
			{"Delivery due 15 January 2026 at the latest.", "2026-01-15"},
			{"Awarded on March 3, 2025 by the agency.", "2025-03-03"},
			{"Effective 2025-10-01 per modification.", "2025-10-01"},
			{"Signed 10/15/2025 by both parties.", "2025-10-15"},
		}
		for _, tt := range tests {
			results := ExtractDates(tt.text)
			require.Len(t, results, 1, tt.text)
			assert.Equal(t, core.EntityDate, results[0].Type)
			assert.Equal(t, tt.iso, results[0].Metadata["iso_date"], tt.text)
		}
	})

	t.Run("invalid calendar dates rejected", func(t *testing.T) {
		assert.Empty(t, ExtractDates("Due 31 February 2026 per schedule."))
		assert.Empty(t, ExtractDates("Signed 13/45/2025 by both parties."))
	})

	t.Run("leap year handling", func(t *testing.T) {
		assert.Len(t, ExtractDates("Due 29 February 2024."), 1)
		assert.Empty(t, ExtractDates("Due 29 February 2025."))
	})

	t.Run("one annotation per date", func(t *testing.T) {
		results := ExtractDates("Starting 1 January 2026 at noon.")
		require.Len(t, results, 1)
		assert.Equal(t, "1 January 2026", results[0].Value)
		assert.Equal(t, "2026-01-01", results[0].Metadata["iso_date"])
	})
}

func TestExtractPOPRanges(t *testing.T) {
	t.Run("from-to range", func(t *testing.T) {
		text := "Performance runs from 1 October 2025 to 30 September 2026 inclusive."
		results := ExtractPOPRanges(text)
		require.Len(t, results, 1)

		ann := results[0]
		assert.Equal(t, core.EntityPOPRange, ann.Type)
		assert.Equal(t, "2025-10-01", ann.Metadata["start_date"])
		assert.Equal(t, "2026-09-30", ann.Metadata["end_date"])
	})

	t.Run("labeled through range", func(t *testing.T) {
		text := "Period of Performance: 2025-10-01 through 2026-09-30"
		results := ExtractPOPRanges(text)
		require.Len(t, results, 1)
		assert.Equal(t, "2025-10-01", results[0].Metadata["start_date"])
		assert.Equal(t, "2026-09-30", results[0].Metadata["end_date"])
	})

	t.Run("mixed date formats on either side", func(t *testing.T) {
		results := ExtractPOPRanges("POP: January 1, 2026 through 12/31/2026")
		require.Len(t, results, 1)
		assert.Equal(t, "2026-01-01", results[0].Metadata["start_date"])
		assert.Equal(t, "2026-12-31", results[0].Metadata["end_date"])
	})

	t.Run("invalid side discards the range", func(t *testing.T) {
		assert.Empty(t, ExtractPOPRanges("from 31 February 2026 to 30 September 2026"))
	})

	t.Run("overlapping candidates keep longest span", func(t *testing.T) {
		text := "from 1 October 2025 to 30 September 2026"
		results := ExtractPOPRanges(text)
		require.Len(t, results, 1)
		assert.Equal(t, text, results[0].Value)
	})
}
