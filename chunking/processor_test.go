package chunking

import (
	"testing"

	"github.com/poiesic/contractforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentProcessor(t *testing.T) {
	processor := NewDocumentProcessor()

	t.Run("stamps document id on every chunk", func(t *testing.T) {
		text := "SECTION B - SUPPLIES\nPricing details here.\n" +
			"SECTION C - DESCRIPTION\nThe scope of the work.\n"
		chunks := processor.Process(text, "contracts/award-001.txt")
		require.NotEmpty(t, chunks)
		for _, chunk := range chunks {
			assert.Equal(t, "contracts/award-001.txt", chunk.Metadata["document_id"])
		}
	})

	t.Run("empty text returns nil", func(t *testing.T) {
		assert.Nil(t, processor.Process("", "doc"))
		assert.Nil(t, processor.Process("   \n\t  ", "doc"))
	})

	t.Run("headerless text falls back to one OTHER section", func(t *testing.T) {
		chunks := processor.Process("Just a memo with no structure.", "doc")
		require.Len(t, chunks, 1)
		assert.Equal(t, core.SectionOther, chunks[0].SectionType)
	})

	t.Run("sectioned document tags chunks by section", func(t *testing.T) {
		text := "SECTION C - DESCRIPTION\nThe contractor shall build the system.\n" +
			"SECTION I - CONTRACT CLAUSES\n52.212-4 Contract Terms\nStandard commercial terms apply.\n"
		chunks := processor.Process(text, "doc")
		require.GreaterOrEqual(t, len(chunks), 2)

		assert.Equal(t, core.SectionC, chunks[0].SectionType)
		last := chunks[len(chunks)-1]
		assert.Equal(t, core.SectionI, last.SectionType)
		assert.Equal(t, "52.212-4", last.ClauseNumber)
	})
}
