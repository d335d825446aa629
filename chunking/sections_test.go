package chunking

import (
	"strings"
	"testing"

	"github.com/poiesic/contractforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectSections(t *testing.T) {
	t.Run("section keyword headers", func(t *testing.T) {
		text := "SECTION A - SOLICITATION FORM\nIntro text here.\n" +
			"SECTION B - SUPPLIES OR SERVICES\nPricing text here.\n" +
			"SECTION C - DESCRIPTION\nScope text here.\n"
		sections := DetectSections(text)
		require.Len(t, sections, 3)

		assert.Equal(t, core.SectionA, sections[0].Type)
		assert.Equal(t, core.SectionB, sections[1].Type)
		assert.Equal(t, core.SectionC, sections[2].Type)
		assert.Equal(t, "SECTION A - SOLICITATION FORM", sections[0].HeaderText)
	})

	t.Run("letter dot headers", func(t *testing.T) {
		text := "B. SUPPLIES OR SERVICES AND PRICES\nLine items follow.\n" +
			"C. DESCRIPTION/SPECIFICATIONS\nThe scope of work.\n"
		sections := DetectSections(text)
		require.Len(t, sections, 2)
		assert.Equal(t, core.SectionB, sections[0].Type)
		assert.Equal(t, core.SectionC, sections[1].Type)
	})

	t.Run("part headers map to representative letters", func(t *testing.T) {
		text := "PART I\nSchedule content.\n" +
			"PART II\nClauses content.\n" +
			"PART III\nDocuments content.\n" +
			"PART IV\nRepresentations content.\n"
		sections := DetectSections(text)
		require.Len(t, sections, 4)
		assert.Equal(t, core.SectionA, sections[0].Type)
		assert.Equal(t, core.SectionB, sections[1].Type)
		assert.Equal(t, core.SectionH, sections[2].Type)
		assert.Equal(t, core.SectionK, sections[3].Type)
	})

	t.Run("article headers map to other", func(t *testing.T) {
		text := "ARTICLE 1\nDefinitions.\nMore text.\n"
		sections := DetectSections(text)
		require.Len(t, sections, 1)
		assert.Equal(t, core.SectionOther, sections[0].Type)
	})

	t.Run("no headers returns nil", func(t *testing.T) {
		assert.Nil(t, DetectSections("Plain prose with no recognizable structure at all."))
	})

	t.Run("duplicate section types keep earliest", func(t *testing.T) {
		text := "SECTION B - SUPPLIES\nFirst mention.\n" +
			"SECTION C - DESCRIPTION\nScope.\n" +
			"SECTION B - SUPPLIES AGAIN\nSecond mention dropped.\n"
		sections := DetectSections(text)
		require.Len(t, sections, 2)
		assert.Equal(t, core.SectionB, sections[0].Type)
		assert.Equal(t, core.SectionC, sections[1].Type)
		// Section C runs to the end of the text, absorbing the duplicate.
		assert.Equal(t, len(text), sections[1].EndChar)
	})

	t.Run("contiguity invariant", func(t *testing.T) {
		text := "Preamble before any header.\n" +
			"SECTION A - FORM\nText.\n" +
			"SECTION L - INSTRUCTIONS\nText.\n" +
			"SECTION M - EVALUATION\nText.\n"
		sections := DetectSections(text)
		require.NotEmpty(t, sections)

		for i := 0; i+1 < len(sections); i++ {
			assert.Equal(t, sections[i+1].StartChar, sections[i].EndChar)
		}
		assert.Equal(t, len(text), sections[len(sections)-1].EndChar)
		assert.NoError(t, core.ValidateSections(sections, len(text)))

		// The first section starts at the first header, not at offset zero.
		assert.Equal(t, strings.Index(text, "SECTION A"), sections[0].StartChar)
	})

	t.Run("mixed header families pool together", func(t *testing.T) {
		text := "SECTION A - FORM\nText.\n" +
			"B. SUPPLIES OR SERVICES AND PRICES\nText.\n"
		sections := DetectSections(text)
		require.Len(t, sections, 2)
		assert.Equal(t, core.SectionA, sections[0].Type)
		assert.Equal(t, core.SectionB, sections[1].Type)
	})
}
