package extract

import (
	"testing"

	"github.com/poiesic/contractforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSecurityLevels(t *testing.T) {
	t.Run("canonical value with raw text in metadata", func(t *testing.T) {
		results := ExtractSecurityLevels("This effort is classified Top Secret overall.")
		require.Len(t, results, 1)
		assert.Equal(t, core.EntitySecurityLevel, results[0].Type)
		assert.Equal(t, "TOP_SECRET", results[0].Value)
		assert.Equal(t, "Top Secret", results[0].Metadata["raw_text"])
	})

	t.Run("SECRET inside TOP SECRET is suppressed", func(t *testing.T) {
		results := ExtractSecurityLevels("Marked TOP SECRET at all times.")
		require.Len(t, results, 1)
		assert.Equal(t, "TOP_SECRET", results[0].Value)
	})

	t.Run("TS/SCI outranks its parts", func(t *testing.T) {
		results := ExtractSecurityLevels("Access requires TS/SCI clearance.")
		require.Len(t, results, 1)
		assert.Equal(t, "TS/SCI", results[0].Value)
	})

	t.Run("long form markings", func(t *testing.T) {
		results := ExtractSecurityLevels("Handle as Controlled Unclassified Information only.")
		require.Len(t, results, 1)
		assert.Equal(t, "CUI", results[0].Value)
	})

	t.Run("secret service is not a marking", func(t *testing.T) {
		assert.Empty(t, ExtractSecurityLevels("Coordinated with the Secret Service detail."))
	})

	t.Run("unclassified", func(t *testing.T) {
		results := ExtractSecurityLevels("This document is UNCLASSIFIED.")
		require.Len(t, results, 1)
		assert.Equal(t, "UNCLASSIFIED", results[0].Value)
	})
}
