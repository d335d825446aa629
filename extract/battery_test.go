package extract

import (
	"sort"
	"testing"

	"github.com/poiesic/contractforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleContract = `Contract No. W911NF-22-C-0012

SECTION B - SUPPLIES OR SERVICES AND PRICES
The total contract ceiling is $1.2M. Currently funded: $350,000.
NAICS Code: 541511. CLIN 0001 covers engineering services.

SECTION F - DELIVERIES OR PERFORMANCE
Period of Performance: 2025-10-01 through 2026-09-30.

SECTION I - CONTRACT CLAUSES
52.212-4 Contract Terms and Conditions
252.204-7012 Safeguarding Covered Defense Information
`

func TestAll(t *testing.T) {
	results := All(sampleContract)
	require.NotEmpty(t, results)

	t.Run("sorted by start offset then type", func(t *testing.T) {
		sorted := sort.SliceIsSorted(results, func(i, j int) bool {
			if results[i].StartChar != results[j].StartChar {
				return results[i].StartChar < results[j].StartChar
			}
			return results[i].Type < results[j].Type
		})
		assert.True(t, sorted)
	})

	t.Run("no duplicate keys", func(t *testing.T) {
		type key struct {
			entityType core.EntityType
			start, end int
		}
		seen := make(map[key]bool)
		for _, ann := range results {
			k := key{ann.Type, ann.StartChar, ann.EndChar}
			assert.False(t, seen[k], "duplicate %v", k)
			seen[k] = true
		}
	})

	t.Run("all values anchor to source text", func(t *testing.T) {
		for _, ann := range results {
			switch ann.Type {
			case core.EntitySecurityLevel, core.EntityCLIN:
				// value is canonical or the bare code; span covers the phrase
				continue
			}
			assert.Equal(t, sampleContract[ann.StartChar:ann.EndChar], ann.Value)
		}
	})

	t.Run("every expected type present", func(t *testing.T) {
		types := make(map[core.EntityType]int)
		for _, ann := range results {
			types[ann.Type]++
		}
		assert.Equal(t, 1, types[core.EntityContractNumber])
		assert.Equal(t, 2, types[core.EntityDollarAmount])
		assert.Equal(t, 1, types[core.EntityNAICSCode])
		assert.Equal(t, 1, types[core.EntityCLIN])
		assert.Equal(t, 1, types[core.EntityPOPRange])
		assert.Equal(t, 1, types[core.EntityFARClause])
		assert.Equal(t, 1, types[core.EntityDFARSClause])
	})

	t.Run("all annotations are rule confidence", func(t *testing.T) {
		for _, ann := range results {
			assert.Equal(t, 1.0, ann.Confidence)
		}
	})

	t.Run("annotations validate", func(t *testing.T) {
		for _, ann := range results {
			assert.NoError(t, core.ValidateAnnotation(&ann))
		}
	})
}

func TestAllEmptyText(t *testing.T) {
	assert.Empty(t, All(""))
}
