package pipeline

import (
	"strings"
	"testing"

	"github.com/poiesic/contractforge/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignEntitiesToChunks(t *testing.T) {
	chunks := []core.DocumentChunk{
		{Text: "Contract W911NF-22-C-0012 is awarded to the contractor.", Index: 0},
		{Text: "The ceiling is $1.2M for the W911NF-22-C-0012 base period.", Index: 1},
		{Text: "Clause 52.212-4 applies to all orders.", Index: 2},
	}

	t.Run("entities land on containing chunk with local offsets", func(t *testing.T) {
		entities := []core.EntityAnnotation{
			{Type: core.EntityContractNumber, Value: "W911NF-22-C-0012", StartChar: 9, EndChar: 25, Confidence: 1.0},
			{Type: core.EntityFARClause, Value: "52.212-4", StartChar: 500, EndChar: 508, Confidence: 1.0},
		}

		assigned := AssignEntitiesToChunks(entities, chunks)
		require.Len(t, assigned, 3)

		require.Len(t, assigned[0], 1)
		local := assigned[0][0]
		assert.Equal(t, core.EntityContractNumber, local.Type)
		assert.Equal(t, chunks[0].Text[local.StartChar:local.EndChar], local.Value)

		require.Len(t, assigned[2], 1)
		clause := assigned[2][0]
		assert.Equal(t, strings.Index(chunks[2].Text, "52.212-4"), clause.StartChar)
		assert.Equal(t, chunks[2].Text[clause.StartChar:clause.EndChar], clause.Value)
	})

	t.Run("repeated text pins to first containing chunk", func(t *testing.T) {
		entities := []core.EntityAnnotation{
			{Type: core.EntityContractNumber, Value: "W911NF-22-C-0012", StartChar: 9, EndChar: 25, Confidence: 1.0},
		}
		assigned := AssignEntitiesToChunks(entities, chunks)

		assert.Len(t, assigned[0], 1)
		assert.Empty(t, assigned[1], "second occurrence must not duplicate the entity")
	})

	t.Run("entity absent from every chunk is dropped", func(t *testing.T) {
		entities := []core.EntityAnnotation{
			{Type: core.EntityDate, Value: "2026-01-01", StartChar: 0, EndChar: 10, Confidence: 1.0},
		}
		assigned := AssignEntitiesToChunks(entities, chunks)
		for _, anns := range assigned {
			assert.Empty(t, anns)
		}
	})

	t.Run("metadata copied not shared", func(t *testing.T) {
		meta := map[string]any{"clause_base": "52.212-4"}
		entities := []core.EntityAnnotation{
			{Type: core.EntityFARClause, Value: "52.212-4", StartChar: 500, EndChar: 508, Confidence: 1.0, Metadata: meta},
		}
		assigned := AssignEntitiesToChunks(entities, chunks)
		require.Len(t, assigned[2], 1)

		assigned[2][0].Metadata["clause_base"] = "mutated"
		assert.Equal(t, "52.212-4", meta["clause_base"])
	})

	t.Run("no chunks", func(t *testing.T) {
		assigned := AssignEntitiesToChunks([]core.EntityAnnotation{{Type: core.EntityDate, Value: "x"}}, nil)
		assert.Empty(t, assigned)
	})
}
