package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) storage.ContractRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(number string) *core.ContractRecord {
	return &core.ContractRecord{
		Metadata: core.ContractMetadata{
			ContractNumber: number,
			CeilingValue:   "1200000",
			FARClauses:     []string{"52.212-4"},
		},
		ObjectKey: "contracts/" + number + ".txt",
	}
}

func TestUpsertContract(t *testing.T) {
	ctx := context.Background()

	t.Run("insert assigns content-derived id", func(t *testing.T) {
		repo := setupRepository(t)

		record, err := repo.UpsertContract(ctx, testRecord("W911NF-22-C-0012"))
		require.NoError(t, err)
		assert.Equal(t, core.IDFromContent("W911NF-22-C-0012"), record.Id)
		assert.False(t, record.InsertedAt.IsZero())
		assert.False(t, record.UpdatedAt.IsZero())
	})

	t.Run("reupsert preserves inserted at", func(t *testing.T) {
		repo := setupRepository(t)

		first, err := repo.UpsertContract(ctx, testRecord("W911NF-22-C-0012"))
		require.NoError(t, err)
		insertedAt := first.InsertedAt

		time.Sleep(5 * time.Millisecond)
		update := testRecord("W911NF-22-C-0012")
		update.Metadata.CeilingValue = "2000000"
		second, err := repo.UpsertContract(ctx, update)
		require.NoError(t, err)

		assert.Equal(t, first.Id, second.Id)
		assert.True(t, insertedAt.Equal(second.InsertedAt))
		assert.True(t, second.UpdatedAt.After(insertedAt))

		stored, err := repo.GetContract(ctx, first.Id)
		require.NoError(t, err)
		assert.Equal(t, "2000000", stored.Metadata.CeilingValue)
	})

	t.Run("missing contract number falls back to object key", func(t *testing.T) {
		repo := setupRepository(t)

		record := &core.ContractRecord{ObjectKey: "contracts/unnumbered.txt"}
		stored, err := repo.UpsertContract(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, core.IDFromContent("contracts/unnumbered.txt"), stored.Id)
	})
}

func TestGetContract(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	record, err := repo.UpsertContract(ctx, testRecord("N00014-23-C-4321"))
	require.NoError(t, err)

	t.Run("by id", func(t *testing.T) {
		stored, err := repo.GetContract(ctx, record.Id)
		require.NoError(t, err)
		assert.Equal(t, "N00014-23-C-4321", stored.Metadata.ContractNumber)
		assert.Equal(t, []string{"52.212-4"}, stored.Metadata.FARClauses)
	})

	t.Run("by number", func(t *testing.T) {
		stored, err := repo.GetContractByNumber(ctx, "N00014-23-C-4321")
		require.NoError(t, err)
		assert.Equal(t, record.Id, stored.Id)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetContract(ctx, core.ID(999999))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("unknown number", func(t *testing.T) {
		_, err := repo.GetContractByNumber(ctx, "FA0000-00-C-0000")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func embeddedChunk(index int, text string) core.EmbeddedChunk {
	return core.EmbeddedChunk{
		Chunk: core.DocumentChunk{
			Text:        text,
			SectionType: core.SectionB,
			Index:       index,
			Metadata:    map[string]any{"word_count": len(text)},
		},
		Vector: []float32{0.1, 0.2, 0.3},
	}
}

func TestStoreChunks(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	contractID := core.IDFromContent("W911NF-22-C-0012")
	chunks := []core.EmbeddedChunk{
		embeddedChunk(0, "first chunk"),
		embeddedChunk(1, "second chunk"),
		embeddedChunk(2, "third chunk"),
	}

	ids, err := repo.StoreChunks(ctx, contractID, chunks)
	require.NoError(t, err)
	require.Len(t, ids, 3)

	t.Run("ids are unique and non-zero", func(t *testing.T) {
		seen := make(map[core.ID]bool)
		for _, id := range ids {
			assert.NotZero(t, id)
			assert.False(t, seen[id])
			seen[id] = true
		}
	})

	t.Run("retrieval ordered by index", func(t *testing.T) {
		stored, err := repo.GetChunks(ctx, contractID)
		require.NoError(t, err)
		require.Len(t, stored, 3)
		for i, chunk := range stored {
			assert.Equal(t, i, chunk.Chunk.Index)
			assert.Equal(t, []float32{0.1, 0.2, 0.3}, chunk.Vector)
		}
		assert.Equal(t, "first chunk", stored[0].Chunk.Text)
	})

	t.Run("other contract sees no chunks", func(t *testing.T) {
		stored, err := repo.GetChunks(ctx, core.IDFromContent("other"))
		require.NoError(t, err)
		assert.Empty(t, stored)
	})
}

func TestStoreAnnotations(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	chunkID := core.ID(42)
	annotations := []core.EntityAnnotation{
		{Type: core.EntityFARClause, Value: "52.212-4", StartChar: 7, EndChar: 15, Confidence: 1.0,
			Metadata: map[string]any{"clause_base": "52.212-4"}},
		{Type: core.EntityDollarAmount, Value: "$1.2M", StartChar: 30, EndChar: 35, Confidence: 1.0,
			Metadata: map[string]any{"normalized_value": 1200000.0}},
	}

	n, err := repo.StoreAnnotations(ctx, chunkID, annotations)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	t.Run("roundtrip", func(t *testing.T) {
		stored, err := repo.GetAnnotations(ctx, chunkID)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, "52.212-4", stored[0].Value)
		assert.Equal(t, 1.0, stored[0].Confidence)
		assert.Equal(t, "52.212-4", stored[0].Metadata["clause_base"])
		assert.Equal(t, 1200000.0, stored[1].Metadata["normalized_value"])
	})

	t.Run("restore replaces prior set", func(t *testing.T) {
		n, err := repo.StoreAnnotations(ctx, chunkID, annotations[:1])
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		stored, err := repo.GetAnnotations(ctx, chunkID)
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("chunk without annotations returns empty slice", func(t *testing.T) {
		stored, err := repo.GetAnnotations(ctx, core.ID(777))
		require.NoError(t, err)
		assert.NotNil(t, stored)
		assert.Empty(t, stored)
	})
}

func TestAuditLog(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)

	entry := func(taskID string, status core.AuditStatus) *core.AuditEntry {
		return &core.AuditEntry{
			AgentType: "ingestion_pipeline",
			TaskId:    taskID,
			Status:    status,
			StartedAt: time.Now().UTC(),
		}
	}

	require.NoError(t, repo.AppendAudit(ctx, entry("task-1", core.AuditRunning)))
	require.NoError(t, repo.AppendAudit(ctx, entry("task-2", core.AuditRunning)))
	require.NoError(t, repo.AppendAudit(ctx, entry("task-1", core.AuditSuccess)))

	t.Run("entries returned in append order per task", func(t *testing.T) {
		entries, err := repo.GetAuditEntries(ctx, "task-1")
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, core.AuditRunning, entries[0].Status)
		assert.Equal(t, core.AuditSuccess, entries[1].Status)
	})

	t.Run("tasks are isolated", func(t *testing.T) {
		entries, err := repo.GetAuditEntries(ctx, "task-2")
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("unknown task yields no entries", func(t *testing.T) {
		entries, err := repo.GetAuditEntries(ctx, "task-404")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
