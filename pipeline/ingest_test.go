package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/contractforge/ai/mock"
	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/storage"
	"github.com/poiesic/contractforge/storage/badger"
	"github.com/poiesic/contractforge/storage/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDocument = `Contract No. W911NF-22-C-0012

SECTION B - SUPPLIES OR SERVICES AND PRICES
The total contract ceiling is $1.2M. Currently funded: $350,000.
NAICS Code: 541511.

SECTION F - DELIVERIES OR PERFORMANCE
Period of Performance: 2025-10-01 through 2026-09-30.

SECTION I - CONTRACT CLAUSES
52.212-4 Contract Terms and Conditions
The commercial terms in this clause govern all orders placed here.
`

// recordingRepo wraps a real repository and captures write calls so tests
// can inspect audit entries and per-chunk annotations without knowing the
// pipeline's generated task and chunk IDs.
type recordingRepo struct {
	storage.ContractRepository

	mu          sync.Mutex
	audits      []*core.AuditEntry
	chunks      map[core.ID]core.EmbeddedChunk
	annotations map[core.ID][]core.EntityAnnotation
}

func newRecordingRepo(inner storage.ContractRepository) *recordingRepo {
	return &recordingRepo{
		ContractRepository: inner,
		chunks:             make(map[core.ID]core.EmbeddedChunk),
		annotations:        make(map[core.ID][]core.EntityAnnotation),
	}
}

func (r *recordingRepo) AppendAudit(ctx context.Context, entry *core.AuditEntry) error {
	r.mu.Lock()
	r.audits = append(r.audits, entry)
	r.mu.Unlock()
	return r.ContractRepository.AppendAudit(ctx, entry)
}

func (r *recordingRepo) StoreChunks(ctx context.Context, contractID core.ID, chunks []core.EmbeddedChunk) ([]core.ID, error) {
	ids, err := r.ContractRepository.StoreChunks(ctx, contractID, chunks)
	if err == nil {
		r.mu.Lock()
		for i, id := range ids {
			r.chunks[id] = chunks[i]
		}
		r.mu.Unlock()
	}
	return ids, err
}

func (r *recordingRepo) StoreAnnotations(ctx context.Context, chunkID core.ID, annotations []core.EntityAnnotation) (int, error) {
	r.mu.Lock()
	r.annotations[chunkID] = annotations
	r.mu.Unlock()
	return r.ContractRepository.StoreAnnotations(ctx, chunkID, annotations)
}

func setupPipeline(t *testing.T, docs map[string]string) (*Pipeline, *recordingRepo) {
	t.Helper()

	inner, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { inner.Close() })
	repo := newRecordingRepo(inner)

	dir := t.TempDir()
	for name, content := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	p, err := NewPipeline(repo, local.NewFetcher(dir), mock.NewMockProvider())
	require.NoError(t, err)
	t.Cleanup(p.Release)

	return p, repo
}

func TestNewPipelineValidation(t *testing.T) {
	repo, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	defer repo.Close()
	fetcher := local.NewFetcher(t.TempDir())
	provider := mock.NewMockProvider()

	_, err = NewPipeline(nil, fetcher, provider)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewPipeline(repo, nil, provider)
	assert.ErrorIs(t, err, ErrFetcherRequired)

	_, err = NewPipeline(repo, fetcher, nil)
	assert.ErrorIs(t, err, ErrAIProviderRequired)

	p, err := NewPipeline(repo, fetcher, provider, WithPoolSize(2))
	require.NoError(t, err)
	p.Release()
}

func TestIngest(t *testing.T) {
	ctx := context.Background()

	t.Run("successful ingestion persists everything", func(t *testing.T) {
		p, repo := setupPipeline(t, map[string]string{"award.txt": testDocument})

		result, err := p.Ingest(ctx, "award.txt", "txt")
		require.NoError(t, err)

		assert.Equal(t, "W911NF-22-C-0012", result.Metadata.ContractNumber)
		assert.Equal(t, "1200000", result.Metadata.CeilingValue)
		assert.Equal(t, "350000", result.Metadata.FundedValue)
		assert.Equal(t, "2025-10-01", result.Metadata.PopStart)
		assert.Equal(t, "2026-09-30", result.Metadata.PopEnd)
		assert.Equal(t, len(testDocument), result.TextLength)
		assert.Greater(t, result.EntityCount, 0)
		assert.Greater(t, result.ChunkCount, 0)
		assert.Equal(t, result.ChunkCount, result.ChunksStored)

		// Contract is retrievable by number.
		record, err := repo.GetContractByNumber(ctx, "W911NF-22-C-0012")
		require.NoError(t, err)
		assert.Equal(t, result.ContractID, record.Id)
		assert.Equal(t, "award.txt", record.ObjectKey)

		// Chunks come back in index order with vectors attached.
		chunks, err := repo.GetChunks(ctx, record.Id)
		require.NoError(t, err)
		require.Len(t, chunks, result.ChunkCount)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Chunk.Index)
			assert.NotEmpty(t, chunk.Vector)
		}
	})

	t.Run("audit trail has running and terminal entries", func(t *testing.T) {
		p, repo := setupPipeline(t, map[string]string{"award.txt": testDocument})

		result, err := p.Ingest(ctx, "award.txt", "txt")
		require.NoError(t, err)

		require.Len(t, repo.audits, 2)
		running, terminal := repo.audits[0], repo.audits[1]

		assert.Equal(t, core.AuditRunning, running.Status)
		assert.Equal(t, "ingestion_pipeline", running.AgentType)
		assert.Equal(t, "award.txt", running.InputSummary["object_key"])
		assert.NotEmpty(t, running.TaskId)

		assert.Equal(t, running.TaskId, terminal.TaskId)
		if result.Quality.NeedsHumanReview {
			assert.Equal(t, core.AuditNeedsReview, terminal.Status)
		} else {
			assert.Equal(t, core.AuditSuccess, terminal.Status)
		}
		assert.EqualValues(t, result.ChunkCount, terminal.OutputSummary["chunk_count"])

		// The trail is also readable back from storage by task ID.
		stored, err := repo.GetAuditEntries(ctx, running.TaskId)
		require.NoError(t, err)
		require.Len(t, stored, 2)
		assert.Equal(t, core.AuditRunning, stored[0].Status)
	})

	t.Run("missing object fails with audit failure entry", func(t *testing.T) {
		p, repo := setupPipeline(t, nil)

		_, err := p.Ingest(ctx, "missing.txt", "txt")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		require.Len(t, repo.audits, 2)
		assert.Equal(t, core.AuditRunning, repo.audits[0].Status)
		assert.Equal(t, core.AuditFailure, repo.audits[1].Status)
		assert.NotEmpty(t, repo.audits[1].ErrorDetails)

		// Nothing else was persisted.
		assert.Empty(t, repo.chunks)
	})

	t.Run("unsupported type is fatal", func(t *testing.T) {
		p, _ := setupPipeline(t, map[string]string{"sheet.xlsx": "data"})

		_, err := p.Ingest(ctx, "sheet.xlsx", "xlsx")
		assert.ErrorIs(t, err, ErrUnsupportedDocumentType)
	})

	t.Run("empty document is fatal", func(t *testing.T) {
		p, _ := setupPipeline(t, map[string]string{"empty.txt": "   \n  "})

		_, err := p.Ingest(ctx, "empty.txt", "txt")
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("reingest updates rather than duplicates", func(t *testing.T) {
		p, repo := setupPipeline(t, map[string]string{"award.txt": testDocument})

		first, err := p.Ingest(ctx, "award.txt", "txt")
		require.NoError(t, err)
		second, err := p.Ingest(ctx, "award.txt", "txt")
		require.NoError(t, err)

		assert.Equal(t, first.ContractID, second.ContractID)

		record, err := repo.GetContract(ctx, first.ContractID)
		require.NoError(t, err)
		assert.Equal(t, "W911NF-22-C-0012", record.Metadata.ContractNumber)
	})

	t.Run("stored annotations carry chunk-local offsets", func(t *testing.T) {
		p, repo := setupPipeline(t, map[string]string{"award.txt": testDocument})

		result, err := p.Ingest(ctx, "award.txt", "txt")
		require.NoError(t, err)
		require.Greater(t, result.AnnotationsStored, 0)

		verified := 0
		for chunkID, anns := range repo.annotations {
			chunk, ok := repo.chunks[chunkID]
			require.True(t, ok, "annotations for unknown chunk %d", chunkID)
			for _, ann := range anns {
				assert.Equal(t, chunk.Chunk.Text[ann.StartChar:ann.EndChar], ann.Value)
				verified++
			}
		}
		assert.Equal(t, result.AnnotationsStored, verified)
	})
}

func TestIngestBatch(t *testing.T) {
	ctx := context.Background()
	p, _ := setupPipeline(t, map[string]string{
		"a.txt": testDocument,
		"b.txt": "no structure here at all",
	})

	results := p.IngestBatch(ctx, []BatchItem{
		{ObjectKey: "a.txt", DocumentType: "txt"},
		{ObjectKey: "b.txt", DocumentType: "txt"},
		{ObjectKey: "gone.txt", DocumentType: "txt"},
	})
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)
	assert.Equal(t, "W911NF-22-C-0012", results[0].Result.Metadata.ContractNumber)

	// A document with no extractable entities still ingests; quality flags it.
	assert.NoError(t, results[1].Err)
	require.NotNil(t, results[1].Result)
	assert.True(t, results[1].Result.Quality.NeedsHumanReview)
	assert.Greater(t, results[1].Result.Quality.ErrorCount(), 0)

	assert.True(t, errors.Is(results[2].Err, storage.ErrNotFound))
}
