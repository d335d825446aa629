// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/contractforge/ai"
	"github.com/poiesic/contractforge/chunking"
	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/storage"
)

// agentType tags every audit entry written by this pipeline.
const agentType = "ingestion_pipeline"

// Pipeline orchestrates contract document ingestion: fetch, text
// extraction, entity extraction, chunking, embedding, metadata mapping,
// quality checking and persistence. Persistence is the final stage, so a
// failed document leaves nothing behind except its audit trail.
type Pipeline struct {
	repository storage.ContractRepository
	fetcher    storage.ObjectFetcher
	provider   ai.Provider
	extractor  *CombinedExtractor
	processor  *chunking.DocumentProcessor
	pool       *ants.Pool
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for batch ingestion.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithChunkerOptions overrides the chunker's sizing parameters.
func WithChunkerOptions(opts ...chunking.ChunkerOption) Option {
	return func(p *Pipeline) error {
		p.processor = chunking.NewDocumentProcessor(opts...)
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	repository storage.ContractRepository,
	fetcher storage.ObjectFetcher,
	provider ai.Provider,
	opts ...Option,
) (*Pipeline, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if fetcher == nil {
		return nil, ErrFetcherRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repository: repository,
		fetcher:    fetcher,
		provider:   provider,
		extractor:  NewCombinedExtractor(provider.EntityModel()),
		processor:  chunking.NewDocumentProcessor(),
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestionResult summarizes one successful document ingestion.
type IngestionResult struct {
	ContractID        core.ID
	ObjectKey         string
	DocumentType      string
	TextLength        int
	ChunkCount        int
	EntityCount       int
	ChunksStored      int
	AnnotationsStored int
	Metadata          core.ContractMetadata
	Quality           *core.QualityReport
	Duration          time.Duration
}

// Ingest runs the full pipeline for a single document identified by its
// object-store key and document-type tag.
//
// Every run writes a RUNNING audit entry up front and exactly one terminal
// entry at the end: SUCCESS, NEEDS_REVIEW when the quality report flags
// the document, or FAILURE with the error. Stage errors propagate to the
// caller after the FAILURE entry is written.
func (p *Pipeline) Ingest(ctx context.Context, objectKey, docType string) (*IngestionResult, error) {
	taskID := uuid.NewString()
	started := time.Now().UTC()

	p.appendAudit(ctx, &core.AuditEntry{
		AgentType: agentType,
		TaskId:    taskID,
		Status:    core.AuditRunning,
		InputSummary: map[string]any{
			"object_key":    objectKey,
			"document_type": docType,
		},
		StartedAt: started,
	})

	result, err := p.run(ctx, objectKey, docType)
	if err != nil {
		p.appendAudit(ctx, &core.AuditEntry{
			AgentType:    agentType,
			TaskId:       taskID,
			Status:       core.AuditFailure,
			ErrorDetails: err.Error(),
			StartedAt:    started,
		})
		return nil, err
	}

	result.Duration = time.Since(started)

	status := core.AuditSuccess
	if result.Quality.NeedsHumanReview {
		status = core.AuditNeedsReview
	}
	p.appendAudit(ctx, &core.AuditEntry{
		AgentType: agentType,
		TaskId:    taskID,
		Status:    status,
		OutputSummary: map[string]any{
			"contract_id":        uint64(result.ContractID),
			"contract_number":    result.Metadata.ContractNumber,
			"text_length":        result.TextLength,
			"chunk_count":        result.ChunkCount,
			"entity_count":       result.EntityCount,
			"chunks_stored":      result.ChunksStored,
			"annotations_stored": result.AnnotationsStored,
			"quality_errors":     result.Quality.ErrorCount(),
			"quality_warnings":   result.Quality.WarningCount(),
			"review_reasons":     result.Quality.ReviewReasons,
			"duration_ms":        result.Duration.Milliseconds(),
		},
		StartedAt: started,
	})

	return result, nil
}

// run executes the pipeline stages. Nothing is persisted until every
// stage before persistence has succeeded.
func (p *Pipeline) run(ctx context.Context, objectKey, docType string) (*IngestionResult, error) {
	content, err := p.fetcher.Fetch(ctx, objectKey)
	if err != nil {
		return nil, fmt.Errorf("fetching %q: %w", objectKey, err)
	}

	text, err := ExtractText(content, docType)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %q: %w", objectKey, err)
	}

	entities, err := p.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extracting entities: %w", err)
	}

	chunks := p.processor.Process(text, objectKey)
	if len(chunks) == 0 {
		return nil, ErrEmptyDocument
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := p.provider.Embedder().EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	metadata := MapEntities(text, entities)
	chunkEntities := AssignEntitiesToChunks(entities, chunks)

	chunkEntityCounts := make([]int, len(chunks))
	for i, anns := range chunkEntities {
		chunkEntityCounts[i] = len(anns)
	}
	quality := CheckQuality(metadata, entities, len(chunks), chunkEntityCounts)

	record, err := p.repository.UpsertContract(ctx, &core.ContractRecord{
		Metadata:  metadata,
		ObjectKey: objectKey,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting contract: %w", err)
	}

	embedded := make([]core.EmbeddedChunk, len(chunks))
	for i := range chunks {
		embedded[i] = core.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
	}
	chunkIDs, err := p.repository.StoreChunks(ctx, record.Id, embedded)
	if err != nil {
		return nil, fmt.Errorf("storing chunks: %w", err)
	}

	annotationsStored := 0
	for i, chunkID := range chunkIDs {
		if len(chunkEntities[i]) == 0 {
			continue
		}
		n, err := p.repository.StoreAnnotations(ctx, chunkID, chunkEntities[i])
		if err != nil {
			return nil, fmt.Errorf("storing annotations for chunk %d: %w", chunkID, err)
		}
		annotationsStored += n
	}

	return &IngestionResult{
		ContractID:        record.Id,
		ObjectKey:         objectKey,
		DocumentType:      docType,
		TextLength:        len(text),
		ChunkCount:        len(chunks),
		EntityCount:       len(entities),
		ChunksStored:      len(chunkIDs),
		AnnotationsStored: annotationsStored,
		Metadata:          metadata,
		Quality:           quality,
	}, nil
}

// BatchItem names one document for batch ingestion.
type BatchItem struct {
	ObjectKey    string
	DocumentType string
}

// BatchResult pairs one batch item with its outcome.
type BatchResult struct {
	Item   BatchItem
	Result *IngestionResult
	Err    error
}

// IngestBatch runs Ingest for each item on the worker pool and blocks
// until all items finish. Per-document failures are reported in the
// corresponding BatchResult and do not stop the rest of the batch.
func (p *Pipeline) IngestBatch(ctx context.Context, items []BatchItem) []BatchResult {
	results := make([]BatchResult, len(items))

	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			result, err := p.Ingest(ctx, item.ObjectKey, item.DocumentType)
			results[i] = BatchResult{Item: item, Result: result, Err: err}
		})
		if submitErr != nil {
			wg.Done()
			results[i] = BatchResult{Item: item, Err: submitErr}
		}
	}
	wg.Wait()

	return results
}

// appendAudit writes an audit entry, logging instead of failing when the
// audit log itself cannot be written.
func (p *Pipeline) appendAudit(ctx context.Context, entry *core.AuditEntry) {
	if err := p.repository.AppendAudit(ctx, entry); err != nil {
		p.logger.Error("error appending audit entry", "task_id", entry.TaskId, "status", entry.Status, "err", err)
	}
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
