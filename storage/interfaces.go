package storage

import (
	"context"

	"github.com/poiesic/contractforge/core"
)

// ContractRepository provides the persistence operations consumed by the
// ingestion pipeline. Implementations must be thread-safe and support
// concurrent access.
type ContractRepository interface {
	// UpsertContract stores a contract record keyed by contract number.
	// Re-ingesting the same contract number updates the existing record
	// rather than creating a duplicate. Sets InsertedAt on first insert and
	// UpdatedAt on every call. Returns the record with its ID populated.
	UpsertContract(ctx context.Context, record *core.ContractRecord) (*core.ContractRecord, error)

	// GetContract retrieves a contract record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetContract(ctx context.Context, id core.ID) (*core.ContractRecord, error)

	// GetContractByNumber retrieves a contract record by contract number.
	// Returns ErrNotFound if no record with that number exists.
	GetContractByNumber(ctx context.Context, contractNumber string) (*core.ContractRecord, error)

	// StoreChunks stores embedded chunks belonging to a contract.
	// Chunk identifiers are generated from a sequence; the returned slice
	// contains them in the same order as the input chunks.
	StoreChunks(ctx context.Context, contractID core.ID, chunks []core.EmbeddedChunk) ([]core.ID, error)

	// GetChunks retrieves all stored chunks for a contract, ordered by
	// chunk index.
	GetChunks(ctx context.Context, contractID core.ID) ([]*core.EmbeddedChunk, error)

	// StoreAnnotations stores the entity annotations tied to one chunk,
	// replacing any previously stored set for that chunk. Returns the number
	// of annotations stored.
	StoreAnnotations(ctx context.Context, chunkID core.ID, annotations []core.EntityAnnotation) (int, error)

	// GetAnnotations retrieves the stored annotations for a chunk.
	// Returns an empty slice when the chunk has none.
	GetAnnotations(ctx context.Context, chunkID core.ID) ([]core.EntityAnnotation, error)

	// AppendAudit appends an entry to the audit log. Entries are never
	// updated or deleted.
	AppendAudit(ctx context.Context, entry *core.AuditEntry) error

	// GetAuditEntries retrieves all audit entries for a task ID in append
	// order.
	GetAuditEntries(ctx context.Context, taskID string) ([]*core.AuditEntry, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// ObjectFetcher retrieves raw document bytes by object key.
// Implementations wrap an object store (GCS bucket, local directory).
type ObjectFetcher interface {
	// Fetch returns the object's bytes.
	// Returns ErrNotFound if no object exists under the key.
	Fetch(ctx context.Context, key string) ([]byte, error)
}
