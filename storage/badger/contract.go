package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/storage"
)

// Repository implements storage.ContractRepository for BadgerDB.
type Repository struct {
	backend  *Backend
	chunkSeq *badger.Sequence
	auditSeq *badger.Sequence
}

var _ storage.ContractRepository = (*Repository)(nil)

// newRepository creates a Repository on an open backend.
func newRepository(backend *Backend) (*Repository, error) {
	chunkSeq, err := backend.GetSequence(chunkIDSeq)
	if err != nil {
		return nil, err
	}
	auditSeq, err := backend.GetSequence(auditIDSeq)
	if err != nil {
		chunkSeq.Release()
		return nil, err
	}
	return &Repository{
		backend:  backend,
		chunkSeq: chunkSeq,
		auditSeq: auditSeq,
	}, nil
}

// NewRepository opens a BadgerDB-backed contract repository at path.
//
// Returns storage.ContractRepository interface to enforce abstraction.
func NewRepository(path string) (storage.ContractRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	repo, err := newRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases sequences and closes the backend.
func (r *Repository) Close() error {
	r.chunkSeq.Release()
	r.auditSeq.Release()
	return r.backend.Close()
}

// WithTransaction delegates to the backend.
func (r *Repository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// UpsertContract stores a contract record keyed by contract number.
// The record ID is derived from the contract number, so re-ingesting the
// same number writes to the same key. Records without a contract number
// fall back to the object key.
func (r *Repository) UpsertContract(ctx context.Context, record *core.ContractRecord) (*core.ContractRecord, error) {
	if record.Id == 0 {
		seed := record.Metadata.ContractNumber
		if seed == "" {
			seed = record.ObjectKey
		}
		record.Id = core.IDFromContent(seed)
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeContractKey(record.Id)

		// Preserve InsertedAt across re-ingestion
		old, err := readContract(tx, key)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		if old != nil {
			record.InsertedAt = old.InsertedAt
		} else {
			record.InsertedAt = now
		}
		record.UpdatedAt = now

		value, err := storage.MarshalContractRecord(record)
		if err != nil {
			return err
		}
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Maintain the contract-number index
		if record.Metadata.ContractNumber != "" {
			numberKey := makeContractNumberKey(record.Metadata.ContractNumber)
			if err := tx.Set(numberKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return record, err
}

// GetContract retrieves a single contract record by ID.
func (r *Repository) GetContract(ctx context.Context, id core.ID) (*core.ContractRecord, error) {
	var result *core.ContractRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readContract(tx, makeContractKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetContractByNumber retrieves a contract record by contract number.
func (r *Repository) GetContractByNumber(ctx context.Context, contractNumber string) (*core.ContractRecord, error) {
	var result *core.ContractRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from number index
		item, err := tx.Get(makeContractNumberKey(contractNumber))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var contractID core.ID
		err = item.Value(func(val []byte) error {
			contractID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		result, err = readContract(tx, makeContractKey(contractID))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// StoreChunks stores embedded chunks for a contract with sequence-generated
// IDs, returned in input order.
func (r *Repository) StoreChunks(ctx context.Context, contractID core.ID, chunks []core.EmbeddedChunk) ([]core.ID, error) {
	ids := make([]core.ID, 0, len(chunks))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for i := range chunks {
			next, err := r.chunkSeq.Next()
			if err != nil {
				return err
			}
			// Sequences start at 0; chunk IDs must be non-zero
			id := core.ID(next + 1)

			value, err := storage.MarshalEmbeddedChunk(&chunks[i])
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(id), value); err != nil {
				return err
			}
			if err := tx.Set(makeChunkContractKey(contractID, id), nil); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// GetChunks retrieves all chunks for a contract, ordered by chunk index.
func (r *Repository) GetChunks(ctx context.Context, contractID core.ID) ([]*core.EmbeddedChunk, error) {
	var results []*core.EmbeddedChunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialChunkContractKey(contractID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			key := iter.Item().Key()
			chunkID, err := storage.UnmarshalID(key[len(key)-8:])
			if err != nil {
				return err
			}

			item, err := tx.Get(makeChunkKey(chunkID))
			if err != nil {
				return err
			}
			var chunk *core.EmbeddedChunk
			err = item.Value(func(val []byte) error {
				chunk, err = storage.UnmarshalEmbeddedChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Chunk IDs ascend in store order, but sort by index to be explicit
	// about the ordering contract.
	slices.SortFunc(results, func(a, b *core.EmbeddedChunk) int {
		return a.Chunk.Index - b.Chunk.Index
	})
	return results, nil
}

// StoreAnnotations stores a chunk's annotation list, replacing any prior set.
func (r *Repository) StoreAnnotations(ctx context.Context, chunkID core.ID, annotations []core.EntityAnnotation) (int, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalAnnotations(annotations)
		if err != nil {
			return err
		}
		if err := tx.Set(makeAnnotationKey(chunkID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return len(annotations), nil
}

// GetAnnotations retrieves the stored annotations for a chunk.
func (r *Repository) GetAnnotations(ctx context.Context, chunkID core.ID) ([]core.EntityAnnotation, error) {
	var result []core.EntityAnnotation
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeAnnotationKey(chunkID))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				result = []core.EntityAnnotation{}
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalAnnotations(val)
			return err
		})
	}, false)
	return result, err
}

// AppendAudit appends an audit log entry.
func (r *Repository) AppendAudit(ctx context.Context, entry *core.AuditEntry) error {
	seq, err := r.auditSeq.Next()
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		value, err := storage.MarshalAuditEntry(entry)
		if err != nil {
			return err
		}
		if err := tx.Set(makeAuditKey(entry.TaskId, seq), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetAuditEntries retrieves all audit entries for a task in append order.
func (r *Repository) GetAuditEntries(ctx context.Context, taskID string) ([]*core.AuditEntry, error) {
	var results []*core.AuditEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := makePartialAuditKey(taskID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var entry *core.AuditEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalAuditEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, entry)
		}
		return nil
	}, false)
	return results, err
}

// readContract reads a contract record from the transaction.
// Returns nil without error when the key does not exist.
func readContract(tx *badger.Txn, key []byte) (*core.ContractRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ContractRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalContractRecord(val)
		return err
	})
	return record, err
}
