package contractforge

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/contractforge/ai/mock"
	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/storage/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("creates database at path", func(t *testing.T) {
		db, err := NewDatabase(filepath.Join(t.TempDir(), "contracts"), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.NotNil(t, db.Repository())
		require.NoError(t, db.Close())
	})

	t.Run("invalid path fails", func(t *testing.T) {
		_, err := NewDatabase(string([]byte{0}), WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
	})
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "contracts"), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer db.Close()

	t.Run("ingestion pipeline", func(t *testing.T) {
		p, err := db.NewIngestionPipeline(local.NewFetcher(t.TempDir()))
		require.NoError(t, err)
		require.NotNil(t, p)
		p.Release()
	})

	t.Run("searcher", func(t *testing.T) {
		s, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("repository is usable", func(t *testing.T) {
		record, err := db.Repository().UpsertContract(context.Background(), &core.ContractRecord{
			Metadata:  core.ContractMetadata{ContractNumber: "FA8750-24-C-0001"},
			ObjectKey: "contracts/award.txt",
		})
		require.NoError(t, err)
		assert.NotZero(t, record.Id)
	})
}
