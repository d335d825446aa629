package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/contractforge/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "contracts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "contracts", "award.txt"), []byte("contract text"), 0o644))

	fetcher := NewFetcher(dir)

	t.Run("fetch by relative key", func(t *testing.T) {
		data, err := fetcher.Fetch(ctx, "contracts/award.txt")
		require.NoError(t, err)
		assert.Equal(t, []byte("contract text"), data)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, "contracts/missing.txt")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("key escaping root rejected", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, "../etc/passwd")
		require.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := fetcher.Fetch(cancelled, "contracts/award.txt")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
