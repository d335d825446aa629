// Package local provides a filesystem implementation of
// storage.ObjectFetcher for development and testing.
package local

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/contractforge/storage"
)

// Fetcher reads document objects from a directory. The object key is the
// path relative to the root.
type Fetcher struct {
	root string
}

var _ storage.ObjectFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher rooted at dir.
//
// Returns storage.ObjectFetcher interface to enforce abstraction.
func NewFetcher(dir string) storage.ObjectFetcher {
	return &Fetcher{root: dir}
}

// Fetch reads the file at key relative to the root.
// A missing file is reported as storage.ErrNotFound; keys escaping the root
// are rejected.
func (f *Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(f.root, filepath.FromSlash(key))
	rel, err := filepath.Rel(f.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("object key %q escapes root", key)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	return data, nil
}
