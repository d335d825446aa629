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


// Package gcs provides a Google Cloud Storage implementation of
// storage.ObjectFetcher.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	gstorage "cloud.google.com/go/storage"
	"github.com/poiesic/contractforge/storage"
	"google.golang.org/api/googleapi"
)

// Fetcher retrieves document objects from a GCS bucket.
type Fetcher struct {
	client *gstorage.Client
	bucket *gstorage.BucketHandle
	logger *slog.Logger
}

var _ storage.ObjectFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher for the named bucket. The client uses
// application default credentials.
//
// Returns storage.ObjectFetcher interface to enforce abstraction.
func NewFetcher(ctx context.Context, bucketName string) (storage.ObjectFetcher, error) {
	client, err := gstorage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &Fetcher{
		client: client,
		bucket: client.Bucket(bucketName),
		logger: slog.Default().With("component", "gcs-fetcher", "bucket", bucketName),
	}, nil
}

// Fetch reads the object's full contents.
// A missing object is reported as storage.ErrNotFound.
func (f *Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	reader, err := f.bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, f.mapError(key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		f.logger.Error("failed to read object", "key", key, "err", err)
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}

	f.logger.Debug("fetched object", "key", key, "bytes", len(data))
	return data, nil
}

// Close releases the underlying client.
func (f *Fetcher) Close() error {
	return f.client.Close()
}

func (f *Fetcher) mapError(key string, err error) error {
	if errors.Is(err, gstorage.ErrObjectNotExist) {
		return fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 404 {
		return fmt.Errorf("object %s: %w", key, storage.ErrNotFound)
	}
	f.logger.Error("failed to open object", "key", key, "err", err)
	return fmt.Errorf("open object %s: %w", key, err)
}
