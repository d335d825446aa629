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

// Package contractforge ties the contract document store and AI services
// together behind a single handle. Open a Database, then create ingestion
// pipelines and searchers from it.
package contractforge

import (
	"log/slog"

	"github.com/poiesic/contractforge/ai"
	"github.com/poiesic/contractforge/ai/openai"
	"github.com/poiesic/contractforge/pipeline"
	"github.com/poiesic/contractforge/search"
	"github.com/poiesic/contractforge/storage"
	"github.com/poiesic/contractforge/storage/badger"
)

type Database struct {
	repository storage.ContractRepository
	provider   ai.Provider
	logger     *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.Provider
}

// WithAIConfig sets the AI service configuration used to build the default
// provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies a pre-built AI provider instead of constructing one
// from configuration. The Database takes ownership and closes it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	// Apply options
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(), // Default if not provided
	}
	for _, opt := range opts {
		opt(options)
	}

	repository, err := badger.NewRepository(filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repository.Close()
			return nil, err
		}
	}

	return &Database{
		repository: repository,
		provider:   provider,
		logger:     slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.repository.Close(); err != nil {
		db.logger.Error("error closing contract repository", "err", err)
		return err
	}
	return nil
}

func (db *Database) Repository() storage.ContractRepository {
	return db.repository
}

// NewIngestionPipeline builds a pipeline that reads documents through the
// given fetcher and persists results into this database.
func (db *Database) NewIngestionPipeline(fetcher storage.ObjectFetcher, opts ...pipeline.Option) (*pipeline.Pipeline, error) {
	return pipeline.NewPipeline(db.repository, fetcher, db.provider, opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.repository, db.provider, opts...)
}
