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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/contractforge/ai"
	"github.com/poiesic/contractforge/ai/openai"
	"github.com/poiesic/contractforge/chunking"
	"github.com/poiesic/contractforge/extract"
	"github.com/poiesic/contractforge/pipeline"
	"github.com/poiesic/contractforge/search"
	"github.com/poiesic/contractforge/storage"
	"github.com/poiesic/contractforge/storage/badger"
	"github.com/poiesic/contractforge/storage/gcs"
	"github.com/poiesic/contractforge/storage/local"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "contractforge",
		Usage:  "Federal contract document ingestion and entity extraction",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Ingest contract documents into the database",
				ArgsUsage: "OBJECT_KEY [OBJECT_KEY...]",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "source-dir",
						Usage: "Local directory to fetch documents from",
					},
					&cli.StringFlag{
						Name:  "gcs-bucket",
						Usage: "GCS bucket to fetch documents from",
					},
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Document type (txt, docx, pdf)",
						Value:   "txt",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "entity-model-host",
						Usage: "Entity model service host URL (defaults to embedding-host)",
					},
					&cli.StringFlag{
						Name:  "entity-model",
						Usage: "Entity model name",
						Value: "qwen2.5:3b",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for batch ingestion",
						Value: 0,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search a contract's stored chunks",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "contract",
						Aliases:  []string{"c"},
						Usage:    "Contract number to search within",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.IntFlag{
						Name:    "max-hits",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
				},
			},
			{
				Name:      "extract",
				Usage:     "Run pattern-based entity extraction over a local file and print JSON",
				ArgsUsage: "FILE",
				Action:    extractCommand,
			},
			{
				Name:      "chunk",
				Usage:     "Chunk a local text file and print a per-chunk summary",
				ArgsUsage: "FILE",
				Action:    chunkCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "text",
						Usage: "Include full chunk text in the output",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("at least one object key is required")
	}

	// Choose fetcher
	var fetcher storage.ObjectFetcher
	switch {
	case c.String("source-dir") != "" && c.String("gcs-bucket") != "":
		return fmt.Errorf("source-dir and gcs-bucket are mutually exclusive")
	case c.String("source-dir") != "":
		fetcher = local.NewFetcher(c.String("source-dir"))
	case c.String("gcs-bucket") != "":
		f, err := gcs.NewFetcher(ctx, c.String("gcs-bucket"))
		if err != nil {
			return fmt.Errorf("failed to create GCS fetcher: %w", err)
		}
		fetcher = f
	default:
		return fmt.Errorf("either source-dir or gcs-bucket is required")
	}

	// Open database
	repo, err := badger.NewRepository(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	// Create AI config
	entityHost := c.String("entity-model-host")
	if entityHost == "" {
		entityHost = c.String("embedding-host")
	}
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithEntityModelHost(entityHost),
		ai.WithEntityModel(c.String("entity-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	// Create pipeline
	var opts []pipeline.Option
	if c.Int("pool-size") > 0 {
		opts = append(opts, pipeline.WithPoolSize(c.Int("pool-size")))
	}
	p, err := pipeline.NewPipeline(repo, fetcher, provider, opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer p.Release()

	items := make([]pipeline.BatchItem, c.NArg())
	for i, key := range c.Args().Slice() {
		items[i] = pipeline.BatchItem{ObjectKey: key, DocumentType: c.String("type")}
	}

	results := p.IngestBatch(ctx, items)

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "FAILED   %s: %v\n", r.Item.ObjectKey, r.Err)
			continue
		}
		status := "OK      "
		if r.Result.Quality.NeedsHumanReview {
			status = "REVIEW  "
		}
		fmt.Fprintf(os.Stderr, "%s %s: contract %s, %d chunks, %d entities, %d annotations, %s\n",
			status, r.Item.ObjectKey,
			r.Result.Metadata.ContractNumber,
			r.Result.ChunksStored,
			r.Result.EntityCount,
			r.Result.AnnotationsStored,
			r.Result.Duration.Round(time.Millisecond),
		)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d documents failed", failures, len(items))
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	if c.NArg() == 0 {
		return fmt.Errorf("a query is required")
	}
	query := strings.Join(c.Args().Slice(), " ")

	repo, err := badger.NewRepository(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer repo.Close()

	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	provider, err := openai.NewProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	record, err := repo.GetContractByNumber(ctx, c.String("contract"))
	if err != nil {
		return fmt.Errorf("failed to look up contract %q: %w", c.String("contract"), err)
	}

	searcher, err := search.NewSearcher(repo, provider)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	matches, err := searcher.FindSimilar(ctx, record.Id, query, c.Int("max-hits"))
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	for i, match := range matches {
		chunk := match.Chunk.Chunk
		fmt.Printf("%d. [%.3f] chunk %d section=%s", i+1, match.Score, chunk.Index, chunk.SectionType)
		if chunk.ClauseNumber != "" {
			fmt.Printf(" clause=%s", chunk.ClauseNumber)
		}
		fmt.Println()
		fmt.Println(chunk.Text)
		fmt.Println("---")
	}
	fmt.Fprintf(os.Stderr, "%d matches\n", len(matches))
	return nil
}

func extractCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file argument is required")
	}

	content, err := os.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	entities := extract.All(string(content))

	type entityOut struct {
		Type       string         `json:"type"`
		Value      string         `json:"value"`
		StartChar  int            `json:"start_char"`
		EndChar    int            `json:"end_char"`
		Confidence float64        `json:"confidence"`
		Metadata   map[string]any `json:"metadata,omitempty"`
	}
	out := make([]entityOut, len(entities))
	for i, e := range entities {
		out[i] = entityOut{
			Type:       string(e.Type),
			Value:      e.Value,
			StartChar:  e.StartChar,
			EndChar:    e.EndChar,
			Confidence: e.Confidence,
			Metadata:   e.Metadata,
		}
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func chunkCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("exactly one file argument is required")
	}

	path := c.Args().First()
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	processor := chunking.NewDocumentProcessor()
	chunks := processor.Process(string(content), path)

	for _, chunk := range chunks {
		fmt.Printf("chunk %d: section=%s", chunk.Index, chunk.SectionType)
		if chunk.ClauseNumber != "" {
			fmt.Printf(" clause=%s", chunk.ClauseNumber)
		}
		fmt.Printf(" words=%d chars=%d\n", chunk.WordCount(), len(chunk.Text))
		if c.Bool("text") {
			fmt.Println(chunk.Text)
			fmt.Println("---")
		}
	}
	fmt.Fprintf(os.Stderr, "%d chunks\n", len(chunks))
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
