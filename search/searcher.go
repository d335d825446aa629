package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/contractforge/ai"
	"github.com/poiesic/contractforge/core"
	"github.com/poiesic/contractforge/storage"
)

// minSimilarity is the cosine similarity floor below which a chunk does not
// count as a semantic hit.
const minSimilarity = 0.60

// Searcher ranks a contract's stored chunks against a free-text query. It
// combines embedding similarity with clause citation matching so that a
// query naming a clause number surfaces that clause's chunks even when the
// embedding distance is poor.
type Searcher struct {
	repository storage.ContractRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(repository storage.ContractRepository, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		repository: repository,
		embedder:   provider.Embedder(),
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// FindSimilar searches the contract's chunks for text similar to the query.
// Returns up to maxHits results, ranked by relevance score.
//
// Scoring: a chunk is a semantic hit when its cosine similarity to the query
// embedding clears minSimilarity, and a clause hit when the query cites the
// chunk's clause number verbatim. A chunk in both channels scores 1.5x its
// similarity, clause-only scores a flat 1.2, semantic-only scores its
// similarity. Chunks containing every significant query word get a further
// 0.3 boost.
func (s *Searcher) FindSimilar(ctx context.Context, contractID core.ID, query string, maxHits int) ([]*core.ChunkMatch, error) {
	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	chunks, err := s.repository.GetChunks(ctx, contractID)
	if err != nil {
		s.logger.Error("error loading chunks for contract", "contractID", contractID, "err", err)
		return nil, err
	}

	results := make([]*core.ChunkMatch, 0, len(chunks))
	for _, chunk := range chunks {
		similarity := cosineSimilarity(embedding, chunk.Vector)
		inSemantic := similarity >= minSimilarity
		inClause := chunk.Chunk.ClauseNumber != "" && strings.Contains(query, chunk.Chunk.ClauseNumber)

		var score float32
		switch {
		case inSemantic && inClause:
			score = 1.5 * similarity
		case inClause:
			score = 1.2
		case inSemantic:
			score = similarity
		default:
			continue
		}

		if containsAllQueryWords(chunk.Chunk.Text, query) {
			score += 0.3
		}

		results = append(results, &core.ChunkMatch{Chunk: chunk, Score: score})
	}

	// Sort by score descending
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > maxHits {
		results = results[:maxHits]
	}

	return results, nil
}
