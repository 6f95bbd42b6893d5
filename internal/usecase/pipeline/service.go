// Package pipeline orchestrates retrieval end to end: embed the query, rank
// against the engine, post-filter, and hand the survivors to the generator.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenkart/shopassist/internal/domain"
	domcat "github.com/lumenkart/shopassist/internal/domain/catalog"
	"github.com/lumenkart/shopassist/internal/domain/record"
	"github.com/lumenkart/shopassist/internal/engine"
	"github.com/lumenkart/shopassist/internal/logger"
	"github.com/lumenkart/shopassist/internal/metrics"
)

// DefaultTopK is the result count used when a request does not specify one.
const DefaultTopK = 2

// Service is the retrieval pipeline. It owns the similarity search engine and
// talks to the external embedder, generator and catalog store.
type Service struct {
	engine    *engine.Engine
	embedder  domain.Embedder
	generator Generator
	catalog   Catalog

	embedKeys   []string
	expandQuery bool
}

// Option customizes the pipeline.
type Option func(*Service)

// WithEmbeddingKeys overrides the attributes joined into the embedding input.
func WithEmbeddingKeys(keys ...string) Option {
	return func(s *Service) { s.embedKeys = keys }
}

// WithQueryExpansion rewrites user queries through the generator before
// embedding them.
func WithQueryExpansion() Option {
	return func(s *Service) { s.expandQuery = true }
}

// New creates a retrieval pipeline. Call Initialize to populate the engine
// from the catalog before answering queries.
func New(eng *engine.Engine, embedder domain.Embedder, gen Generator, cat Catalog, opts ...Option) *Service {
	s := &Service{
		engine:    eng,
		embedder:  embedder,
		generator: gen,
		catalog:   cat,
		embedKeys: record.DefaultEmbeddingKeys,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize embeds every catalog record and populates the engine. Per-record
// embedding failures degrade to a zero vector instead of aborting population,
// so one transient provider error cannot leave the catalog unsearchable.
func (s *Service) Initialize(ctx context.Context) error {
	records, err := s.catalog.AllRecords(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, rec := range records {
		texts[i] = rec.EmbeddingText(s.embedKeys...)
	}

	// Embeddings are produced before the engine takes its write lock.
	vectors := s.embedAll(ctx, texts)

	if err := s.engine.Add(vectors, records); err != nil {
		return fmt.Errorf("populate engine: %w", err)
	}

	logger.FromContext(ctx).Info("Catalog indexed",
		zap.Int("records", len(records)),
		zap.Int("dimension", s.engine.Dimension()),
	)
	return nil
}

// Answer runs the full pipeline for a user query. Filtering happens strictly
// after ranking and never triggers a re-search; when every hit is filtered
// out the generator still runs, with an empty result set.
func (s *Service) Answer(ctx context.Context, query string, k int, filter record.Record) (string, error) {
	if k < 1 {
		k = DefaultTopK
	}

	start := time.Now()
	log := logger.FromContext(ctx)

	searchQuery := query
	if s.expandQuery {
		expanded, err := s.generator.ExpandQuery(ctx, query)
		if err != nil {
			log.Warn("Query expansion failed, using raw query", zap.Error(err))
		} else {
			searchQuery = expanded
		}
	}

	vec := s.embedOne(ctx, searchQuery)

	results, err := s.engine.Search(vec, k)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("search: %w", err)
	}

	retained := results[:0]
	for _, r := range results {
		if r.Record().Matches(filter) {
			retained = append(retained, r)
		}
	}

	metrics.RetrievalRequestsTotal.WithLabelValues("success").Inc()
	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	metrics.RetrievalResultsRetained.Observe(float64(len(retained)))

	answer, err := s.generator.Generate(ctx, query, retained)
	if err != nil {
		// Generation failures never surface as pipeline errors; the user
		// gets a degraded reply and the query remains retryable.
		log.Warn("Response generation failed", zap.Error(err))
		return apology, nil
	}
	return answer, nil
}

// AddItem persists the record to the named catalog, then indexes it. The
// engine is untouched when persistence fails. Indexing is strictly
// incremental: only the new record is embedded.
func (s *Service) AddItem(ctx context.Context, catalogName string, rec record.Record) (bool, error) {
	if err := s.catalog.AddRecord(ctx, catalogName, rec); err != nil {
		return false, fmt.Errorf("persist record: %w", err)
	}

	vec := s.embedOne(ctx, rec.EmbeddingText(s.embedKeys...))
	if err := s.engine.Add([][]float32{vec}, []record.Record{rec}); err != nil {
		return false, fmt.Errorf("index record: %w", err)
	}
	return true, nil
}

// FilterItems returns catalog records matching the attribute filter, without
// any vector search.
func (s *Service) FilterItems(ctx context.Context, f domcat.Filter) ([]record.Record, error) {
	records, err := s.catalog.Filter(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("filter catalog: %w", err)
	}
	return records, nil
}

// Count returns the number of indexed items.
func (s *Service) Count() int {
	return s.engine.Count()
}

// apology is the degraded reply when the generator is unavailable.
const apology = "I apologize, but I'm unable to generate a response at the moment."

// embedAll vectorizes texts, preferring the provider's native batch API.
func (s *Service) embedAll(ctx context.Context, texts []string) [][]float32 {
	if be, ok := s.embedder.(domain.BatchEmbedder); ok {
		res, err := be.BatchEmbed(ctx, texts)
		if err == nil && len(res.Embeddings) == len(texts) {
			return s.padAll(ctx, res.Embeddings)
		}
		logger.FromContext(ctx).Warn("Batch embedding failed, falling back to per-text calls", zap.Error(err))
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = s.embedOne(ctx, text)
	}
	return vectors
}

// embedOne vectorizes a single text, degrading to a zero vector on provider
// failure or on a dimension the index would reject.
func (s *Service) embedOne(ctx context.Context, text string) []float32 {
	res, err := s.embedder.Embed(ctx, text)
	if err != nil || len(res.Embedding) != s.engine.Dimension() {
		logger.FromContext(ctx).Warn("Embedding degraded to zero vector",
			zap.Int("got_dimension", len(res.Embedding)),
			zap.Error(err),
		)
		return make([]float32, s.engine.Dimension())
	}
	return res.Embedding
}

// padAll replaces vectors of the wrong dimension with zero vectors so a
// partially-degraded batch still populates the engine.
func (s *Service) padAll(ctx context.Context, vectors [][]float32) [][]float32 {
	for i, v := range vectors {
		if len(v) != s.engine.Dimension() {
			logger.FromContext(ctx).Warn("Embedding degraded to zero vector", zap.Int("index", i))
			vectors[i] = make([]float32, s.engine.Dimension())
		}
	}
	return vectors
}
