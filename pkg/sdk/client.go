package shopassist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenkart/shopassist/internal/db"
	dbRedis "github.com/lumenkart/shopassist/internal/db/redis"
	"github.com/lumenkart/shopassist/internal/domain"
	domcat "github.com/lumenkart/shopassist/internal/domain/catalog"
	"github.com/lumenkart/shopassist/internal/domain/search/result"
	"github.com/lumenkart/shopassist/internal/engine"
	"github.com/lumenkart/shopassist/internal/index"
	logpkg "github.com/lumenkart/shopassist/internal/logger"
	catalogrepo "github.com/lumenkart/shopassist/internal/repository/catalog"
	openaiTransport "github.com/lumenkart/shopassist/internal/transport/openai"
	pipelineuc "github.com/lumenkart/shopassist/internal/usecase/pipeline"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultDimension        = 1536
	defaultKeyPrefix        = "shopassist:"
	defaultCatalogName      = "electronics"
	defaultEmbedModel       = "text-embedding-3-small"
	defaultGenModel         = "gpt-4o-mini"
)

// Client is the shopassist SDK entry point.
type Client struct {
	pipeline *pipelineuc.Service
	store    db.Store
	logger   *zap.Logger
}

// New creates a Client, connects the catalog store and indexes the catalog.
// The provided context bounds the readiness check and the initial indexing.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		dimension:      defaultDimension,
		metric:         "l2",
		keyPrefix:      defaultKeyPrefix,
		defaultCatalog: defaultCatalogName,
		embedModel:     defaultEmbedModel,
		genModel:       defaultGenModel,
		logger:         zap.NewNop(),
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	catalog, store, err := createCatalog(ctx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, generator, err := createProviders(cfg)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	metric, err := index.ParseMetric(cfg.metric)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("shopassist: %w", err)
	}
	idx, err := index.New(cfg.dimension, metric)
	if err != nil {
		closeStore(store)
		return nil, fmt.Errorf("shopassist: %w", err)
	}

	var pipeOpts []pipelineuc.Option
	if cfg.expandQueries {
		pipeOpts = append(pipeOpts, pipelineuc.WithQueryExpansion())
	}
	pipeline := pipelineuc.New(engine.New(idx), embedder, generator, catalog, pipeOpts...)

	if err := pipeline.Initialize(logpkg.ContextWithLogger(ctx, cfg.logger)); err != nil {
		closeStore(store)
		return nil, fmt.Errorf("shopassist: index catalog: %w", err)
	}

	return &Client{pipeline: pipeline, store: store, logger: cfg.logger}, nil
}

func createCatalog(ctx context.Context, cfg *clientConfig) (pipelineuc.Catalog, db.Store, error) {
	if len(cfg.redisAddrs) == 0 {
		if cfg.catalogPath == "" {
			return nil, nil, errors.New("shopassist: catalog required (use WithCatalogFile or WithRedis)")
		}
		return catalogrepo.NewFileStore(cfg.catalogPath, cfg.logger), nil, nil
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.redisAddrs,
		Username: cfg.redisUsername,
		Password: cfg.redisPassword,
		DB:       cfg.redisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("shopassist: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("shopassist: database not ready: %w", err)
	}

	catalog := catalogrepo.NewRedisStore(store, cfg.keyPrefix)
	if err := catalog.EnsureCatalog(ctx, cfg.defaultCatalog); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("shopassist: %w", err)
	}
	return catalog, store, nil
}

func createProviders(cfg *clientConfig) (domain.Embedder, pipelineuc.Generator, error) {
	var embedder domain.Embedder
	switch {
	case cfg.embedder != nil:
		embedder = &embedderAdapter{inner: cfg.embedder}
	case cfg.openaiKey != "":
		embedder = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.openaiKey,
			BaseURL:    cfg.openaiBaseURL,
			Model:      cfg.embedModel,
			Dimensions: cfg.dimension,
			Logger:     cfg.logger,
		})
	default:
		return nil, nil, errors.New("shopassist: embedder required (use WithEmbedder or WithOpenAI)")
	}

	var generator pipelineuc.Generator
	switch {
	case cfg.generator != nil:
		generator = &generatorAdapter{inner: cfg.generator}
	case cfg.openaiKey != "":
		generator = openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:  cfg.openaiKey,
			BaseURL: cfg.openaiBaseURL,
			Model:   cfg.genModel,
			Logger:  cfg.logger,
		})
	default:
		generator = noopGenerator{}
	}
	return embedder, generator, nil
}

func closeStore(store db.Store) {
	if store != nil {
		store.Close()
	}
}

// Close releases all resources.
func (c *Client) Close() {
	closeStore(c.store)
}

// Ask runs the retrieval pipeline for a query. topK <= 0 uses the default.
func (c *Client) Ask(ctx context.Context, query string, topK int) (string, error) {
	return c.pipeline.Answer(logpkg.ContextWithLogger(ctx, c.logger), query, topK, nil)
}

// AskFiltered is Ask with an exact-match attribute constraint applied to the
// retrieved items.
func (c *Client) AskFiltered(ctx context.Context, query string, topK int, constraints Item) (string, error) {
	rec, err := itemToRecord(constraints)
	if err != nil {
		return "", fmt.Errorf("shopassist: invalid constraints: %w", err)
	}
	return c.pipeline.Answer(logpkg.ContextWithLogger(ctx, c.logger), query, topK, rec)
}

// AddItem persists an item to the named catalog and indexes it.
func (c *Client) AddItem(ctx context.Context, catalogName string, item Item) error {
	rec, err := itemToRecord(item)
	if err != nil {
		return fmt.Errorf("shopassist: invalid item: %w", err)
	}
	if _, err := c.pipeline.AddItem(logpkg.ContextWithLogger(ctx, c.logger), catalogName, rec); err != nil {
		return fmt.Errorf("shopassist: %w", err)
	}
	return nil
}

// Items returns catalog items matching the filter, without a vector search.
func (c *Client) Items(ctx context.Context, f Filter) ([]Item, error) {
	records, err := c.pipeline.FilterItems(ctx, domcat.Filter{
		Category: f.Category,
		Tags:     f.Tags,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
		InStock:  f.InStock,
	})
	if err != nil {
		return nil, fmt.Errorf("shopassist: %w", err)
	}
	items := make([]Item, len(records))
	for i, rec := range records {
		items[i] = recordToItem(rec)
	}
	return items, nil
}

// Count returns the number of indexed items.
func (c *Client) Count() int {
	return c.pipeline.Count()
}

// Ping checks database connectivity. Always nil for the file driver.
func (c *Client) Ping(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps the public Generator for the pipeline. Query
// expansion passes the query through unchanged.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Generate(ctx context.Context, query string, results []result.Result) (string, error) {
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{
			Item:       recordToItem(r.Record()),
			Distance:   r.Distance(),
			Similarity: r.Similarity(),
		}
	}
	out, err := a.inner.Generate(ctx, query, matches)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return out, nil
}

func (a *generatorAdapter) ExpandQuery(_ context.Context, query string) (string, error) {
	return query, nil
}

// noopGenerator fails every call, which the pipeline degrades to its apology
// reply (used when no generator is configured).
type noopGenerator struct{}

func (noopGenerator) Generate(_ context.Context, _ string, _ []result.Result) (string, error) {
	return "", errors.New("shopassist: generator not configured (use WithGenerator or WithOpenAI)")
}

func (noopGenerator) ExpandQuery(_ context.Context, query string) (string, error) {
	return query, nil
}
