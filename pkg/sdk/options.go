package shopassist

import "go.uber.org/zap"

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

type optionFunc func(*clientConfig)

func (f optionFunc) apply(cfg *clientConfig) { f(cfg) }

type clientConfig struct {
	// catalog
	catalogPath    string
	redisAddrs     []string
	redisUsername  string
	redisPassword  string
	redisDB        int
	keyPrefix      string
	defaultCatalog string

	// index
	dimension int
	metric    string

	// providers
	embedder      Embedder
	generator     Generator
	openaiKey     string
	openaiBaseURL string
	embedModel    string
	genModel      string
	expandQueries bool

	logger *zap.Logger
}

// WithCatalogFile uses the JSON file catalog driver.
func WithCatalogFile(path string) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.catalogPath = path })
}

// WithRedis uses the Redis catalog driver.
func WithRedis(addrs []string, password string) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.redisAddrs = addrs
		cfg.redisPassword = password
	})
}

// WithRedisAuth sets the Redis username and logical database.
func WithRedisAuth(username string, db int) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.redisUsername = username
		cfg.redisDB = db
	})
}

// WithKeyPrefix overrides the Redis key prefix (default "shopassist:").
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.keyPrefix = prefix })
}

// WithDefaultCatalog sets the catalog registered on startup for the Redis
// driver (default "electronics").
func WithDefaultCatalog(name string) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.defaultCatalog = name })
}

// WithDimensions sets the vector dimension (default 1536).
func WithDimensions(dim int) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.dimension = dim })
}

// WithMetric sets the distance metric: "l2" (default) or "ip".
func WithMetric(metric string) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.metric = metric })
}

// WithEmbedder plugs a custom embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.embedder = e })
}

// WithGenerator plugs a custom answer generator.
func WithGenerator(g Generator) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.generator = g })
}

// WithOpenAI configures the OpenAI-compatible embedding and chat providers.
func WithOpenAI(apiKey string) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.openaiKey = apiKey })
}

// WithOpenAIBaseURL points the OpenAI client at a compatible endpoint.
func WithOpenAIBaseURL(baseURL string) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.openaiBaseURL = baseURL })
}

// WithModels overrides the embedding and chat models.
func WithModels(embedModel, genModel string) Option {
	return optionFunc(func(cfg *clientConfig) {
		cfg.embedModel = embedModel
		cfg.genModel = genModel
	})
}

// WithQueryExpansion rewrites queries through the generator before retrieval.
func WithQueryExpansion() Option {
	return optionFunc(func(cfg *clientConfig) { cfg.expandQueries = true })
}

// WithLogger sets the zap logger (default: no logging).
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(cfg *clientConfig) { cfg.logger = logger })
}
