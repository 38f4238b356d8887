package skinrec

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	embedder         Embedder
	dimensions       int
	queryInstruction *string

	knowledgeDir string
	catalogPath  string
	elderPath    string

	cacheSize int
	seed      uint64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithDimensions sets the vector size produced by the embedder.
// Defaults to 768 (bge-large-zh-v1.5).
func WithDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.dimensions = dim
	})
}

// WithQueryInstruction overrides the prefix prepended to search queries.
// Pass "" to disable it.
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.queryInstruction = &instruction
	})
}

// WithKnowledgeDir loads <dir>/{skin_conditions,products,skincare_rules}/*.json on New.
func WithKnowledgeDir(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.knowledgeDir = dir
	})
}

// WithCatalog sets the general and elder product catalog files.
// elderPath may be empty.
func WithCatalog(catalogPath, elderPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = catalogPath
		c.elderPath = elderPath
	})
}

// WithSearchCacheSize bounds the search result cache. Default: 1024.
func WithSearchCacheSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheSize = size
	})
}

// WithSeed fixes the randomness used for variety between equal candidates,
// making recommendations reproducible.
func WithSeed(seed uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.seed = seed
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
