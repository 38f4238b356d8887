package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/skinrec/internal/config"
	"github.com/kailas-cloud/skinrec/internal/db"
	dbRedis "github.com/kailas-cloud/skinrec/internal/db/redis"
	"github.com/kailas-cloud/skinrec/internal/domain"
	"github.com/kailas-cloud/skinrec/internal/domain/random"
	logpkg "github.com/kailas-cloud/skinrec/internal/logger"
	"github.com/kailas-cloud/skinrec/internal/metrics"
	"github.com/kailas-cloud/skinrec/internal/repository/embcache"
	"github.com/kailas-cloud/skinrec/internal/repository/searchcache"
	"github.com/kailas-cloud/skinrec/internal/repository/source"
	chiTransport "github.com/kailas-cloud/skinrec/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/skinrec/internal/transport/openai"
	advisoruc "github.com/kailas-cloud/skinrec/internal/usecase/advisor"
	embeddinguc "github.com/kailas-cloud/skinrec/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/skinrec/internal/usecase/health"
	knowledgeuc "github.com/kailas-cloud/skinrec/internal/usecase/knowledge"
	"github.com/kailas-cloud/skinrec/internal/usecase/matcher"
	recommenduc "github.com/kailas-cloud/skinrec/internal/usecase/recommend"
	"github.com/kailas-cloud/skinrec/internal/usecase/selector"
	"github.com/kailas-cloud/skinrec/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting skinrec API server",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("knowledge_dir", cfg.Knowledge.Dir),
	)

	metrics.RegisterAll()
	ctx := context.Background()

	// The Redis store is optional: without it embeddings are not cached and
	// budget counters live in memory only.
	var store db.Store
	if cfg.Cache.Enabled {
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer rs.Close()

		if err := rs.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		store = rs
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	budget := buildBudget(ctx, cfg.Embedding, store, logger)

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Embedding.Provider,
		Logger:     logger,
	})
	embTimeout := time.Duration(cfg.Embedding.TimeoutSec) * time.Second
	docVec := embeddinguc.NewVectorizer(
		buildEmbedder(base, cfg.Embedding, cfg.Embedding.DocumentInstruction, store, cfg.Cache, budget, logger),
		cfg.Embedding.Dimensions, embTimeout, logger,
	)
	queryVec := embeddinguc.NewVectorizer(
		buildEmbedder(base, cfg.Embedding, cfg.Embedding.QueryInstruction, store, cfg.Cache, budget, logger),
		cfg.Embedding.Dimensions, embTimeout, logger,
	)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Knowledge store
	searchCache := searchcache.New[[]knowledgeuc.Result](
		cfg.Knowledge.CacheSize, time.Duration(cfg.Knowledge.CacheTTLSec)*time.Second,
	)
	knowledge := knowledgeuc.New(docVec, queryVec,
		source.NewKnowledgeDir(cfg.Knowledge.Dir, logger), searchCache, logger)
	if err := knowledge.Initialize(ctx); err != nil {
		logger.Fatal("Failed to initialize knowledge store", zap.Error(err))
	}
	defer func() { _ = knowledge.Close() }()

	// Recommendations
	var rnd random.Source = random.NewTimeSeeded()
	if cfg.Recommend.Seed != 0 {
		rnd = random.NewSeeded(cfg.Recommend.Seed)
	}
	recommend := recommenduc.New(
		matcher.New(cfg.Recommend.Weights, rnd),
		selector.New(rnd, selector.WithCaps(cfg.Recommend.BrandCap, cfg.Recommend.CategoryCap)),
		cfg.Recommend.Sizes,
		logger,
	)
	catalog := source.NewCatalogFiles(cfg.Catalog.Products, cfg.Catalog.Elder, logger)
	if err := recommend.Initialize(ctx, catalog); err != nil {
		logger.Fatal("Failed to load catalog", zap.Error(err))
	}

	// Consultation flow. Pass nil interfaces (not typed nil pointers) when no
	// model is configured.
	var (
		textGen advisoruc.TextGenerator
		vision  advisoruc.ImageAnalyzer
		model   *openaiTransport.ChatGenerator
	)
	if cfg.LLM.Model != "" {
		model = openaiTransport.NewChatGenerator(&openaiTransport.ChatConfig{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			VisionModel: cfg.LLM.VisionModel,
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: cfg.LLM.Temperature,
			Logger:      logger,
		})
		textGen, vision = model, model
	} else {
		logger.Warn("llm.model not set, consultations use rule-based extraction only")
	}
	advisor := advisoruc.New(textGen, vision, knowledge, recommend, advisoruc.Config{
		ModelTimeout:  time.Duration(cfg.LLM.TimeoutSec) * time.Second,
		KnowledgeTopK: cfg.Knowledge.TopK,
	})

	healthOpts := []healthuc.Option{
		healthuc.WithEmbedding(base),
		healthuc.WithCorpus(knowledge),
	}
	if store != nil {
		healthOpts = append(healthOpts, healthuc.WithCache(store))
	}
	if model != nil {
		healthOpts = append(healthOpts, healthuc.WithModel(model))
	}
	health := healthuc.New(healthOpts...)

	server := chiTransport.NewServer(knowledge, recommend, advisor, health, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.Recoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.RequestLogger(logger))
	r.Use(chiTransport.APIKeyMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildBudget returns nil (an untyped nil interface) when no limit is set.
func buildBudget(
	ctx context.Context, cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger,
) embeddinguc.BudgetChecker {
	b := cfg.Budget
	if b.DailyTokenLimit <= 0 && b.MonthlyTokenLimit <= 0 {
		return nil
	}
	action := embeddinguc.BudgetActionWarn
	if b.Action == "reject" {
		action = embeddinguc.BudgetActionReject
	}
	budget := embeddinguc.NewTokenBudget(cfg.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, logger)
	if store != nil {
		budget.WithStore(ctx, store)
	}
	return budget
}

// buildEmbedder assembles the decorator chain: provider -> cache -> instrumented -> instruction.
func buildEmbedder(
	base domain.Embedder,
	embCfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	cacheCfg config.CacheConfig,
	budget embeddinguc.BudgetChecker,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if store != nil {
		ttl := time.Duration(cacheCfg.EmbeddingTTLHour) * time.Hour
		embedder = embcache.New(base, store, embCfg.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embCfg.Provider, embCfg.Model, budget, logger)

	// Outermost, so the cache key includes the instruction.
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}
