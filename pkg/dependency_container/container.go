package dependency_container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/app/ranking"
	appSearch "github.com/NeuralTrust/TrustSearch/pkg/app/search"
	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	handlers "github.com/NeuralTrust/TrustSearch/pkg/handlers/http"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/cache"
	embeddingFactory "github.com/NeuralTrust/TrustSearch/pkg/infra/embedding/factory"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/imagefetch"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/repository"
	searchFactory "github.com/NeuralTrust/TrustSearch/pkg/infra/search/factory"
	"github.com/NeuralTrust/TrustSearch/pkg/middleware"
	"github.com/sirupsen/logrus"
)

const warmupTimeout = 10 * time.Second

type Container struct {
	Cache               cache.Client
	EmbeddingRepository embedding.Repository
	Embedder            embedding.Embedder
	SearchProvider      domainSearch.Provider
	ImageFetcher        imagefetch.Fetcher
	Ranker              *ranking.Ranker
	Searcher            appSearch.Searcher
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// FastClient overrides the shared fasthttp client, mainly for tests.
	FastClient httpx.FastClient
	// Cache overrides the redis connection built from Cfg.Redis.
	Cache cache.Client
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg
	logger := di.Logger

	fastClient := di.FastClient
	if fastClient == nil {
		var opts []httpx.FastHTTPClientOption
		if cfg.Ranking.MaxImageBytes > httpx.DefaultMaxResponseBodySize {
			opts = append(opts, httpx.WithMaxResponseBodySize(cfg.Ranking.MaxImageBytes+1))
		}
		fastClient = httpx.NewRawClient(opts...)
	}
	searchHTTPClient := httpx.NewFastHTTPClient(fastClient, cfg.Search.Timeout)

	var (
		cacheInstance cache.Client
		embeddingRepo embedding.Repository
	)
	if cfg.Cache.Enabled {
		cacheInstance = di.Cache
		if cacheInstance == nil {
			var err error
			cacheInstance, err = cache.NewClient(cache.Config{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			}, logger)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize cache: %w", err)
			}
		}
		embeddingRepo = repository.NewRedisEmbeddingRepository(cacheInstance)
	}

	// embedding services
	embedderLocator := embeddingFactory.NewEmbedderLocator(
		logger,
		fastClient,
		&http.Client{Timeout: cfg.Embedding.Timeout},
		cfg.Embedding,
		embeddingRepo,
		cfg.Cache,
	)
	lazyEmbedder := NewLazy(func() (embedding.Embedder, error) {
		embedder, err := embedderLocator.GetService(cfg.Embedding.Provider)
		if err != nil {
			return nil, err
		}
		warmUp(embedder, logger)
		return embedder, nil
	})
	embedder, err := lazyEmbedder.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}

	// search provider
	providerLocator := searchFactory.NewProviderLocator(logger, searchHTTPClient, cfg.Search)
	provider, err := providerLocator.GetProvider(cfg.Search.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize search provider: %w", err)
	}
	provider = appSearch.NewSoftProvider(provider, providerName(cfg.Search.Provider), logger)

	fetcher := imagefetch.NewFetcher(fastClient, cfg.Ranking.ImageFetchTimeout, cfg.Ranking.MaxImageBytes, logger)

	ranker := ranking.NewRanker(embedder, fetcher, ranking.Config{
		Workers:       cfg.Ranking.Workers,
		MaxTextLength: cfg.Embedding.MaxTextLength,
	}, nil, logger)

	searcher := appSearch.NewSearcher(logger, provider, embedder, fetcher, ranker, appSearch.Config{
		ImageQuery:        cfg.Search.ImageQuery,
		MaxTextLength:     cfg.Embedding.MaxTextLength,
		MaxUploadSize:     cfg.Upload.MaxSize,
		AllowedExtensions: cfg.Upload.AllowedExtensions,
	})

	checks := map[string]handlers.Pinger{}
	if p, ok := pingerOf(embedder); ok {
		checks["embedder"] = p
	}
	if cacheInstance != nil {
		checks["cache"] = cacheInstance
	}

	handlerTransport := &handlers.HandlerTransportDTO{
		SearchHandler:       handlers.NewSearchHandler(logger, searcher),
		UploadSearchHandler: handlers.NewUploadSearchHandler(logger, searcher, int64(cfg.Upload.MaxSize)),
		GetVersionHandler:   handlers.NewGetVersionHandler(logger),
		HealthHandler:       handlers.NewHealthHandler(logger, checks),
	}

	middlewareTransport := &middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		CORSMiddleware:         middleware.NewCORSGlobalMiddleware(cfg.CORS),
	}
	if cfg.Metrics.Enabled {
		middlewareTransport.MetricsMiddleware = middleware.NewMetricsMiddleware(logger)
	}

	return &Container{
		Cache:               cacheInstance,
		EmbeddingRepository: embeddingRepo,
		Embedder:            embedder,
		SearchProvider:      provider,
		ImageFetcher:        fetcher,
		Ranker:              ranker,
		Searcher:            searcher,
		HandlerTransport:    handlerTransport,
		MiddlewareTransport: middlewareTransport,
	}, nil
}

func (c *Container) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// warmUp pings the model server once. A cold server is not fatal, requests
// will fail with encoding errors until it answers.
func warmUp(embedder embedding.Embedder, logger *logrus.Logger) {
	p, ok := pingerOf(embedder)
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		logger.WithError(err).Warn("embedding server warm-up failed")
		return
	}
	logger.Info("embedding server ready")
}

type unwrapper interface {
	Unwrap() embedding.Embedder
}

func pingerOf(embedder embedding.Embedder) (handlers.Pinger, bool) {
	for embedder != nil {
		if p, ok := embedder.(handlers.Pinger); ok {
			return p, true
		}
		u, ok := embedder.(unwrapper)
		if !ok {
			return nil, false
		}
		embedder = u.Unwrap()
	}
	return nil, false
}

func providerName(name string) string {
	if name == "" {
		return searchFactory.GoogleProvider
	}
	return name
}
