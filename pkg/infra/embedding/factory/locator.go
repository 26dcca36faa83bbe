package factory

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/embedding/cached"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/embedding/clip"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/embedding/openai"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

const (
	CLIPProvider   = clip.ProviderName
	OpenAIProvider = openai.ProviderName
)

type EmbedderLocator struct {
	logger     *logrus.Logger
	fastClient httpx.FastClient
	httpClient *http.Client
	cfg        config.EmbeddingConfig
	repo       embedding.Repository
	cacheCfg   config.CacheConfig
}

// NewEmbedderLocator builds providers from cfg. repo may be nil, which disables caching.
func NewEmbedderLocator(
	logger *logrus.Logger,
	fastClient httpx.FastClient,
	httpClient *http.Client,
	cfg config.EmbeddingConfig,
	repo embedding.Repository,
	cacheCfg config.CacheConfig,
) *EmbedderLocator {
	return &EmbedderLocator{
		logger:     logger,
		fastClient: fastClient,
		httpClient: httpClient,
		cfg:        cfg,
		repo:       repo,
		cacheCfg:   cacheCfg,
	}
}

func (l *EmbedderLocator) GetService(provider string) (embedding.Embedder, error) {
	var (
		embedder embedding.Embedder
		model    string
	)
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", CLIPProvider:
		svc := clip.NewCLIPEmbeddingService(l.fastClient, clip.Config{
			BaseURL:    l.cfg.BaseURL,
			Model:      l.cfg.Model,
			APIKey:     l.cfg.APIKey,
			Dimensions: l.cfg.Dimensions,
			Timeout:    l.cfg.Timeout,
		}, l.logger)
		embedder, model, provider = svc, l.cfg.Model, CLIPProvider
	case OpenAIProvider:
		svc, err := openai.NewOpenAIEmbeddingService(openai.Config{
			APIKey:     l.cfg.APIKey,
			BaseURL:    l.cfg.BaseURL,
			Model:      l.cfg.Model,
			Dimensions: l.cfg.Dimensions,
			Timeout:    l.cfg.Timeout,
		}, l.httpClient, l.logger)
		if err != nil {
			return nil, fmt.Errorf("openai embedder: %w", err)
		}
		embedder, model, provider = svc, l.cfg.Model, OpenAIProvider
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", provider)
	}

	if l.repo == nil || !l.cacheCfg.Enabled {
		return embedder, nil
	}
	return cached.NewCachedEmbedder(embedder, l.repo, provider+"|"+model, l.cacheCfg.EmbeddingTTL, l.logger), nil
}
