package factory

import (
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/search/brave"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/search/google"
	"github.com/sirupsen/logrus"
)

const (
	GoogleProvider = google.ProviderName
	BraveProvider  = brave.ProviderName

	breakerTimeout     = 30 * time.Second
	breakerMaxFailures = 5
)

type ProviderLocator struct {
	logger *logrus.Logger
	client httpx.Client
	cfg    config.SearchConfig
}

func NewProviderLocator(logger *logrus.Logger, client httpx.Client, cfg config.SearchConfig) *ProviderLocator {
	return &ProviderLocator{
		logger: logger,
		client: client,
		cfg:    cfg,
	}
}

func (l *ProviderLocator) GetProvider(name string) (search.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	breaker := httpx.NewCircuitBreaker("search-"+name, breakerTimeout, breakerMaxFailures, l.logger)

	switch name {
	case "", GoogleProvider:
		var opts google.Options
		if err := l.cfg.DecodeOptions(&opts); err != nil {
			return nil, err
		}
		return google.NewProvider(google.Config{
			APIKey:     l.cfg.APIKey,
			EngineID:   l.cfg.EngineID,
			BaseURL:    l.cfg.BaseURL,
			MaxResults: l.cfg.MaxResults,
			Timeout:    l.cfg.Timeout,
			Options:    opts,
		}, l.client, breaker, l.logger), nil
	case BraveProvider:
		var opts brave.Options
		if err := l.cfg.DecodeOptions(&opts); err != nil {
			return nil, err
		}
		return brave.NewProvider(brave.Config{
			APIKey:     l.cfg.APIKey,
			BaseURL:    l.cfg.BaseURL,
			MaxResults: l.cfg.MaxResults,
			Timeout:    l.cfg.Timeout,
			Options:    opts,
		}, l.client, breaker, l.logger), nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", name)
	}
}
