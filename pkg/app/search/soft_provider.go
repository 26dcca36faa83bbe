package search

import (
	"context"

	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

type softProvider struct {
	next   domainSearch.Provider
	name   string
	logger *logrus.Logger
}

// NewSoftProvider turns every provider failure into an empty result list.
func NewSoftProvider(next domainSearch.Provider, name string, logger *logrus.Logger) domainSearch.Provider {
	return &softProvider{
		next:   next,
		name:   name,
		logger: logger,
	}
}

func (p *softProvider) Search(ctx context.Context, query string) ([]domainSearch.Result, error) {
	results, err := p.next.Search(ctx, query)
	if err != nil {
		prometheus.ProviderFailuresTotal.WithLabelValues(p.name).Inc()
		p.logger.WithError(err).WithField("provider", p.name).Warn("web search failed, continuing with no results")
		return []domainSearch.Result{}, nil
	}
	if results == nil {
		results = []domainSearch.Result{}
	}
	return results, nil
}
