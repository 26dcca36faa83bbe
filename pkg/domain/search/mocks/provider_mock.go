package mocks

import (
	"context"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/stretchr/testify/mock"
)

var _ search.Provider = (*Provider)(nil)

type Provider struct {
	mock.Mock
}

func (m *Provider) Search(ctx context.Context, query string) ([]search.Result, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]search.Result) //nolint:errcheck
	return results, args.Error(1)
}
