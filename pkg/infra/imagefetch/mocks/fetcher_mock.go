package mocks

import (
	"context"

	"github.com/NeuralTrust/TrustSearch/pkg/infra/imagefetch"
	"github.com/stretchr/testify/mock"
)

var _ imagefetch.Fetcher = (*Fetcher)(nil)

type Fetcher struct {
	mock.Mock
}

func (m *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	args := m.Called(ctx, rawURL)
	data, _ := args.Get(0).([]byte) //nolint:errcheck
	return data, args.Error(1)
}
