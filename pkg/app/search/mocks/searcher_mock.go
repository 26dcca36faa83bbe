package mocks

import (
	"context"

	appSearch "github.com/NeuralTrust/TrustSearch/pkg/app/search"
	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/stretchr/testify/mock"
)

var _ appSearch.Searcher = (*Searcher)(nil)

type Searcher struct {
	mock.Mock
}

func (m *Searcher) SearchText(ctx context.Context, query string) ([]domainSearch.ScoredResult, error) {
	args := m.Called(ctx, query)
	results, _ := args.Get(0).([]domainSearch.ScoredResult) //nolint:errcheck
	return results, args.Error(1)
}

func (m *Searcher) SearchImageURL(ctx context.Context, imageURL, hint string) ([]domainSearch.ScoredResult, error) {
	args := m.Called(ctx, imageURL, hint)
	results, _ := args.Get(0).([]domainSearch.ScoredResult) //nolint:errcheck
	return results, args.Error(1)
}

func (m *Searcher) SearchImageUpload(
	ctx context.Context,
	filename string,
	data []byte,
	hint string,
) ([]domainSearch.ScoredResult, error) {
	args := m.Called(ctx, filename, data, hint)
	results, _ := args.Get(0).([]domainSearch.ScoredResult) //nolint:errcheck
	return results, args.Error(1)
}
