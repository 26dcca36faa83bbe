package search

import (
	"bytes"
	"context"
	"errors"
	"testing"

	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	searchmocks "github.com/NeuralTrust/TrustSearch/pkg/domain/search/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftProvider(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	ctx := context.Background()

	next := new(searchmocks.Provider)
	next.On("Search", ctx, "ok").Return([]domainSearch.Result{{URL: "https://a"}}, nil)
	next.On("Search", ctx, "nil").Return(nil, nil)
	next.On("Search", ctx, "fail").Return(nil, errors.New("quota exceeded"))

	p := NewSoftProvider(next, "google", logger)

	results, err := p.Search(ctx, "ok")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = p.Search(ctx, "nil")
	require.NoError(t, err)
	assert.NotNil(t, results)

	results, err = p.Search(ctx, "fail")
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
