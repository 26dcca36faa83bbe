package brave

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestProvider(client httpx.Client, apiKey string) search.Provider {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	breaker := httpx.NewCircuitBreaker("brave-test", time.Second, 5, nil)
	return NewProvider(Config{APIKey: apiKey, Options: Options{Country: "us"}}, client, breaker, logger)
}

func TestSearch(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	p := newTestProvider(client, "token")

	body := `{"web":{"results":[
		{"title":"<strong>Cats</strong>","url":"https://example.com/cats","description":"about <strong>cats</strong>","thumbnail":{"src":"https://imgs.example.com/cat.jpg"}},
		{"title":"Dogs","url":"https://example.com/dogs","description":"about dogs"}
	]}}`
	client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
		return req.Header.Get("X-Subscription-Token") == "token" &&
			req.URL.Query().Get("q") == "cats" &&
			req.URL.Query().Get("count") == "10" &&
			req.URL.Query().Get("country") == "us"
	})).Return(&http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}, nil)

	results, err := p.Search(context.Background(), "cats")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Cats", results[0].Title)
	assert.Equal(t, "about cats", results[0].Snippet)
	assert.Equal(t, "https://imgs.example.com/cat.jpg", results[0].ImageURL)
	assert.Empty(t, results[1].ImageURL)
}

func TestSearch_NonOK(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	p := newTestProvider(client, "token")

	client.On("Do", mock.Anything).Return(&http.Response{
		StatusCode: http.StatusUnauthorized,
		Body:       io.NopCloser(strings.NewReader(`{}`)),
	}, nil)

	_, err := p.Search(context.Background(), "cats")
	assert.ErrorIs(t, err, search.ErrProviderNonOKResponse)
}

func TestSearch_MissingCredentials(t *testing.T) {
	client := new(mocks.MockHTTPClient)
	p := newTestProvider(client, "")

	_, err := p.Search(context.Background(), "cats")
	assert.ErrorIs(t, err, search.ErrMissingCredentials)
}
