package imagefetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
)

func newTestFetcher(client *mocks.MockFastClient, maxBytes int) Fetcher {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	return NewFetcher(client, time.Second, maxBytes, logger)
}

func uri(u string) interface{} {
	return mock.MatchedBy(func(req *fasthttp.Request) bool {
		return req.URI().String() == u
	})
}

func TestFetch_OK(t *testing.T) {
	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 1024)

	client.On("DoTimeout", uri("https://img.example.com/cat.png"), mock.Anything, mock.Anything).
		Return(nil, []byte("PNGDATA"), http.StatusOK)

	data, err := f.Fetch(context.Background(), "https://img.example.com/cat.png")
	require.NoError(t, err)
	assert.Equal(t, []byte("PNGDATA"), data)
}

func TestFetch_NotFound(t *testing.T) {
	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 1024)

	client.On("DoTimeout", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, []byte("missing"), http.StatusNotFound)

	_, err := f.Fetch(context.Background(), "https://img.example.com/gone.png")
	assert.ErrorIs(t, err, ErrNonOKStatus)
}

func TestFetch_TooLarge(t *testing.T) {
	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 4)

	client.On("DoTimeout", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, []byte("0123456789"), http.StatusOK)

	_, err := f.Fetch(context.Background(), "https://img.example.com/big.png")
	assert.ErrorIs(t, err, ErrTooLarge)
}

func TestFetch_DecodesContentEncoding(t *testing.T) {
	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	_, _ = gz.Write([]byte("raw image bytes"))
	require.NoError(t, gz.Close())

	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 1024)

	client.On("DoTimeout", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*fasthttp.Response).Header.Set("Content-Encoding", "gzip") //nolint:errcheck
		}).
		Return(nil, compressed.Bytes(), http.StatusOK)

	data, err := f.Fetch(context.Background(), "https://img.example.com/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "raw image bytes", string(data))
}

func TestFetch_FollowsRedirect(t *testing.T) {
	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 1024)

	client.On("DoTimeout", uri("http://img.example.com/old.png"), mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			args.Get(1).(*fasthttp.Response).Header.Set("Location", "/new.png") //nolint:errcheck
		}).
		Return(nil, []byte(""), http.StatusMovedPermanently).Once()
	client.On("DoTimeout", uri("http://img.example.com/new.png"), mock.Anything, mock.Anything).
		Return(nil, []byte("NEW"), http.StatusOK).Once()

	data, err := f.Fetch(context.Background(), "http://img.example.com/old.png")
	require.NoError(t, err)
	assert.Equal(t, "NEW", string(data))
	client.AssertExpectations(t)
}

func TestFetch_InvalidURL(t *testing.T) {
	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 1024)

	for _, raw := range []string{"", "ftp://host/file.png", "file:///etc/passwd", "https://", "::"} {
		_, err := f.Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
	client.AssertNotCalled(t, "DoTimeout", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetch_TransportError(t *testing.T) {
	client := new(mocks.MockFastClient)
	f := newTestFetcher(client, 1024)

	client.On("DoTimeout", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("dial tcp: no such host"))

	_, err := f.Fetch(context.Background(), "https://nowhere.invalid/cat.png")
	assert.ErrorContains(t, err, "no such host")
}
