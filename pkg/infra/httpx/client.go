package httpx

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

//go:generate mockery --name=Client --dir=. --output=./mocks --filename=http_client_mock.go --case=underscore

// Client is the net/http shaped client used by the search providers.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// FastClient is the subset of *fasthttp.Client used by the embedding and image clients.
type FastClient interface {
	DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error
}
