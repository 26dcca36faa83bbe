package imagefetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxBytes = 5 * 1024 * 1024
	maxRedirects    = 5
	acceptEncoding  = "gzip, br, zstd, deflate"
)

var (
	ErrInvalidURL       = errors.New("invalid image url")
	ErrNonOKStatus      = errors.New("image server returned non-OK status")
	ErrTooLarge         = errors.New("image exceeds size limit")
	ErrTooManyRedirects = errors.New("too many redirects")
)

//go:generate mockery --name=Fetcher --dir=. --output=./mocks --filename=fetcher_mock.go --case=underscore
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

type fetcher struct {
	client   httpx.FastClient
	timeout  time.Duration
	maxBytes int
	logger   *logrus.Logger
}

func NewFetcher(client httpx.FastClient, timeout time.Duration, maxBytes int, logger *logrus.Logger) Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &fetcher{
		client:   client,
		timeout:  timeout,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// Fetch downloads the image at rawURL, following up to five redirects. The
// returned slice is owned by the caller.
func (f *fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := parseImageURL(rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	for redirects := 0; ; redirects++ {
		req.Reset()
		resp.Reset()
		req.SetRequestURI(target.String())
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set(fasthttp.HeaderAccept, "image/*")
		req.Header.Set(fasthttp.HeaderAcceptEncoding, acceptEncoding)

		if err := httpx.DoWithContext(ctx, f.client, req, resp, f.timeout); err != nil {
			return nil, fmt.Errorf("fetch %s: %w", target.Redacted(), err)
		}

		status := resp.StatusCode()
		if !fasthttp.StatusCodeIsRedirect(status) {
			break
		}
		if redirects >= maxRedirects {
			return nil, ErrTooManyRedirects
		}
		location := string(resp.Header.Peek(fasthttp.HeaderLocation))
		next, err := target.Parse(location)
		if err != nil || location == "" {
			return nil, fmt.Errorf("%w: bad redirect location %q", ErrInvalidURL, location)
		}
		if target, err = parseImageURL(next.String()); err != nil {
			return nil, err
		}
	}

	if status := resp.StatusCode(); status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %d", ErrNonOKStatus, status)
	}

	body := resp.Body()
	if len(body) > f.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(body))
	}

	decoded, _, err := httpx.DecodeChain(resp, body, f.maxBytes)
	if errors.Is(err, httpx.ErrDecodedBodyTooLarge) {
		return nil, fmt.Errorf("%w: decoded body", ErrTooLarge)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", target.Redacted(), err)
	}

	f.logger.WithFields(logrus.Fields{
		"url":   target.Redacted(),
		"bytes": len(decoded),
	}).Debug("image fetched")

	// resp is pooled and its buffer is reused after release
	return append([]byte(nil), decoded...), nil
}

func parseImageURL(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}
