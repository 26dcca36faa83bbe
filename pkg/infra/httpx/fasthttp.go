package httpx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

const (
	DefaultTimeout             = 15 * time.Second
	DefaultMaxConnsPerHost     = 512
	DefaultMaxIdleConnDuration = 10 * time.Second
	DefaultReadBufferSize      = 8192
	DefaultWriteBufferSize     = 8192
	DefaultMaxResponseBodySize = 10 * 1024 * 1024
	DefaultUserAgent           = "TrustSearch/1.0"
)

type FastHTTPClientOptions struct {
	// Timeout bounds the whole exchange when the request context has no earlier deadline
	Timeout             time.Duration
	MaxConnsPerHost     int
	MaxIdleConnDuration time.Duration
	ReadBufferSize      int
	WriteBufferSize     int
	MaxResponseBodySize int
	UserAgent           string
}

type FastHTTPClientOption func(*FastHTTPClientOptions)

func WithTimeout(timeout time.Duration) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.Timeout = timeout
	}
}

func WithMaxConnsPerHost(max int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxConnsPerHost = max
	}
}

func WithMaxResponseBodySize(size int) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.MaxResponseBodySize = size
	}
}

func WithUserAgent(userAgent string) FastHTTPClientOption {
	return func(o *FastHTTPClientOptions) {
		o.UserAgent = userAgent
	}
}

// NewRawClient builds the shared *fasthttp.Client used across the service.
func NewRawClient(opts ...FastHTTPClientOption) *fasthttp.Client {
	options := defaultOptions(opts...)
	return &fasthttp.Client{
		ReadTimeout:              options.Timeout,
		WriteTimeout:             options.Timeout,
		MaxConnsPerHost:          options.MaxConnsPerHost,
		MaxIdleConnDuration:      options.MaxIdleConnDuration,
		ReadBufferSize:           options.ReadBufferSize,
		WriteBufferSize:          options.WriteBufferSize,
		MaxResponseBodySize:      options.MaxResponseBodySize,
		Name:                     options.UserAgent,
		NoDefaultUserAgentHeader: options.UserAgent == "",
	}
}

func defaultOptions(opts ...FastHTTPClientOption) *FastHTTPClientOptions {
	options := &FastHTTPClientOptions{
		Timeout:             DefaultTimeout,
		MaxConnsPerHost:     DefaultMaxConnsPerHost,
		MaxIdleConnDuration: DefaultMaxIdleConnDuration,
		ReadBufferSize:      DefaultReadBufferSize,
		WriteBufferSize:     DefaultWriteBufferSize,
		MaxResponseBodySize: DefaultMaxResponseBodySize,
		UserAgent:           DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// FastHTTPClient adapts a fasthttp client to the net/http Client interface.
type FastHTTPClient struct {
	client  FastClient
	timeout time.Duration
}

func NewFastHTTPClient(client FastClient, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FastHTTPClient{
		client:  client,
		timeout: timeout,
	}
}

func (c *FastHTTPClient) Do(req *http.Request) (*http.Response, error) {
	fastReq := fasthttp.AcquireRequest()
	fastResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(fastReq)
	defer fasthttp.ReleaseResponse(fastResp)

	if req.URL != nil {
		fastReq.SetRequestURI(req.URL.String())
	}
	fastReq.Header.SetMethod(req.Method)

	for key, values := range req.Header {
		for _, value := range values {
			fastReq.Header.Add(key, value)
		}
	}

	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		fastReq.SetBodyRaw(body)
	}

	if err := DoWithContext(req.Context(), c.client, fastReq, fastResp, c.timeout); err != nil {
		return nil, err
	}

	body, _, err := DecodeChain(fastResp, fastResp.Body(), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	// fastResp owns its buffer and is released on return
	bodyCopy := append([]byte(nil), body...)

	headers := make(http.Header)
	fastResp.Header.VisitAll(func(key, value []byte) {
		headers.Add(string(key), string(value))
	})
	headers.Del("Content-Encoding")

	statusCode := fastResp.StatusCode()
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)),
		StatusCode:    statusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        headers,
		Body:          io.NopCloser(bytes.NewReader(bodyCopy)),
		ContentLength: int64(len(bodyCopy)),
		Request:       req,
	}, nil
}

// DoWithContext runs the request with the smaller of timeout and the context deadline.
func DoWithContext(
	ctx context.Context,
	client FastClient,
	req *fasthttp.Request,
	resp *fasthttp.Response,
	timeout time.Duration,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return context.DeadlineExceeded
	}
	return client.DoTimeout(req, resp, timeout)
}
