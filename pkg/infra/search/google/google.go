package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	ProviderName = "google"

	DefaultBaseURL    = "https://www.googleapis.com/customsearch/v1"
	DefaultMaxResults = 10
	DefaultTimeout    = 15 * time.Second

	responseFields  = "items(title,link,snippet,pagemap(cse_image,cse_thumbnail))"
	maxResponseSize = 2 * 1024 * 1024
)

// Options are optional Custom Search parameters passed through unchanged.
type Options struct {
	Safe string `mapstructure:"safe"`
	Lr   string `mapstructure:"lr"`
	Gl   string `mapstructure:"gl"`
}

type Config struct {
	APIKey     string
	EngineID   string
	BaseURL    string
	MaxResults int
	Timeout    time.Duration
	Options    Options
}

type provider struct {
	cfg     Config
	client  httpx.Client
	breaker httpx.CircuitBreaker
	parsers fastjson.ParserPool
	logger  *logrus.Logger
}

func NewProvider(cfg Config, client httpx.Client, breaker httpx.CircuitBreaker, logger *logrus.Logger) search.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.MaxResults <= 0 || cfg.MaxResults > DefaultMaxResults {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &provider{
		cfg:     cfg,
		client:  client,
		breaker: breaker,
		logger:  logger,
	}
}

func (p *provider) Search(ctx context.Context, query string) ([]search.Result, error) {
	if p.cfg.APIKey == "" || p.cfg.EngineID == "" {
		return nil, search.ErrMissingCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	var results []search.Result
	err := p.breaker.Execute(func() error {
		var err error
		results, err = p.search(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (p *provider) search(ctx context.Context, query string) ([]search.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(query), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("custom search request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		p.logger.WithFields(logrus.Fields{
			"status":   resp.StatusCode,
			"response": string(body),
		}).Warn("non-OK response from custom search")
		return nil, fmt.Errorf("%w: %d", search.ErrProviderNonOKResponse, resp.StatusCode)
	}

	return p.parse(body)
}

func (p *provider) requestURL(query string) string {
	params := url.Values{}
	params.Set("key", p.cfg.APIKey)
	params.Set("cx", p.cfg.EngineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(p.cfg.MaxResults))
	params.Set("fields", responseFields)
	if p.cfg.Options.Safe != "" {
		params.Set("safe", p.cfg.Options.Safe)
	}
	if p.cfg.Options.Lr != "" {
		params.Set("lr", p.cfg.Options.Lr)
	}
	if p.cfg.Options.Gl != "" {
		params.Set("gl", p.cfg.Options.Gl)
	}
	return p.cfg.BaseURL + "?" + params.Encode()
}

func (p *provider) parse(body []byte) ([]search.Result, error) {
	parser := p.parsers.Get()
	defer p.parsers.Put(parser)

	v, err := parser.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid custom search response: %w", err)
	}

	// a query with no hits has no "items" key at all
	items := v.GetArray("items")
	results := make([]search.Result, 0, len(items))
	for _, item := range items {
		link := string(item.GetStringBytes("link"))
		if link == "" {
			continue
		}
		results = append(results, search.Result{
			URL:      link,
			Title:    string(item.GetStringBytes("title")),
			Snippet:  string(item.GetStringBytes("snippet")),
			ImageURL: firstImage(item),
		})
		if len(results) == p.cfg.MaxResults {
			break
		}
	}
	return results, nil
}

// firstImage prefers the full page image over the thumbnail.
func firstImage(item *fastjson.Value) string {
	if src := item.GetStringBytes("pagemap", "cse_image", "0", "src"); len(src) > 0 {
		return string(src)
	}
	return string(item.GetStringBytes("pagemap", "cse_thumbnail", "0", "src"))
}
