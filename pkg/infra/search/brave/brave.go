package brave

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	ProviderName = "brave"

	DefaultBaseURL    = "https://api.search.brave.com/res/v1/web/search"
	DefaultMaxResults = 10
	DefaultTimeout    = 15 * time.Second

	maxResponseSize = 2 * 1024 * 1024
)

type Options struct {
	Country    string `mapstructure:"country"`
	SearchLang string `mapstructure:"search_lang"`
	SafeSearch string `mapstructure:"safesearch"`
}

type Config struct {
	APIKey     string
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

var highlightTags = strings.NewReplacer("<strong>", "", "</strong>", "")

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
	if p.cfg.APIKey == "" {
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
	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(p.cfg.MaxResults))
	if p.cfg.Options.Country != "" {
		params.Set("country", p.cfg.Options.Country)
	}
	if p.cfg.Options.SearchLang != "" {
		params.Set("search_lang", p.cfg.Options.SearchLang)
	}
	if p.cfg.Options.SafeSearch != "" {
		params.Set("safesearch", p.cfg.Options.SafeSearch)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", p.cfg.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave search request failed: %w", err)
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
		}).Warn("non-OK response from brave search")
		return nil, fmt.Errorf("%w: %d", search.ErrProviderNonOKResponse, resp.StatusCode)
	}

	parser := p.parsers.Get()
	defer p.parsers.Put(parser)
	v, err := parser.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("invalid brave search response: %w", err)
	}

	items := v.GetArray("web", "results")
	results := make([]search.Result, 0, len(items))
	for _, item := range items {
		link := string(item.GetStringBytes("url"))
		if link == "" {
			continue
		}
		results = append(results, search.Result{
			URL:      link,
			Title:    highlightTags.Replace(string(item.GetStringBytes("title"))),
			Snippet:  highlightTags.Replace(string(item.GetStringBytes("description"))),
			ImageURL: string(item.GetStringBytes("thumbnail", "src")),
		})
		if len(results) == p.cfg.MaxResults {
			break
		}
	}
	return results, nil
}
