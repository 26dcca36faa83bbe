package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"
)

const (
	ProviderName = "openai"

	DefaultModel          = "text-embedding-3-small"
	defaultRequestTimeout = 30 * time.Second
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// embeddingService embeds text only. It cannot serve image mode.
type embeddingService struct {
	client openai.Client
	cfg    Config
	logger *logrus.Logger
}

func NewOpenAIEmbeddingService(cfg Config, httpClient *http.Client, logger *logrus.Logger) (embedding.Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		base := cfg.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		opts = append(opts, option.WithBaseURL(base))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &embeddingService{
		client: openai.NewClient(opts...),
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (s *embeddingService) EmbedText(ctx context.Context, text string) (embedding.Vector, error) {
	params := openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{OfString: openai.String(text)},
		Model: openai.EmbeddingModel(s.cfg.Model),
	}
	if s.cfg.Dimensions > 0 {
		params.Dimensions = openai.Int(int64(s.cfg.Dimensions))
	}

	start := time.Now()
	resp, err := s.client.Embeddings.New(ctx, params)
	prometheus.EmbeddingLatency.WithLabelValues(ProviderName, "text").
		Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			s.logger.WithField("status", apiErr.StatusCode).Error("non-OK response from embeddings API")
			return nil, fmt.Errorf("%w: %w: %d", embedding.ErrEncoding, embedding.ErrProviderNonOKResponse, apiErr.StatusCode)
		}
		s.logger.WithError(err).Error("error performing request for embeddings")
		return nil, fmt.Errorf("%w: %v", embedding.ErrEncoding, err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		s.logger.Error("empty embeddings received from API")
		return nil, fmt.Errorf("%w: empty embeddings from API", embedding.ErrEncoding)
	}

	vector := embedding.Vector(append([]float64(nil), resp.Data[0].Embedding...))
	if s.cfg.Dimensions > 0 && len(vector) != s.cfg.Dimensions {
		s.logger.Warnf("embedding size %d does not match expected dimension %d", len(vector), s.cfg.Dimensions)
	}
	embedding.Normalize(vector)
	return vector, nil
}

func (s *embeddingService) EmbedImage(context.Context, []byte) (embedding.Vector, error) {
	return nil, fmt.Errorf("%w: %s embeddings are text only", embedding.ErrUnsupportedModality, ProviderName)
}
