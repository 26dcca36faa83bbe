package clip

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"strings"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/httpx"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
	_ "golang.org/x/image/webp" // register decoder
)

const (
	ProviderName = "clip"

	DefaultModel          = "openai/clip-vit-base-patch32"
	DefaultDimensions     = 512
	defaultRequestTimeout = 30 * time.Second

	textPath   = "/v1/embeddings/text"
	imagePath  = "/v1/embeddings/image"
	healthPath = "/health"
)

type Config struct {
	BaseURL    string
	Model      string
	APIKey     string
	Dimensions int
	Timeout    time.Duration
}

type textRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type imageRequest struct {
	Model string `json:"model"`
	Image string `json:"image"`
}

type embeddingData struct {
	Embedding []float64 `json:"embedding"`
	Index     int       `json:"index"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbeddingService talks to a CLIP inference server exposing one text and one
// image endpoint over the same joint embedding space.
type EmbeddingService struct {
	client httpx.FastClient
	cfg    Config
	logger *logrus.Logger
}

func NewCLIPEmbeddingService(client httpx.FastClient, cfg Config, logger *logrus.Logger) *EmbeddingService {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRequestTimeout
	}
	return &EmbeddingService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *EmbeddingService) EmbedText(ctx context.Context, text string) (embedding.Vector, error) {
	payload, err := json.Marshal(textRequest{Model: s.cfg.Model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embedding.ErrEncoding, err)
	}
	return s.embed(ctx, "text", textPath, payload)
}

func (s *EmbeddingService) EmbedImage(ctx context.Context, data []byte) (embedding.Vector, error) {
	if err := ValidateImage(data); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(imageRequest{
		Model: s.cfg.Model,
		Image: base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embedding.ErrEncoding, err)
	}
	return s.embed(ctx, "image", imagePath, payload)
}

// Ping checks the inference server is reachable and has its model loaded.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.cfg.BaseURL + healthPath)
	req.Header.SetMethod(fasthttp.MethodGet)
	s.authorize(req)

	if err := httpx.DoWithContext(ctx, s.client, req, resp, s.cfg.Timeout); err != nil {
		return fmt.Errorf("clip server unreachable: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return fmt.Errorf("%w: %d", embedding.ErrProviderNonOKResponse, resp.StatusCode())
	}
	return nil
}

func (s *EmbeddingService) embed(ctx context.Context, modality, path string, payload []byte) (embedding.Vector, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.cfg.BaseURL + path)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	s.authorize(req)
	req.SetBodyRaw(payload)

	start := time.Now()
	err := httpx.DoWithContext(ctx, s.client, req, resp, s.cfg.Timeout)
	prometheus.EmbeddingLatency.WithLabelValues(ProviderName, modality).
		Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		s.logger.WithError(err).WithField("modality", modality).Error("error performing HTTP request for embeddings")
		return nil, fmt.Errorf("%w: %v", embedding.ErrEncoding, err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		s.logger.WithFields(logrus.Fields{
			"status":   status,
			"modality": modality,
			"response": truncateBody(resp.Body()),
		}).Warn("non-OK response from clip server")
		if modality == "image" && isDecodeStatus(status) {
			return nil, fmt.Errorf("%w: server rejected image with status %d", embedding.ErrDecode, status)
		}
		return nil, fmt.Errorf("%w: %w: %d", embedding.ErrEncoding, embedding.ErrProviderNonOKResponse, status)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(resp.Body(), &embResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode embeddings response: %v", embedding.ErrEncoding, err)
	}
	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embeddings from server", embedding.ErrEncoding)
	}

	vector := embedding.Vector(embResp.Data[0].Embedding)
	if len(vector) != s.cfg.Dimensions {
		s.logger.Warnf("embedding size %d does not match expected dimension %d", len(vector), s.cfg.Dimensions)
	}
	embedding.Normalize(vector)
	return vector, nil
}

func (s *EmbeddingService) authorize(req *fasthttp.Request) {
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}
}

// ValidateImage reports embedding.ErrDecode unless data starts with a
// decodable png, jpeg, gif or webp header.
func ValidateImage(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: empty image", embedding.ErrDecode)
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", embedding.ErrDecode, err)
	}
	return nil
}

func isDecodeStatus(status int) bool {
	switch status {
	case fasthttp.StatusBadRequest, fasthttp.StatusUnsupportedMediaType, fasthttp.StatusUnprocessableEntity:
		return true
	}
	return false
}

func truncateBody(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit])
	}
	return string(body)
}
