package search

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/NeuralTrust/TrustSearch/pkg/app/ranking"
	"github.com/NeuralTrust/TrustSearch/pkg/domain"
	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/imagefetch"
	"github.com/sirupsen/logrus"
)

const (
	DefaultImageQuery    = "image content"
	DefaultMaxUploadSize = 5 * 1024 * 1024
)

var DefaultAllowedExtensions = []string{"png", "jpg", "jpeg", "webp"}

//go:generate mockery --name=Searcher --dir=. --output=./mocks --filename=searcher_mock.go --case=underscore
type Searcher interface {
	SearchText(ctx context.Context, query string) ([]domainSearch.ScoredResult, error)
	SearchImageURL(ctx context.Context, imageURL, hint string) ([]domainSearch.ScoredResult, error)
	SearchImageUpload(ctx context.Context, filename string, data []byte, hint string) ([]domainSearch.ScoredResult, error)
}

type Config struct {
	// ImageQuery is the web query for image searches without a hint.
	ImageQuery        string
	MaxTextLength     int
	MaxUploadSize     int
	AllowedExtensions []string
}

type searcher struct {
	logger   *logrus.Logger
	provider domainSearch.Provider
	embedder embedding.Embedder
	fetcher  imagefetch.Fetcher
	ranker   *ranking.Ranker
	cfg      Config
	allowed  map[string]struct{}
}

func NewSearcher(
	logger *logrus.Logger,
	provider domainSearch.Provider,
	embedder embedding.Embedder,
	fetcher imagefetch.Fetcher,
	ranker *ranking.Ranker,
	cfg Config,
) Searcher {
	if strings.TrimSpace(cfg.ImageQuery) == "" {
		cfg.ImageQuery = DefaultImageQuery
	}
	if cfg.MaxTextLength <= 0 {
		cfg.MaxTextLength = ranking.DefaultMaxTextLength
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(cfg.AllowedExtensions) == 0 {
		cfg.AllowedExtensions = DefaultAllowedExtensions
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return &searcher{
		logger:   logger,
		provider: provider,
		embedder: embedder,
		fetcher:  fetcher,
		ranker:   ranker,
		cfg:      cfg,
		allowed:  allowed,
	}
}

func (s *searcher) SearchText(ctx context.Context, query string) ([]domainSearch.ScoredResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewInputError(domain.ErrEmptyQuery)
	}

	vector, err := s.embedder.EmbedText(ctx, ranking.Truncate(query, s.cfg.MaxTextLength))
	if err != nil {
		return nil, encodingError(err)
	}
	return s.rank(ctx, query, vector, domainSearch.ModeText)
}

func (s *searcher) SearchImageURL(ctx context.Context, imageURL, hint string) ([]domainSearch.ScoredResult, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, domain.NewInputError(domain.ErrMissingImageURL)
	}

	data, err := s.fetcher.Fetch(ctx, imageURL)
	if err != nil {
		return nil, encodingError(err)
	}
	vector, err := s.embedder.EmbedImage(ctx, data)
	if err != nil {
		return nil, encodingError(err)
	}
	return s.rank(ctx, s.imageQuery(hint), vector, domainSearch.ModeImage)
}

func (s *searcher) SearchImageUpload(
	ctx context.Context,
	filename string,
	data []byte,
	hint string,
) ([]domainSearch.ScoredResult, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.NewInputError(domain.ErrEmptyFilename)
	}
	if !s.allowedFile(filename) {
		return nil, domain.NewInputError(domain.ErrUnsupportedImageType)
	}
	if len(data) > s.cfg.MaxUploadSize {
		return nil, domain.NewInputError(domain.ErrImageTooLarge)
	}

	vector, err := s.embedder.EmbedImage(ctx, data)
	if err != nil {
		return nil, encodingError(err)
	}
	return s.rank(ctx, s.imageQuery(hint), vector, domainSearch.ModeImage)
}

func (s *searcher) rank(
	ctx context.Context,
	query string,
	vector embedding.Vector,
	mode domainSearch.Mode,
) ([]domainSearch.ScoredResult, error) {
	results, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	ranked, err := s.ranker.Rank(ctx, vector, results, mode)
	if err != nil {
		return nil, err
	}
	for i := range ranked {
		ranked[i].Score = roundScore(ranked[i].Score)
	}

	s.logger.WithFields(logrus.Fields{
		"mode":       mode,
		"candidates": len(results),
		"ranked":     len(ranked),
	}).Info("search ranked")
	return ranked, nil
}

func (s *searcher) imageQuery(hint string) string {
	if hint = strings.TrimSpace(hint); hint != "" {
		return hint
	}
	return s.cfg.ImageQuery
}

func (s *searcher) allowedFile(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return false
	}
	_, ok := s.allowed[ext]
	return ok
}

func encodingError(err error) error {
	return domain.NewEncodingError(fmt.Errorf("%w: %w", domain.ErrEncodingFailed, err))
}

func roundScore(score float64) float64 {
	return math.Round(score*1000) / 1000
}
