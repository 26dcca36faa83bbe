package cached

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const DefaultTTL = 24 * time.Hour

// Embedder serves repeated inputs from a Repository. Any cache failure falls
// through to the wrapped embedder.
type Embedder struct {
	next      embedding.Embedder
	repo      embedding.Repository
	namespace string
	ttl       time.Duration
	logger    *logrus.Logger
}

// NewCachedEmbedder wraps next. namespace must identify the provider and model
// so vectors from different embedding spaces never share a key.
func NewCachedEmbedder(
	next embedding.Embedder,
	repo embedding.Repository,
	namespace string,
	ttl time.Duration,
	logger *logrus.Logger,
) *Embedder {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Embedder{
		next:      next,
		repo:      repo,
		namespace: namespace,
		ttl:       ttl,
		logger:    logger,
	}
}

func (e *Embedder) EmbedText(ctx context.Context, text string) (embedding.Vector, error) {
	return e.cached(ctx, TextKey(e.namespace, text), func() (embedding.Vector, error) {
		return e.next.EmbedText(ctx, text)
	})
}

func (e *Embedder) EmbedImage(ctx context.Context, image []byte) (embedding.Vector, error) {
	return e.cached(ctx, ImageKey(e.namespace, image), func() (embedding.Vector, error) {
		return e.next.EmbedImage(ctx, image)
	})
}

func (e *Embedder) cached(
	ctx context.Context,
	key string,
	compute func() (embedding.Vector, error),
) (embedding.Vector, error) {
	vector, err := e.repo.Get(ctx, key)
	switch {
	case err == nil:
		prometheus.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
		return vector, nil
	case errors.Is(err, embedding.ErrNotCached):
		prometheus.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
	default:
		prometheus.EmbeddingCacheTotal.WithLabelValues("error").Inc()
		e.logger.WithError(err).Warn("embedding cache lookup failed")
	}

	vector, err = compute()
	if err != nil {
		return nil, err
	}
	if err := e.repo.Store(ctx, key, vector, e.ttl); err != nil {
		e.logger.WithError(err).Warn("failed to store embedding in cache")
	}
	return vector, nil
}

func TextKey(namespace, text string) string {
	sum := sha256.Sum256([]byte(namespace + "|" + text))
	return "text:" + hex.EncodeToString(sum[:])
}

func ImageKey(namespace string, image []byte) string {
	h := sha256.New()
	h.Write([]byte(namespace + "|"))
	h.Write(image)
	return "image:" + hex.EncodeToString(h.Sum(nil))
}

// Unwrap returns the embedder behind the cache.
func (e *Embedder) Unwrap() embedding.Embedder {
	return e.next
}
