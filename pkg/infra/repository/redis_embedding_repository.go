package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/cache"
)

const EmbeddingCacheTTL = 24 * time.Hour

type redisEmbeddingRepository struct {
	cache cache.Client
}

func NewRedisEmbeddingRepository(cache cache.Client) embedding.Repository {
	return &redisEmbeddingRepository{
		cache: cache,
	}
}

func (r *redisEmbeddingRepository) Store(
	ctx context.Context,
	key string,
	vector embedding.Vector,
	ttl time.Duration,
) error {
	if ttl <= 0 {
		ttl = EmbeddingCacheTTL
	}
	jsonData, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to marshal embedding: %w", err)
	}
	return r.cache.Set(ctx, fmt.Sprintf(cache.EmbeddingKeyPattern, key), string(jsonData), ttl)
}

func (r *redisEmbeddingRepository) Get(ctx context.Context, key string) (embedding.Vector, error) {
	jsonData, err := r.cache.Get(ctx, fmt.Sprintf(cache.EmbeddingKeyPattern, key))
	if errors.Is(err, cache.ErrMiss) {
		return nil, embedding.ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get embedding from cache: %w", err)
	}

	var vector embedding.Vector
	if err := json.Unmarshal([]byte(jsonData), &vector); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedding: %w", err)
	}
	if len(vector) == 0 {
		return nil, embedding.ErrNotCached
	}
	return vector, nil
}
