package embedding

import (
	"context"
	"errors"
	"time"
)

var ErrNotCached = errors.New("embedding not cached")

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=embedding_repository_mock.go --case=underscore

type Repository interface {
	Get(ctx context.Context, key string) (Vector, error)
	Store(ctx context.Context, key string, vector Vector, ttl time.Duration) error
}
