package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/embedding"
	"github.com/stretchr/testify/mock"
)

var (
	_ embedding.Embedder   = (*Embedder)(nil)
	_ embedding.Repository = (*Repository)(nil)
)

type Embedder struct {
	mock.Mock
}

func (m *Embedder) EmbedText(ctx context.Context, text string) (embedding.Vector, error) {
	args := m.Called(ctx, text)
	return vectorArg(args.Get(0)), args.Error(1)
}

func (m *Embedder) EmbedImage(ctx context.Context, image []byte) (embedding.Vector, error) {
	args := m.Called(ctx, image)
	return vectorArg(args.Get(0)), args.Error(1)
}

func vectorArg(v interface{}) embedding.Vector {
	switch val := v.(type) {
	case nil:
		return nil
	case embedding.Vector:
		return val
	case []float64:
		return val
	default:
		panic(fmt.Sprintf("expected embedding.Vector, got %T", v))
	}
}

type Repository struct {
	mock.Mock
}

func (m *Repository) Get(ctx context.Context, key string) (embedding.Vector, error) {
	args := m.Called(ctx, key)
	return vectorArg(args.Get(0)), args.Error(1)
}

func (m *Repository) Store(ctx context.Context, key string, vector embedding.Vector, ttl time.Duration) error {
	args := m.Called(ctx, key, vector, ttl)
	return args.Error(0)
}
