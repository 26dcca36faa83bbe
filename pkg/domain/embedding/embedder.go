package embedding

import (
	"context"
	"errors"
)

var (
	ErrEncoding              = errors.New("embedding model failed to encode input")
	ErrDecode                = errors.New("input is not a valid image")
	ErrUnsupportedModality   = errors.New("embedding provider does not support this input modality")
	ErrProviderNonOKResponse = errors.New("embedding provider returned non-OK response")
)

//go:generate mockery --name=Embedder --dir=. --output=./mocks --filename=embedder_mock.go --case=underscore

// Embedder maps text or image bytes into one shared vector space.
type Embedder interface {
	EmbedText(ctx context.Context, text string) (Vector, error)
	EmbedImage(ctx context.Context, image []byte) (Vector, error)
}
