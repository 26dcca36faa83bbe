package search

import (
	"context"
	"errors"
)

var (
	ErrMissingCredentials    = errors.New("search provider credentials are not configured")
	ErrProviderNonOKResponse = errors.New("search provider returned non-OK response")
)

//go:generate mockery --name=Provider --dir=. --output=./mocks --filename=provider_mock.go --case=underscore

// Provider runs a web search and returns hits in provider order.
type Provider interface {
	Search(ctx context.Context, query string) ([]Result, error)
}
