package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a failure on the primary request path.
type Kind string

const (
	KindInput    Kind = "input"
	KindEncoding Kind = "encoding"
	KindProvider Kind = "provider"
	KindNetwork  Kind = "network"
)

var (
	ErrEmptyQuery           = errors.New("empty query")
	ErrMissingImageURL      = errors.New("missing image url")
	ErrMissingImageFile     = errors.New("no image file sent")
	ErrEmptyFilename        = errors.New("no image file selected")
	ErrUnsupportedImageType = errors.New("unsupported file type")
	ErrImageTooLarge        = errors.New("image exceeds maximum upload size")
	ErrEncodingFailed       = errors.New("encoding failed")
)

type searchError struct {
	Kind Kind
	Err  error
}

func (e *searchError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Err.Error())
}

func (e *searchError) Unwrap() error {
	return e.Err
}

func NewInputError(err error) error {
	return &searchError{Kind: KindInput, Err: err}
}

func NewEncodingError(err error) error {
	return &searchError{Kind: KindEncoding, Err: err}
}

func NewProviderError(err error) error {
	return &searchError{Kind: KindProvider, Err: err}
}

func NewNetworkError(err error) error {
	return &searchError{Kind: KindNetwork, Err: err}
}

// Message returns the wrapped message of a search error without its kind
// prefix. Other errors are returned as is.
func Message(err error) string {
	var se *searchError
	if errors.As(err, &se) {
		return se.Err.Error()
	}
	return err.Error()
}

// KindOf reports the classification of err, or "" when err is not a search error.
func KindOf(err error) Kind {
	var se *searchError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

func IsInputError(err error) bool {
	return KindOf(err) == KindInput
}

func IsEncodingError(err error) bool {
	return KindOf(err) == KindEncoding
}
