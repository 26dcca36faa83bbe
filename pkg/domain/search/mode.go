package search

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidMode = errors.New("invalid mode, must be 'text' or 'image'")

// Mode selects which modality drives a ranking pass. One pass never mixes modes.
type Mode string

const (
	ModeText  Mode = "text"
	ModeImage Mode = "image"
)

// ParseMode accepts "text" or "image" case-insensitively. Blank input defaults to text.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeText:
		return ModeText, nil
	case ModeImage:
		return ModeImage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
	}
}

func (m Mode) Valid() bool {
	return m == ModeText || m == ModeImage
}

func (m Mode) String() string {
	return string(m)
}
