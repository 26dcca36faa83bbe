package ranking

import (
	"strings"
	"testing"

	"github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/stretchr/testify/assert"
)

func TestTextRepresentation(t *testing.T) {
	assert.Equal(t, "Cats All about cats",
		TextRepresentation(search.Result{Title: "Cats", Snippet: "All about cats", URL: "https://x"}))
	assert.Equal(t, "Cats https://x",
		TextRepresentation(search.Result{Title: "Cats", URL: "https://x"}))
	assert.Equal(t, " https://x", TextRepresentation(search.Result{URL: "https://x"}))
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "cats", n: 77, want: "cats"},
		{name: "ascii", in: strings.Repeat("a", 100), n: 77, want: strings.Repeat("a", 77)},
		{name: "multibyte", in: "héllo wörld", n: 4, want: "héll"},
		{name: "exact", in: "日本語", n: 3, want: "日本語"},
		{name: "zero", in: "abc", n: 0, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}
