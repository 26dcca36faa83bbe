package ranking

import "github.com/NeuralTrust/TrustSearch/pkg/domain/search"

// DefaultMaxTextLength matches the CLIP text encoder context window.
const DefaultMaxTextLength = 77

// TextRepresentation is the text embedded for a result in text mode: the
// title and snippet, with the URL standing in for a missing snippet.
func TextRepresentation(r search.Result) string {
	second := r.Snippet
	if second == "" {
		second = r.URL
	}
	return r.Title + " " + second
}

// Truncate returns the first n characters of s. It never splits a UTF-8 sequence.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
