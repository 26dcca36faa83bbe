package response

import domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"

type SearchResult struct {
	URL     string  `json:"url"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Image   *string `json:"image"`
	Score   float64 `json:"score"`
}

// NewSearchResults never returns nil so an empty ranking encodes as [].
func NewSearchResults(results []domainSearch.ScoredResult) []SearchResult {
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		item := SearchResult{
			URL:     r.Result.URL,
			Title:   r.Result.Title,
			Snippet: r.Result.Snippet,
			Score:   r.Score,
		}
		if r.Result.HasImage() {
			image := r.Result.ImageURL
			item.Image = &image
		}
		out = append(out, item)
	}
	return out
}
