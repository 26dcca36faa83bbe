package search

// Result is a single web search hit. ImageURL is empty when the hit has no image.
type Result struct {
	URL      string `json:"url"`
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	ImageURL string `json:"image_url,omitempty"`
}

// ScoredResult attaches a similarity score to a Result without modifying it.
type ScoredResult struct {
	Result Result
	Score  float64 // cosine similarity, 1.0 is an exact match
}

func (r Result) HasImage() bool {
	return r.ImageURL != ""
}
