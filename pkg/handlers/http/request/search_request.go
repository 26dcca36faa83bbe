package request

import (
	"strings"

	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
)

type SearchRequest struct {
	Mode     string `json:"mode"`
	Query    string `json:"query"`
	ImageURL string `json:"image_url"`
}

func (r *SearchRequest) Validate() (domainSearch.Mode, error) {
	r.Query = strings.TrimSpace(r.Query)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	return domainSearch.ParseMode(r.Mode)
}
