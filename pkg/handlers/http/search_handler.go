package http

import (
	appSearch "github.com/NeuralTrust/TrustSearch/pkg/app/search"
	"github.com/NeuralTrust/TrustSearch/pkg/domain"
	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/handlers/http/request"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type searchHandler struct {
	logger   *logrus.Logger
	searcher appSearch.Searcher
}

func NewSearchHandler(logger *logrus.Logger, searcher appSearch.Searcher) Handler {
	return &searchHandler{
		logger:   logger,
		searcher: searcher,
	}
}

// Handle ranks web results against a text query or a remote image.
func (h *searchHandler) Handle(c *fiber.Ctx) error {
	var req request.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.WithError(err).Debug("failed to parse search request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	mode, err := req.Validate()
	if err != nil {
		return writeError(c, h.logger, domain.NewInputError(err))
	}

	var results []domainSearch.ScoredResult
	switch mode {
	case domainSearch.ModeImage:
		results, err = h.searcher.SearchImageURL(c.UserContext(), req.ImageURL, req.Query)
	default:
		results, err = h.searcher.SearchText(c.UserContext(), req.Query)
	}
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return writeResults(c, results)
}
