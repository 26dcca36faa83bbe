package http

import (
	"errors"

	"github.com/NeuralTrust/TrustSearch/pkg/domain"
	domainSearch "github.com/NeuralTrust/TrustSearch/pkg/domain/search"
	"github.com/NeuralTrust/TrustSearch/pkg/handlers/http/response"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// statusFor maps a search failure onto the HTTP status returned to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrImageTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, domainSearch.ErrInvalidMode):
		return fiber.StatusBadRequest
	case domain.IsInputError(err):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	status := statusFor(err)
	entry := logger.WithError(err).WithFields(logrus.Fields{
		"path":   c.Path(),
		"status": status,
	})
	if status >= fiber.StatusInternalServerError {
		entry.Error("search request failed")
	} else {
		entry.Debug("search request rejected")
	}
	return c.Status(status).JSON(fiber.Map{"error": domain.Message(err)})
}

func writeResults(c *fiber.Ctx, results []domainSearch.ScoredResult) error {
	return c.Status(fiber.StatusOK).JSON(response.NewSearchResults(results))
}
