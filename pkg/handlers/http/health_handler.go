package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const healthCheckTimeout = 2 * time.Second

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthHandler struct {
	logger   *logrus.Logger
	checks   map[string]Pinger
	clockNow func() time.Time
}

func NewHealthHandler(logger *logrus.Logger, checks map[string]Pinger) Handler {
	return &healthHandler{
		logger:   logger,
		checks:   checks,
		clockNow: time.Now,
	}
}

func (h *healthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthCheckTimeout)
	defer cancel()

	status := fiber.StatusOK
	deps := make(fiber.Map, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			h.logger.WithError(err).WithField("dependency", name).Warn("health check failed")
			deps[name] = err.Error()
			status = fiber.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	body := fiber.Map{
		"status": "ok",
		"time":   h.clockNow().Format(time.RFC3339),
	}
	if status != fiber.StatusOK {
		body["status"] = "degraded"
	}
	if len(deps) > 0 {
		body["dependencies"] = deps
	}
	return c.Status(status).JSON(body)
}
