package middleware

import (
	"strconv"
	"time"

	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const unmatchedRoute = "unmatched"

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := unmatchedRoute
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		elapsed := time.Since(start)

		prometheus.RequestTotal.WithLabelValues(route, c.Method(), strconv.Itoa(status)).Inc()
		if prometheus.Config.EnableLatency {
			prometheus.RequestLatency.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
		}

		m.logger.WithFields(logrus.Fields{
			"method":      c.Method(),
			"route":       route,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"request_id":  RequestID(c),
		}).Debug("request served")
		return err
	}
}
