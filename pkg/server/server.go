package server

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/NeuralTrust/TrustSearch/pkg/infra/prometheus"
	"github.com/NeuralTrust/TrustSearch/pkg/server/router"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	MetricsPath = "/metrics"
	// multipartOverhead covers boundaries and the optional query field around an upload
	multipartOverhead = 64 * 1024
)

// Server interface defines the common behavior for all servers
type Server interface {
	Run() error
	Shutdown() error
}

type BaseServer struct {
	Config         *config.Config
	Logger         *logrus.Logger
	Router         *fiber.App
	metricsApp     *fiber.App
	metricsStarted bool
}

func NewBaseServer(cfg *config.Config, logger *logrus.Logger) *BaseServer {
	r := fiber.New(fiber.Config{
		AppName:               "TrustSearch",
		DisableStartupMessage: true,
		Network:               fiber.NetworkTCP,
		BodyLimit:             bodyLimit(cfg.Upload.MaxSize),
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		IdleTimeout:           cfg.Server.IdleTimeout,
		ErrorHandler:          jsonErrorHandler,
	})

	r.Server().NoDefaultServerHeader = true

	return &BaseServer{
		Config: cfg,
		Logger: logger,
		Router: r,
	}
}

func (s *BaseServer) WithRouters(routers ...router.ServerRouter) *BaseServer {
	for _, r := range routers {
		if err := r.BuildRoutes(s.Router); err != nil {
			s.Logger.WithError(err).Error("failed to build routes")
		}
	}
	return s
}

func (s *BaseServer) Addr() string {
	return net.JoinHostPort(s.Config.Server.Host, strconv.Itoa(s.Config.Server.Port))
}

func (s *BaseServer) setupMetricsEndpoint() {
	if !s.Config.Metrics.Enabled {
		s.Logger.Info("prometheus metrics are disabled by configuration")
		return
	}
	if s.metricsStarted {
		return
	}
	s.metricsStarted = true

	s.metricsApp = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	s.metricsApp.Use(recover.New())

	handler := fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(prometheus.Gatherer(), promhttp.HandlerOpts{}),
	)
	s.metricsApp.Get(MetricsPath, func(c *fiber.Ctx) error {
		handler(c.Context())
		return nil
	})

	go func() {
		addr := net.JoinHostPort(s.Config.Server.Host, strconv.Itoa(s.Config.Server.MetricsPort))
		s.Logger.WithField("addr", addr).Info("starting metrics server")
		if err := s.metricsApp.Listen(addr); err != nil {
			if !strings.Contains(err.Error(), "address already in use") {
				s.Logger.WithError(err).Error("failed to start metrics server")
			}
		}
	}()
}

func (s *BaseServer) shutdownMetrics() error {
	if s.metricsApp == nil {
		return nil
	}
	return s.metricsApp.Shutdown()
}

func bodyLimit(maxUpload int) int {
	if maxUpload <= 0 {
		return fiber.DefaultBodyLimit
	}
	return maxUpload + multipartOverhead
}

// jsonErrorHandler keeps framework errors in the same {error} shape as handler errors.
func jsonErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if fe, ok := err.(*fiber.Error); ok {
		code = fe.Code
	}
	if code == fiber.StatusRequestEntityTooLarge {
		return c.Status(code).JSON(fiber.Map{"error": fmt.Sprintf("request body exceeds %d bytes", c.App().Config().BodyLimit)})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
