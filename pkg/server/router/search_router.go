package router

import (
	"time"

	handlers "github.com/NeuralTrust/TrustSearch/pkg/handlers/http"
	"github.com/NeuralTrust/TrustSearch/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

const (
	HealthPath       = "/health"
	PingPath         = "/__/ping"
	VersionPath      = "/version"
	SearchPath       = "/search"
	UploadSearchPath = "/upload_search"
)

type searchRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewSearchRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &searchRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *searchRouter) BuildRoutes(router *fiber.App) error {
	handlerTransport, ok := r.handlerTransport.GetTransport().(*handlers.HandlerTransportDTO)
	if !ok {
		return ErrInvalidHandlerTransport
	}

	if r.middlewareTransport != nil {
		if mws := r.middlewareTransport.GetMiddlewares(); len(mws) > 0 {
			router.Use(mws...)
		}
	}

	if handlerTransport.HealthHandler != nil {
		router.Get(HealthPath, handlerTransport.HealthHandler.Handle)
	} else {
		router.Get(HealthPath, func(ctx *fiber.Ctx) error {
			return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
				"status": "ok",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
	}

	router.Get(PingPath, func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "pong",
		})
	})

	if handlerTransport.GetVersionHandler != nil {
		router.Get(VersionPath, handlerTransport.GetVersionHandler.Handle)
	}

	router.Post(SearchPath, handlerTransport.SearchHandler.Handle)
	router.Post(UploadSearchPath, handlerTransport.UploadSearchHandler.Handle)
	return nil
}
