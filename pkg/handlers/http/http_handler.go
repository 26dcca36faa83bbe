package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport interface {
	GetTransport() interface{}
}

type HandlerTransportDTO struct {
	// Search
	SearchHandler       Handler
	UploadSearchHandler Handler

	// System
	GetVersionHandler Handler
	HealthHandler     Handler
}

func (t *HandlerTransportDTO) GetTransport() interface{} {
	return t
}
