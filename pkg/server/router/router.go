package router

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type ServerRouter interface {
	BuildRoutes(router *fiber.App) error
}
