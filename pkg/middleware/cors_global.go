package middleware

import (
	"strings"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/gofiber/fiber/v2"
)

type corsGlobalMiddleware struct {
	allowOrigins []string
	allowMethods string
	allowHeaders string
	allowAny     bool
}

func NewCORSGlobalMiddleware(cfg config.CORSConfig) Middleware {
	origins := splitList(cfg.AllowOrigins)
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	methods := strings.Join(splitList(cfg.AllowMethods), ", ")
	if methods == "" {
		methods = "GET, POST, OPTIONS"
	}
	return &corsGlobalMiddleware{
		allowOrigins: origins,
		allowMethods: methods,
		allowHeaders: strings.Join(splitList(cfg.AllowHeaders), ", "),
		allowAny:     hasStar(origins),
	}
}

func (m *corsGlobalMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" || !m.allowed(origin) {
			return c.Next()
		}

		c.Vary(fiber.HeaderOrigin)
		if m.allowAny {
			c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		} else {
			c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
		}
		c.Set(fiber.HeaderAccessControlExposeHeaders, RequestIDHeader)

		if c.Method() != fiber.MethodOptions || c.Get(fiber.HeaderAccessControlRequestMethod) == "" {
			return c.Next()
		}

		c.Set(fiber.HeaderAccessControlAllowMethods, m.allowMethods)
		switch {
		case m.allowHeaders != "":
			c.Set(fiber.HeaderAccessControlAllowHeaders, m.allowHeaders)
		case c.Get(fiber.HeaderAccessControlRequestHeaders) != "":
			c.Set(fiber.HeaderAccessControlAllowHeaders, c.Get(fiber.HeaderAccessControlRequestHeaders))
		default:
			c.Set(fiber.HeaderAccessControlAllowHeaders, fiber.HeaderContentType)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func (m *corsGlobalMiddleware) allowed(origin string) bool {
	if m.allowAny {
		return true
	}
	for _, o := range m.allowOrigins {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func hasStar(arr []string) bool {
	for _, v := range arr {
		if v == "*" {
			return true
		}
	}
	return false
}
