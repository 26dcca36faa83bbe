package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

type requestIDMiddleware struct{}

func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{}
}

// Middleware keeps a caller supplied id and otherwise assigns a new one.
func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.New().String()
		}
		c.Locals(requestIDKey{}, id)
		c.SetUserContext(context.WithValue(c.UserContext(), requestIDKey{}, id))
		c.Set(RequestIDHeader, id)
		return c.Next()
	}
}

func RequestID(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDKey{}).(string) //nolint:errcheck
	return id
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string) //nolint:errcheck
	return id
}
