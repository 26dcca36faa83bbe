package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/TrustSearch/pkg/config"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newApp(t *Transport) *fiber.App {
	app := fiber.New()
	app.Use(t.GetMiddlewares()...)
	return app
}

func TestPanicRecoverMiddleware(t *testing.T) {
	app := newApp(&Transport{PanicRecoverMiddleware: NewPanicRecoverMiddleware(newTestLogger())})
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"internal server error"}`, string(body))
}

func TestRequestIDMiddleware(t *testing.T) {
	app := newApp(&Transport{RequestIDMiddleware: NewRequestIDMiddleware()})
	var seen, fromCtx string
	app.Get("/id", func(c *fiber.Ctx) error {
		seen = RequestID(c)
		fromCtx = RequestIDFromContext(c.UserContext())
		return c.SendStatus(fiber.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/id", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()

		id := resp.Header.Get(RequestIDHeader)
		_, err = uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)
		assert.Equal(t, id, fromCtx)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(fiber.MethodGet, "/id", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))
		assert.Equal(t, "abc-123", seen)
	})
}

func TestCORSGlobalMiddleware(t *testing.T) {
	t.Run("wildcard origin", func(t *testing.T) {
		app := newApp(&Transport{CORSMiddleware: NewCORSGlobalMiddleware(config.CORSConfig{AllowOrigins: "*"})})
		app.Post("/search", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

		req := httptest.NewRequest(fiber.MethodPost, "/search", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://app.example")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("preflight", func(t *testing.T) {
		cfg := config.CORSConfig{AllowOrigins: "https://app.example", AllowMethods: "GET,POST"}
		app := newApp(&Transport{CORSMiddleware: NewCORSGlobalMiddleware(cfg)})
		app.Post("/search", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

		req := httptest.NewRequest(fiber.MethodOptions, "/search", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://app.example")
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, fiber.MethodPost)
		req.Header.Set(fiber.HeaderAccessControlRequestHeaders, "Content-Type")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, "https://app.example", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "GET, POST", resp.Header.Get(fiber.HeaderAccessControlAllowMethods))
		assert.Equal(t, "Content-Type", resp.Header.Get(fiber.HeaderAccessControlAllowHeaders))
	})

	t.Run("foreign origin", func(t *testing.T) {
		cfg := config.CORSConfig{AllowOrigins: "https://app.example"}
		app := newApp(&Transport{CORSMiddleware: NewCORSGlobalMiddleware(cfg)})
		app.Post("/search", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

		req := httptest.NewRequest(fiber.MethodPost, "/search", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://evil.example")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})
}

func TestMetricsMiddleware_PassesThrough(t *testing.T) {
	app := newApp(&Transport{MetricsMiddleware: NewMetricsMiddleware(newTestLogger())})
	app.Get("/ok", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) })
	app.Get("/fail", func(c *fiber.Ctx) error { return fiber.ErrTeapot })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/fail", nil), -1)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b "))
	assert.Nil(t, splitList(""))
}
