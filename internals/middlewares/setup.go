package middlewares

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"coursemarket_backend/internals/metrics"
	"coursemarket_backend/internals/middlewares/logger"
)

// RequestTimeout: HTTP timeout guard (selaras dengan statement_timeout di DB)
func RequestTimeout(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), d)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// SetupMiddlewares: urutan penting; request id dulu supaya log & panic ikut membawa id.
func SetupMiddlewares(app *fiber.App, corsOrigins []string, m *metrics.Metrics) {
	app.Use(RequestID())
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware())
	if m != nil {
		app.Use(m.Middleware())
	}

	// ⚙️ performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	app.Use(CorsMiddleware(corsOrigins))
	app.Use(GlobalRateLimiter())
	app.Use(RequestTimeout(5 * time.Second))
}
