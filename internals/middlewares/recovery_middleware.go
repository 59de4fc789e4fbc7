package middlewares

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"coursemarket_backend/internals/logger"
)

// RecoveryMiddleware menangkap panic; ErrorHandler yang menulis 500-nya
func RecoveryMiddleware() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			logger.Log.WithField("request_id", c.Locals(RequestIDLocal)).
				WithField("path", c.Path()).
				Error(fmt.Sprintf("🔥 panic recovered: %v", e))
		},
	})
}
