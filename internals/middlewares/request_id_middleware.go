package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/utils"
)

const (
	RequestIDHeader = "X-Request-ID"
	RequestIDLocal  = "request_id"
)

// RequestID: pakai X-Request-ID dari client kalau ada, selain itu UUID baru.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := strings.TrimSpace(c.Get(RequestIDHeader))
		if rid == "" || len(rid) > 128 {
			rid = utils.UUID()
		}
		c.Locals(RequestIDLocal, rid)
		c.Set(RequestIDHeader, rid)
		return c.Next()
	}
}
