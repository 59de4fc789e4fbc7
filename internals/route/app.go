package routes

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	helper "coursemarket_backend/internals/helpers"
	"coursemarket_backend/internals/middlewares"
)

// NewApp merakit fiber app lengkap (dipakai main & test HTTP).
func NewApp(corsOrigins []string, deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          helper.FromFiberError,
		BodyLimit:             1 << 20,
	})

	middlewares.SetupMiddlewares(app, corsOrigins, deps.Metrics)
	SetupRoutes(app, deps)
	return app
}
