// file: internals/route/index.go
package routes

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	quizController "coursemarket_backend/internals/features/quizzes/controller"
	quizRoute "coursemarket_backend/internals/features/quizzes/route"
	"coursemarket_backend/internals/features/quizzes/service"
	"coursemarket_backend/internals/logger"
	"coursemarket_backend/internals/metrics"
	authMiddleware "coursemarket_backend/internals/middlewares/auth"
)

// Deps: semua yang dibutuhkan route; dirakit di main.
type Deps struct {
	QuizService *service.QuizService
	Metrics     *metrics.Metrics
	JWTSecret   string
	// Ping cek koneksi storage untuk /health; nil → selalu OK
	Ping func(ctx context.Context) error
}

var startTime time.Time

func SetupRoutes(app *fiber.App, deps Deps) {
	startTime = time.Now()

	logger.Log.Info("[INFO] Setting up base routes...")
	BaseRoutes(app, deps)

	// ===================== PRIVATE (JWT wajib) =====================
	logger.Log.Info("[INFO] Setting up /api/v1 group...")
	v1 := app.Group("/api/v1", authMiddleware.AuthMiddleware(deps.JWTSecret))

	// ===================== MOUNT ROUTES =====================
	logger.Log.Info("[INFO] Mounting quiz routes...")
	quizRoute.QuizRoutes(v1, quizController.NewQuizController(deps.QuizService))
}
