package route

import (
	"github.com/gofiber/fiber/v2"

	"coursemarket_backend/internals/constants"
	"coursemarket_backend/internals/features/quizzes/controller"
	"coursemarket_backend/internals/middlewares"
	authMiddleware "coursemarket_backend/internals/middlewares/auth"
)

/*
Catatan:
- Base: /api/v1/quiz (group sudah lewat AuthMiddleware)
- :quizId boleh "<uuid>:<apa saja>", suffix dibuang di service
*/
func QuizRoutes(r fiber.Router, ctl *controller.QuizController) {
	quiz := r.Group("/quiz")

	quiz.Post("/create",
		authMiddleware.OnlyRolesSlice(constants.RoleErrorInstructor("quiz creation"), constants.InstructorAndAbove),
		ctl.Create,
	)
	quiz.Get("/:quizId", ctl.GetForTaking)
	quiz.Post("/:quizId/submit", middlewares.SubmitRateLimiter(), ctl.Submit)
	quiz.Get("/:quizId/attempts", ctl.ListAttempts)
}
