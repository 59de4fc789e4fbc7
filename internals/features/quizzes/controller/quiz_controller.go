// file: internals/features/quizzes/controller/quiz_controller.go
package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"coursemarket_backend/internals/features/quizzes/dto"
	"coursemarket_backend/internals/features/quizzes/service"
	helper "coursemarket_backend/internals/helpers"
	"coursemarket_backend/internals/logger"
)

const errCodeAlreadyAttempted = "ALREADY_ATTEMPTED"

type QuizController struct {
	Svc *service.QuizService
}

func NewQuizController(svc *service.QuizService) *QuizController {
	return &QuizController{Svc: svc}
}

func requestLog(c *fiber.Ctx) *logrus.Entry {
	return logger.Log.WithFields(logrus.Fields{
		"request_id": c.Locals("request_id"),
		"user_id":    c.Locals(helper.LocalUserID),
		"path":       c.Path(),
	})
}

// writeError: satu tempat mapping error domain → HTTP
func (ctl *QuizController) writeError(c *fiber.Ctx, err error) error {
	var (
		ve service.ValidationErrors
		fe *fiber.Error
	)
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve)
	case errors.Is(err, service.ErrInvalidID):
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid quiz id")
	case errors.Is(err, service.ErrLectureNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Lecture not found")
	case errors.Is(err, service.ErrQuizNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Quiz not found")
	case errors.As(err, &fe):
		return helper.JsonError(c, fe.Code, fe.Message)
	default:
		requestLog(c).WithError(err).Error("❌ quiz request failed")
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to process quiz request")
	}
}

/* =========================================================
   Handlers
========================================================= */

// POST /api/v1/quiz/create
func (ctl *QuizController) Create(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	quiz, err := ctl.Svc.CreateQuiz(c.UserContext(), &req)
	if err != nil {
		return ctl.writeError(c, err)
	}
	resp, err := dto.ToQuizResponse(quiz)
	if err != nil {
		return ctl.writeError(c, err)
	}
	return helper.JsonCreated(c, "Quiz created", resp)
}

// GET /api/v1/quiz/:quizId
// 200 untuk dua kasus: has_attempted=false + quiz, atau has_attempted=true + attempt.
func (ctl *QuizController) GetForTaking(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return ctl.writeError(c, err)
	}

	quiz, err := ctl.Svc.GetQuizForTaking(c.UserContext(), c.Params("quizId"), userID)
	if err != nil {
		var already *service.AlreadyAttemptedError
		if errors.As(err, &already) {
			return helper.JsonOK(c, "Quiz already attempted", dto.QuizForTakingResponse{
				HasAttempted: true,
				Attempt:      dto.ToQuizAttemptResponse(already.Attempt),
			})
		}
		return ctl.writeError(c, err)
	}

	resp, err := dto.ToQuizResponse(quiz)
	if err != nil {
		return ctl.writeError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.QuizForTakingResponse{
		HasAttempted: false,
		Quiz:         resp,
	})
}

// POST /api/v1/quiz/:quizId/submit
func (ctl *QuizController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return ctl.writeError(c, err)
	}

	var req dto.SubmitQuizRequest
	if len(strings.TrimSpace(string(c.Body()))) == 0 {
		return helper.JsonValidationError(c, map[string][]string{"answers": {dto.ErrAnswersMissing.Error()}})
	}
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	attempt, err := ctl.Svc.SubmitAttempt(c.UserContext(), c.Params("quizId"), userID, &req)
	if err != nil {
		var already *service.AlreadyAttemptedError
		if errors.As(err, &already) {
			var data any
			if already.Attempt != nil {
				data = dto.ToQuizAttemptResponse(already.Attempt)
			}
			return helper.JsonErrorWithData(c, fiber.StatusConflict, errCodeAlreadyAttempted,
				"You have already attempted this quiz", data)
		}
		return ctl.writeError(c, err)
	}

	return helper.JsonCreated(c, "Quiz submitted", dto.ToScoreBreakdown(attempt))
}

// GET /api/v1/quiz/:quizId/attempts
func (ctl *QuizController) ListAttempts(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return ctl.writeError(c, err)
	}

	rows, err := ctl.Svc.ListAttempts(c.UserContext(), c.Params("quizId"), userID)
	if err != nil {
		return ctl.writeError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToQuizAttemptResponses(rows))
}
