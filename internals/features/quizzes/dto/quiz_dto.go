// file: internals/features/quizzes/dto/quiz_dto.go
package dto

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"coursemarket_backend/internals/features/quizzes/model"
)

/* ===================== REQUESTS ===================== */

type CreateQuizQuestionRequest struct {
	Question      string   `json:"question" validate:"required"`
	Options       []string `json:"options" validate:"required,min=1,dive,required"`
	CorrectAnswer *int     `json:"correct_answer" validate:"required,gte=0"`
}

type CreateQuizRequest struct {
	LectureID string                      `json:"lecture_id" validate:"required,uuid"`
	Questions []CreateQuizQuestionRequest `json:"questions" validate:"required,min=1,dive"`
	// menit; kosong / 0 → default
	TimeLimit *int `json:"time_limit" validate:"omitempty,gte=0,lte=1440"`
}

// Normalize trim teks soal & opsi sebelum validasi, supaya "   " ikut ditolak.
func (r *CreateQuizRequest) Normalize() {
	r.LectureID = strings.TrimSpace(r.LectureID)
	for i := range r.Questions {
		q := &r.Questions[i]
		q.Question = strings.TrimSpace(q.Question)
		for j := range q.Options {
			q.Options[j] = strings.TrimSpace(q.Options[j])
		}
	}
}

func (r *CreateQuizRequest) ToModel(defaultTimeLimit int) (*model.QuizModel, error) {
	lectureID, err := uuid.Parse(r.LectureID)
	if err != nil {
		return nil, err
	}
	qs := make([]model.QuizQuestion, 0, len(r.Questions))
	for _, q := range r.Questions {
		qs = append(qs, model.QuizQuestion{
			Question:      q.Question,
			Options:       append([]string(nil), q.Options...),
			CorrectAnswer: *q.CorrectAnswer,
		})
	}

	timeLimit := defaultTimeLimit
	if r.TimeLimit != nil && *r.TimeLimit > 0 {
		timeLimit = *r.TimeLimit
	}
	if timeLimit <= 0 {
		timeLimit = model.DefaultTimeLimitMinutes
	}

	m := &model.QuizModel{
		QuizLectureID: lectureID,
		QuizTimeLimit: timeLimit,
	}
	if err := m.SetQuestions(qs); err != nil {
		return nil, err
	}
	return m, nil
}

/* ===================== VALIDATOR ===================== */

// NewValidator: nama field pakai tag json + rule correct_answer < len(options).
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(CreateQuizQuestionRequest)
		if q.CorrectAnswer == nil || len(q.Options) == 0 {
			return
		}
		if *q.CorrectAnswer >= len(q.Options) {
			sl.ReportError(q.CorrectAnswer, "correct_answer", "CorrectAnswer", "ltfield", "options")
		}
	}, CreateQuizQuestionRequest{})
	return v
}

// FieldErrors mengubah validator.ValidationErrors ke map {field: [pesan]}
func FieldErrors(err error) map[string][]string {
	out := map[string][]string{}
	ves, ok := err.(validator.ValidationErrors)
	if !ok {
		out["_"] = []string{err.Error()}
		return out
	}
	for _, fe := range ves {
		key := strings.TrimPrefix(fe.Namespace(), "CreateQuizRequest.")
		out[key] = append(out[key], messageFor(fe))
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must have at least " + fe.Param() + " item(s)"
	case "uuid":
		return "must be a valid UUID"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "ltfield":
		return "must be a valid index into options"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

/* ===================== RESPONSES ===================== */

type QuizResponse struct {
	QuizID        uuid.UUID            `json:"quiz_id"`
	QuizLectureID uuid.UUID            `json:"quiz_lecture_id"`
	QuizQuestions []model.QuizQuestion `json:"quiz_questions"`
	QuizTimeLimit int                  `json:"quiz_time_limit"`
	QuizCreatedAt time.Time            `json:"quiz_created_at"`
	QuizUpdatedAt time.Time            `json:"quiz_updated_at"`
}

// Payload GET /quiz/:id: salah satu dari quiz atau attempt yang terisi.
type QuizForTakingResponse struct {
	HasAttempted bool                 `json:"has_attempted"`
	Quiz         *QuizResponse        `json:"quiz,omitempty"`
	Attempt      *QuizAttemptResponse `json:"attempt,omitempty"`
}

/* ===================== CONVERTERS ===================== */

func ToQuizResponse(m *model.QuizModel) (*QuizResponse, error) {
	if m == nil {
		return nil, nil
	}
	qs, err := m.Questions()
	if err != nil {
		return nil, err
	}
	return &QuizResponse{
		QuizID:        m.QuizID,
		QuizLectureID: m.QuizLectureID,
		QuizQuestions: qs,
		QuizTimeLimit: m.QuizTimeLimit,
		QuizCreatedAt: m.QuizCreatedAt,
		QuizUpdatedAt: m.QuizUpdatedAt,
	}, nil
}
