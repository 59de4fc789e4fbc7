package quizapi

import (
	"time"

	"coursemarket_backend/internals/features/quizzes/scoring"
)

type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

type Quiz struct {
	ID        string     `json:"quiz_id"`
	LectureID string     `json:"quiz_lecture_id"`
	Questions []Question `json:"quiz_questions"`
	TimeLimit int        `json:"quiz_time_limit"` // menit
	CreatedAt time.Time  `json:"quiz_created_at"`
	UpdatedAt time.Time  `json:"quiz_updated_at"`
}

// AnswerKey = index jawaban benar per soal, urut sesuai soal
func (q *Quiz) AnswerKey() []int {
	key := make([]int, len(q.Questions))
	for i, qq := range q.Questions {
		key[i] = qq.CorrectAnswer
	}
	return key
}

// Attempt sebagaimana dikirim server. Field skor berupa pointer: payload lama
// atau parsial bisa tidak membawanya, dan view model menghitung ulang.
type Attempt struct {
	ID               string           `json:"quiz_attempt_id"`
	QuizID           string           `json:"quiz_attempt_quiz_id"`
	UserID           string           `json:"quiz_attempt_user_id"`
	Answers          []scoring.Answer `json:"quiz_attempt_answers"`
	Score            *int             `json:"quiz_attempt_score,omitempty"`
	TotalQuestions   *int             `json:"quiz_attempt_total_questions,omitempty"`
	CorrectAnswers   *int             `json:"quiz_attempt_correct_answers,omitempty"`
	IncorrectAnswers *int             `json:"quiz_attempt_incorrect_answers,omitempty"`
	Unattempted      *int             `json:"quiz_attempt_unattempted,omitempty"`
	TimeTaken        *float64         `json:"quiz_attempt_time_taken,omitempty"`
	SubmittedAt      time.Time        `json:"quiz_attempt_submitted_at"`
	CreatedAt        time.Time        `json:"quiz_attempt_created_at"`
}

// HasScore: semua counter ada.
func (a *Attempt) HasScore() bool {
	return a.Score != nil && a.TotalQuestions != nil &&
		a.CorrectAnswers != nil && a.IncorrectAnswers != nil
}

type ScoreBreakdown struct {
	Score            int     `json:"score"`
	TotalQuestions   int     `json:"total_questions"`
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	Unattempted      int     `json:"unattempted"`
	TimeTaken        float64 `json:"time_taken"`
}

type SubmitRequest struct {
	Answers   []scoring.Answer `json:"answers"`
	TimeTaken float64          `json:"time_taken"`
}

type CreateQuizRequest struct {
	LectureID string     `json:"lecture_id"`
	Questions []Question `json:"questions"`
	TimeLimit *int       `json:"time_limit,omitempty"`
}

type takeResponse struct {
	HasAttempted bool     `json:"has_attempted"`
	Quiz         *Quiz    `json:"quiz,omitempty"`
	Attempt      *Attempt `json:"attempt,omitempty"`
}
