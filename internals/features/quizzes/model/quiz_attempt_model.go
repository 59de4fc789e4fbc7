// file: internals/features/quizzes/model/quiz_attempt_model.go
package model

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"coursemarket_backend/internals/features/quizzes/scoring"
)

// Nama unique index (quiz, user); dipakai juga untuk mengenali 23505.
const QuizAttemptUniqueIndex = "uq_quiz_attempts_quiz_user"

/*
=========================================================

	QUIZ ATTEMPTS
	1 row = 1 user × 1 quiz (append-only, tidak pernah di-update)

=========================================================
*/
type QuizAttemptModel struct {
	QuizAttemptID     uuid.UUID `gorm:"column:quiz_attempt_id;type:uuid;primaryKey" json:"quiz_attempt_id"`
	QuizAttemptQuizID uuid.UUID `gorm:"column:quiz_attempt_quiz_id;type:uuid;not null;uniqueIndex:uq_quiz_attempts_quiz_user,priority:1" json:"quiz_attempt_quiz_id"`
	QuizAttemptUserID uuid.UUID `gorm:"column:quiz_attempt_user_id;type:uuid;not null;uniqueIndex:uq_quiz_attempts_quiz_user,priority:2" json:"quiz_attempt_user_id"`

	// [{question_index, selected_answer}]: satu entri per soal, -1 = tidak dijawab
	QuizAttemptAnswers datatypes.JSON `gorm:"column:quiz_attempt_answers;type:jsonb;not null" json:"quiz_attempt_answers"`

	QuizAttemptScore            int     `gorm:"column:quiz_attempt_score;type:int;not null" json:"quiz_attempt_score"`
	QuizAttemptTotalQuestions   int     `gorm:"column:quiz_attempt_total_questions;type:int;not null" json:"quiz_attempt_total_questions"`
	QuizAttemptCorrectAnswers   int     `gorm:"column:quiz_attempt_correct_answers;type:int;not null" json:"quiz_attempt_correct_answers"`
	QuizAttemptIncorrectAnswers int     `gorm:"column:quiz_attempt_incorrect_answers;type:int;not null" json:"quiz_attempt_incorrect_answers"`
	QuizAttemptUnattempted      int     `gorm:"column:quiz_attempt_unattempted;type:int;not null" json:"quiz_attempt_unattempted"`
	QuizAttemptTimeTaken        float64 `gorm:"column:quiz_attempt_time_taken;type:numeric(8,3);not null" json:"quiz_attempt_time_taken"`

	QuizAttemptSubmittedAt time.Time `gorm:"column:quiz_attempt_submitted_at;type:timestamptz;not null" json:"quiz_attempt_submitted_at"`
	QuizAttemptCreatedAt   time.Time `gorm:"column:quiz_attempt_created_at;type:timestamptz;autoCreateTime" json:"quiz_attempt_created_at"`
	QuizAttemptUpdatedAt   time.Time `gorm:"column:quiz_attempt_updated_at;type:timestamptz;autoUpdateTime" json:"quiz_attempt_updated_at"`
}

func (QuizAttemptModel) TableName() string {
	return "quiz_attempts"
}

func (m *QuizAttemptModel) BeforeCreate(tx *gorm.DB) error {
	if m.QuizAttemptID == uuid.Nil {
		m.QuizAttemptID = uuid.New()
	}
	if m.QuizAttemptSubmittedAt.IsZero() {
		m.QuizAttemptSubmittedAt = time.Now().UTC()
	}
	return nil
}

// NewQuizAttempt membangun row dari hasil scoring.
func NewQuizAttempt(quizID, userID uuid.UUID, res scoring.Result, timeTaken float64) (*QuizAttemptModel, error) {
	m := &QuizAttemptModel{
		QuizAttemptQuizID:           quizID,
		QuizAttemptUserID:           userID,
		QuizAttemptScore:            res.Score,
		QuizAttemptTotalQuestions:   res.TotalQuestions,
		QuizAttemptCorrectAnswers:   res.CorrectAnswers,
		QuizAttemptIncorrectAnswers: res.IncorrectAnswers,
		QuizAttemptUnattempted:      res.Unattempted,
		QuizAttemptTimeTaken:        timeTaken,
	}
	if err := m.SetAnswers(res.Answers); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *QuizAttemptModel) Answers() ([]scoring.Answer, error) {
	if len(m.QuizAttemptAnswers) == 0 {
		return []scoring.Answer{}, nil
	}
	var out []scoring.Answer
	if err := sonic.Unmarshal(m.QuizAttemptAnswers, &out); err != nil {
		return nil, fmt.Errorf("invalid quiz_attempt_answers json: %w", err)
	}
	if out == nil {
		out = []scoring.Answer{}
	}
	return out, nil
}

func (m *QuizAttemptModel) SetAnswers(answers []scoring.Answer) error {
	if answers == nil {
		answers = []scoring.Answer{}
	}
	buf, err := sonic.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz_attempt_answers: %w", err)
	}
	m.QuizAttemptAnswers = datatypes.JSON(buf)
	return nil
}
