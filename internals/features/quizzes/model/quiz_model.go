// file: internals/features/quizzes/model/quiz_model.go
package model

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultTimeLimitMinutes = 30

// Satu soal pilihan ganda; CorrectAnswer = index opsi (mulai dari 0)
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
}

/*
=========================================================

	QUIZ
	1 row = 1 quiz milik 1 lecture
	- questions : urutan soal dalam JSONB
	- time_limit: menit, default 30

=========================================================
*/
type QuizModel struct {
	QuizID        uuid.UUID      `gorm:"column:quiz_id;type:uuid;primaryKey" json:"quiz_id"`
	QuizLectureID uuid.UUID      `gorm:"column:quiz_lecture_id;type:uuid;not null;index" json:"quiz_lecture_id"`
	QuizQuestions datatypes.JSON `gorm:"column:quiz_questions;type:jsonb;not null" json:"quiz_questions"`
	QuizTimeLimit int            `gorm:"column:quiz_time_limit;type:int;not null" json:"quiz_time_limit"`

	QuizCreatedAt time.Time `gorm:"column:quiz_created_at;type:timestamptz;autoCreateTime" json:"quiz_created_at"`
	QuizUpdatedAt time.Time `gorm:"column:quiz_updated_at;type:timestamptz;autoUpdateTime" json:"quiz_updated_at"`
}

func (QuizModel) TableName() string {
	return "quizzes"
}

func (m *QuizModel) BeforeCreate(tx *gorm.DB) error {
	if m.QuizID == uuid.Nil {
		m.QuizID = uuid.New()
	}
	if m.QuizTimeLimit <= 0 {
		m.QuizTimeLimit = DefaultTimeLimitMinutes
	}
	return nil
}

// Questions decode kolom JSONB; kolom kosong dianggap quiz tanpa soal.
func (m *QuizModel) Questions() ([]QuizQuestion, error) {
	if len(m.QuizQuestions) == 0 {
		return []QuizQuestion{}, nil
	}
	var qs []QuizQuestion
	if err := sonic.Unmarshal(m.QuizQuestions, &qs); err != nil {
		return nil, fmt.Errorf("invalid quiz_questions json: %w", err)
	}
	if qs == nil {
		qs = []QuizQuestion{}
	}
	return qs, nil
}

func (m *QuizModel) SetQuestions(qs []QuizQuestion) error {
	if qs == nil {
		qs = []QuizQuestion{}
	}
	buf, err := sonic.Marshal(qs)
	if err != nil {
		return fmt.Errorf("failed to marshal quiz_questions: %w", err)
	}
	m.QuizQuestions = datatypes.JSON(buf)
	return nil
}

// AnswerKey = index jawaban benar per soal, urut sesuai soal
func (m *QuizModel) AnswerKey() ([]int, error) {
	qs, err := m.Questions()
	if err != nil {
		return nil, err
	}
	key := make([]int, len(qs))
	for i, q := range qs {
		key[i] = q.CorrectAnswer
	}
	return key, nil
}
