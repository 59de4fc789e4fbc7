// file: internals/features/quizzes/repository/store.go
package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"coursemarket_backend/internals/features/quizzes/model"
)

var (
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrLectureNotFound = errors.New("lecture not found")
	// ErrDuplicateAttempt: unique (quiz, user) kena; attempt lama mungkin belum terbaca.
	ErrDuplicateAttempt = errors.New("attempt already exists for quiz and user")
)

// DuplicateAttemptError membawa attempt yang sudah ada kalau berhasil dibaca.
type DuplicateAttemptError struct {
	Existing *model.QuizAttemptModel
}

func (e *DuplicateAttemptError) Error() string { return ErrDuplicateAttempt.Error() }
func (e *DuplicateAttemptError) Unwrap() error { return ErrDuplicateAttempt }

type QuizStore interface {
	// CreateQuiz menyimpan quiz dan memasang referensi quiz di lecture pemiliknya.
	CreateQuiz(ctx context.Context, quiz *model.QuizModel) error
	GetQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizModel, error)
}

type AttemptStore interface {
	// FindAttempt → (nil, nil) kalau belum ada.
	FindAttempt(ctx context.Context, quizID, userID uuid.UUID) (*model.QuizAttemptModel, error)
	// CreateAttempt gagal dengan ErrDuplicateAttempt bila (quiz, user) sudah ada.
	CreateAttempt(ctx context.Context, attempt *model.QuizAttemptModel) error
	// ListAttempts terbaru dulu.
	ListAttempts(ctx context.Context, quizID, userID uuid.UUID) ([]model.QuizAttemptModel, error)
}

type LectureStore interface {
	UpsertLecture(ctx context.Context, lecture *LectureSeed) error
}

type Store interface {
	QuizStore
	AttemptStore
	LectureStore
}

// LectureSeed: data minimum lecture untuk seeding / dev lokal.
type LectureSeed struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	CourseID uuid.UUID `json:"course_id" yaml:"course_id"`
	Title    string    `json:"title" yaml:"title"`
}
