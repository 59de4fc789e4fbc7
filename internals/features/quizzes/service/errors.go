package service

import (
	"errors"
	"sort"
	"strings"

	"coursemarket_backend/internals/features/quizzes/ids"
	"coursemarket_backend/internals/features/quizzes/model"
	"coursemarket_backend/internals/features/quizzes/repository"
)

var (
	ErrInvalidID        = ids.ErrInvalid
	ErrQuizNotFound     = repository.ErrQuizNotFound
	ErrLectureNotFound  = repository.ErrLectureNotFound
	ErrAlreadyAttempted = errors.New("quiz already attempted")
)

// AlreadyAttemptedError bukan kegagalan: caller menampilkan attempt lama.
// Attempt bisa nil kalau attempt pemenang race belum terbaca.
type AlreadyAttemptedError struct {
	Attempt *model.QuizAttemptModel
}

func (e *AlreadyAttemptedError) Error() string { return ErrAlreadyAttempted.Error() }
func (e *AlreadyAttemptedError) Unwrap() error { return ErrAlreadyAttempted }

// ValidationErrors: field → pesan; selalu ditolak sebelum ada yang disimpan.
type ValidationErrors map[string][]string

func (v ValidationErrors) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsNotFound: quiz atau lecture tidak ada.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrQuizNotFound) || errors.Is(err, ErrLectureNotFound)
}
