// file: internals/features/quizzes/service/quiz_service.go
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"coursemarket_backend/internals/features/quizzes/dto"
	"coursemarket_backend/internals/features/quizzes/ids"
	"coursemarket_backend/internals/features/quizzes/model"
	"coursemarket_backend/internals/features/quizzes/repository"
	"coursemarket_backend/internals/features/quizzes/scoring"
)

// AttemptObserver dipenuhi *metrics.Metrics.
type AttemptObserver interface {
	ObserveAttempt(score int)
	ObserveDuplicate()
}

/* =========================================================
   SERVICE
========================================================= */

type QuizService struct {
	Store            repository.Store
	DefaultTimeLimit int

	validate *validator.Validate
	log      *logrus.Entry
	observer AttemptObserver
}

type Option func(*QuizService)

func WithLogger(l *logrus.Entry) Option {
	return func(s *QuizService) { s.log = l }
}

func WithObserver(o AttemptObserver) Option {
	return func(s *QuizService) { s.observer = o }
}

func WithDefaultTimeLimit(minutes int) Option {
	return func(s *QuizService) {
		if minutes > 0 {
			s.DefaultTimeLimit = minutes
		}
	}
}

func NewQuizService(store repository.Store, opts ...Option) *QuizService {
	s := &QuizService{
		Store:            store,
		DefaultTimeLimit: model.DefaultTimeLimitMinutes,
		validate:         dto.NewValidator(),
		log:              logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "quiz_service")
	return s
}

/* =========================================================
   CREATE QUIZ (instructor)
========================================================= */

func (s *QuizService) CreateQuiz(ctx context.Context, req *dto.CreateQuizRequest) (*model.QuizModel, error) {
	if req == nil {
		return nil, ValidationErrors{"_": {"request body is required"}}
	}
	req.Normalize()
	if err := s.validate.Struct(req); err != nil {
		return nil, ValidationErrors(dto.FieldErrors(err))
	}

	quiz, err := req.ToModel(s.DefaultTimeLimit)
	if err != nil {
		return nil, ValidationErrors{"lecture_id": {"must be a valid UUID"}}
	}

	if err := s.Store.CreateQuiz(ctx, quiz); err != nil {
		if errors.Is(err, repository.ErrLectureNotFound) {
			return nil, ErrLectureNotFound
		}
		return nil, fmt.Errorf("create quiz: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"quiz_id":    quiz.QuizID,
		"lecture_id": quiz.QuizLectureID,
		"time_limit": quiz.QuizTimeLimit,
	}).Info("quiz created")
	return quiz, nil
}

/* =========================================================
   ATTEMPT GUARD
========================================================= */

// GetQuizForTaking → *AlreadyAttemptedError kalau user sudah pernah submit.
func (s *QuizService) GetQuizForTaking(ctx context.Context, rawQuizID string, userID uuid.UUID) (*model.QuizModel, error) {
	quizID, err := ids.Clean(rawQuizID)
	if err != nil {
		return nil, ErrInvalidID
	}

	existing, err := s.Store.FindAttempt(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	if existing != nil {
		return nil, &AlreadyAttemptedError{Attempt: existing}
	}

	quiz, err := s.Store.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return quiz, nil
}

// SubmitAttempt: ingest → guard → scoring → simpan. Duplikat tidak pernah
// di-score ulang; attempt lama dikembalikan lewat *AlreadyAttemptedError.
func (s *QuizService) SubmitAttempt(ctx context.Context, rawQuizID string, userID uuid.UUID, req *dto.SubmitQuizRequest) (*model.QuizAttemptModel, error) {
	quizID, err := ids.Clean(rawQuizID)
	if err != nil {
		return nil, ErrInvalidID
	}
	if req == nil {
		return nil, ValidationErrors{"answers": {dto.ErrAnswersMissing.Error()}}
	}

	answers, timeTaken, err := req.Ingest()
	if err != nil {
		switch {
		case errors.Is(err, dto.ErrAnswersMissing):
			return nil, ValidationErrors{"answers": {err.Error()}}
		case errors.Is(err, dto.ErrNegativeTimeTaken), errors.Is(err, dto.ErrTimeTakenTooLarge):
			return nil, ValidationErrors{"time_taken": {err.Error()}}
		default:
			return nil, ValidationErrors{"_": {err.Error()}}
		}
	}

	quiz, err := s.Store.GetQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, repository.ErrQuizNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	existing, err := s.Store.FindAttempt(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("find attempt: %w", err)
	}
	if existing != nil {
		s.observeDuplicate(quizID, userID)
		return nil, &AlreadyAttemptedError{Attempt: existing}
	}

	key, err := quiz.AnswerKey()
	if err != nil {
		return nil, fmt.Errorf("answer key: %w", err)
	}
	result := scoring.Evaluate(key, answers)

	attempt, err := model.NewQuizAttempt(quizID, userID, result, timeTaken)
	if err != nil {
		return nil, err
	}
	if err := s.Store.CreateAttempt(ctx, attempt); err != nil {
		var dup *repository.DuplicateAttemptError
		if errors.As(err, &dup) {
			s.observeDuplicate(quizID, userID)
			return nil, &AlreadyAttemptedError{Attempt: dup.Existing}
		}
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	if s.observer != nil {
		s.observer.ObserveAttempt(result.Score)
	}
	s.log.WithFields(logrus.Fields{
		"quiz_id":    quizID,
		"user_id":    userID,
		"score":      result.Score,
		"time_taken": timeTaken,
	}).Info("quiz attempt submitted")
	return attempt, nil
}

func (s *QuizService) observeDuplicate(quizID, userID uuid.UUID) {
	if s.observer != nil {
		s.observer.ObserveDuplicate()
	}
	s.log.WithFields(logrus.Fields{"quiz_id": quizID, "user_id": userID}).
		Info("duplicate quiz submission rejected")
}

/* =========================================================
   ATTEMPT RETRIEVAL
========================================================= */

func (s *QuizService) ListAttempts(ctx context.Context, rawQuizID string, userID uuid.UUID) ([]model.QuizAttemptModel, error) {
	quizID, err := ids.Clean(rawQuizID)
	if err != nil {
		return nil, ErrInvalidID
	}
	rows, err := s.Store.ListAttempts(ctx, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return rows, nil
}
