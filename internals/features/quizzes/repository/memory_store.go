package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"coursemarket_backend/internals/features/quizzes/model"
)

type attemptKey struct {
	quizID uuid.UUID
	userID uuid.UUID
}

// MemoryStore dipakai untuk STORE_DRIVER=memory dan test. Cek + insert attempt
// berjalan di bawah satu lock, jadi tidak ada celah check-then-act.
type MemoryStore struct {
	mu       sync.RWMutex
	lectures map[uuid.UUID]*LectureSeed
	quizzes  map[uuid.UUID]model.QuizModel
	links    map[uuid.UUID]uuid.UUID // lecture → quiz
	attempts map[attemptKey]model.QuizAttemptModel
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lectures: map[uuid.UUID]*LectureSeed{},
		quizzes:  map[uuid.UUID]model.QuizModel{},
		links:    map[uuid.UUID]uuid.UUID{},
		attempts: map[attemptKey]model.QuizAttemptModel{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) UpsertLecture(_ context.Context, l *LectureSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *l
	s.lectures[l.ID] = &cp
	return nil
}

// LectureQuiz mengembalikan quiz yang terpasang di lecture.
func (s *MemoryStore) LectureQuiz(lectureID uuid.UUID) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.links[lectureID]
	return id, ok
}

func (s *MemoryStore) CreateQuiz(_ context.Context, quiz *model.QuizModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lectures[quiz.QuizLectureID]; !ok {
		return ErrLectureNotFound
	}
	if err := quiz.BeforeCreate(nil); err != nil {
		return err
	}
	now := s.now()
	quiz.QuizCreatedAt = now
	quiz.QuizUpdatedAt = now

	s.quizzes[quiz.QuizID] = *quiz
	s.links[quiz.QuizLectureID] = quiz.QuizID
	return nil
}

func (s *MemoryStore) GetQuiz(_ context.Context, quizID uuid.UUID) (*model.QuizModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[quizID]
	if !ok {
		return nil, ErrQuizNotFound
	}
	return &q, nil
}

func (s *MemoryStore) FindAttempt(_ context.Context, quizID, userID uuid.UUID) (*model.QuizAttemptModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[attemptKey{quizID, userID}]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *MemoryStore) CreateAttempt(_ context.Context, attempt *model.QuizAttemptModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := attemptKey{attempt.QuizAttemptQuizID, attempt.QuizAttemptUserID}
	if existing, ok := s.attempts[key]; ok {
		return &DuplicateAttemptError{Existing: &existing}
	}
	if err := attempt.BeforeCreate(nil); err != nil {
		return err
	}
	now := s.now()
	attempt.QuizAttemptCreatedAt = now
	attempt.QuizAttemptUpdatedAt = now
	s.attempts[key] = *attempt
	return nil
}

func (s *MemoryStore) ListAttempts(_ context.Context, quizID, userID uuid.UUID) ([]model.QuizAttemptModel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.QuizAttemptModel{}
	for k, a := range s.attempts {
		if k.quizID == quizID && k.userID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuizAttemptSubmittedAt.After(out[j].QuizAttemptSubmittedAt)
	})
	return out, nil
}

// AttemptCount dipakai test untuk memastikan tidak ada attempt ganda.
func (s *MemoryStore) AttemptCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.attempts)
}
