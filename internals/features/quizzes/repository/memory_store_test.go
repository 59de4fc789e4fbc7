package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket_backend/internals/features/quizzes/model"
)

func TestMemoryStore_CreateQuizRequiresLecture(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	q := &model.QuizModel{QuizLectureID: uuid.New()}
	assert.ErrorIs(t, s.CreateQuiz(ctx, q), ErrLectureNotFound)

	require.NoError(t, s.UpsertLecture(ctx, &LectureSeed{ID: q.QuizLectureID, CourseID: uuid.New(), Title: "L1"}))
	require.NoError(t, s.CreateQuiz(ctx, q))
	assert.Equal(t, model.DefaultTimeLimitMinutes, q.QuizTimeLimit)

	linked, ok := s.LectureQuiz(q.QuizLectureID)
	require.True(t, ok)
	assert.Equal(t, q.QuizID, linked)

	got, err := s.GetQuiz(ctx, q.QuizID)
	require.NoError(t, err)
	assert.Equal(t, q.QuizID, got.QuizID)

	_, err = s.GetQuiz(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestMemoryStore_ConcurrentAttemptsKeepOne(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	quizID, userID := uuid.New(), uuid.New()

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateAttempt(ctx, &model.QuizAttemptModel{QuizAttemptQuizID: quizID, QuizAttemptUserID: userID})
			mu.Lock()
			defer mu.Unlock()
			var dup *DuplicateAttemptError
			switch {
			case err == nil:
				ok++
			case errors.As(err, &dup):
				assert.NotNil(t, dup.Existing)
				dups++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dups)
	assert.Equal(t, 1, s.AttemptCount())
}

func TestMemoryStore_ListAttemptsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	quizID := uuid.New()
	userA, userB := uuid.New(), uuid.New()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateAttempt(ctx, &model.QuizAttemptModel{
		QuizAttemptQuizID: quizID, QuizAttemptUserID: userA, QuizAttemptSubmittedAt: base,
	}))
	require.NoError(t, s.CreateAttempt(ctx, &model.QuizAttemptModel{
		QuizAttemptQuizID: quizID, QuizAttemptUserID: userB, QuizAttemptSubmittedAt: base.Add(time.Hour),
	}))

	rows, err := s.ListAttempts(ctx, quizID, userA)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, userA, rows[0].QuizAttemptUserID)

	none, err := s.ListAttempts(ctx, uuid.New(), userA)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	found, err := s.FindAttempt(ctx, quizID, userB)
	require.NoError(t, err)
	require.NotNil(t, found)
	missing, err := s.FindAttempt(ctx, quizID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}
