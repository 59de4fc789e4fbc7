package attemptcache

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket_backend/internals/client/quizapi"
	"coursemarket_backend/internals/features/quizzes/scoring"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func intPtr(v int) *int { return &v }

// brokenStorage selalu gagal; cache harus tetap jalan sebagai miss.
type brokenStorage struct{}

var errDisk = errors.New("disk full")

func (brokenStorage) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDisk }
func (brokenStorage) Set(context.Context, string, []byte) error         { return errDisk }
func (brokenStorage) Remove(context.Context, string) error              { return errDisk }

func sampleQuiz(id string) *quizapi.Quiz {
	return &quizapi.Quiz{
		ID:        id,
		TimeLimit: 1,
		Questions: []quizapi.Question{
			{Question: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
			{Question: "q2", Options: []string{"a", "b"}, CorrectAnswer: 0},
			{Question: "q3", Options: []string{"a", "b", "c"}, CorrectAnswer: 2},
		},
	}
}

func TestKeysIgnoreSlugSuffix(t *testing.T) {
	id := uuid.NewString()
	assert.Equal(t, "quiz_"+id+"_attempted", AttemptedKey(id+":intro"))
	assert.Equal(t, "quiz_"+id+"_results", ResultsKey(" "+id))
	assert.Equal(t, "quiz_"+id+"_answers", AnswersKey(id))
	assert.Equal(t, "quiz_"+id+"_timer", TimerKey(id))
}

func TestAnswersSurviveReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")
	id := uuid.NewString()

	c := New(NewFileStorage(path), WithLogger(quietLog()))
	require.NoError(t, c.RecordAnswer(ctx, id, 2, 1))
	require.NoError(t, c.RecordAnswer(ctx, id, 0, 1))
	require.NoError(t, c.RecordAnswer(ctx, id, 0, 0))
	require.NoError(t, c.SaveTimer(ctx, id, 95*time.Second))

	// "reload": instance baru di file yang sama
	reloaded := New(NewFileStorage(path), WithLogger(quietLog()))
	assert.Equal(t, []scoring.Answer{{QuestionIndex: 0, SelectedAnswer: 0}, {QuestionIndex: 2, SelectedAnswer: 1}}, reloaded.Answers(ctx, id))
	left, ok := reloaded.RestoreTimer(ctx, id, time.Minute)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, left, "clamped to the limit")

	require.NoError(t, reloaded.RecordAnswer(ctx, id, 2, scoring.Unattempted))
	assert.Equal(t, []scoring.Answer{{QuestionIndex: 0, SelectedAnswer: 0}}, reloaded.Answers(ctx, id))
}

func TestRestoreTimerWithoutState(t *testing.T) {
	c := New(NewMemoryStorage(), WithLogger(quietLog()))
	left, ok := c.RestoreTimer(context.Background(), uuid.NewString(), 30*time.Minute)
	assert.False(t, ok)
	assert.Equal(t, 30*time.Minute, left)
}

func TestMarkSubmittedClearsInProgressState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	c := New(store, WithLogger(quietLog()))
	id := uuid.NewString()

	require.NoError(t, c.RecordAnswer(ctx, id, 0, 1))
	require.NoError(t, c.SaveTimer(ctx, id, 10*time.Second))
	assert.False(t, c.IsAttempted(ctx, id))

	res := ResultFromBreakdown(&quizapi.ScoreBreakdown{Score: 67, TotalQuestions: 3, CorrectAnswers: 2, IncorrectAnswers: 1}, nil)
	require.NoError(t, c.MarkSubmitted(ctx, id, res))

	assert.True(t, c.IsAttempted(ctx, id))
	assert.Empty(t, c.Answers(ctx, id))
	_, ok, _ := store.Get(ctx, TimerKey(id))
	assert.False(t, ok)

	snap, ok := c.Snapshot(ctx, id)
	require.True(t, ok)
	assert.Equal(t, 67, snap.Score)
	assert.Equal(t, SourceLocal, snap.Source)
	assert.False(t, snap.SubmittedAt.IsZero())
}

func TestCloseOnlyDiscardsInProgressState(t *testing.T) {
	ctx := context.Background()
	c := New(NewMemoryStorage(), WithLogger(quietLog()))
	id := uuid.NewString()

	require.NoError(t, c.RecordAnswer(ctx, id, 1, 0))
	require.NoError(t, c.Close(ctx, id, false))
	assert.Len(t, c.Answers(ctx, id), 1)

	require.NoError(t, c.Close(ctx, id, true))
	assert.Empty(t, c.Answers(ctx, id))

	require.NoError(t, c.MarkSubmitted(ctx, id, Result{Score: 100}))
	require.NoError(t, c.Close(ctx, id, false))
	_, ok := c.Snapshot(ctx, id)
	assert.True(t, ok)
}

func TestResolveView(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()
	quiz := sampleQuiz(id)
	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	t.Run("freshest complete server attempt wins", func(t *testing.T) {
		c := New(NewMemoryStorage(), WithLogger(quietLog()))
		res, ok := c.ResolveView(ctx, id, quiz, []quizapi.Attempt{
			{SubmittedAt: older, Score: intPtr(0), TotalQuestions: intPtr(3), CorrectAnswers: intPtr(0), IncorrectAnswers: intPtr(3)},
			{SubmittedAt: newer, Score: intPtr(67), TotalQuestions: intPtr(3), CorrectAnswers: intPtr(2), IncorrectAnswers: intPtr(1)},
		})
		require.True(t, ok)
		assert.Equal(t, SourceServer, res.Source)
		assert.Equal(t, 67, res.Score)
		assert.Equal(t, 0, res.Unattempted)

		snap, ok := c.Snapshot(ctx, id)
		require.True(t, ok)
		assert.Equal(t, 67, snap.Score)
		assert.True(t, c.IsAttempted(ctx, id))
	})

	t.Run("missing counters are recomputed from answers", func(t *testing.T) {
		c := New(NewMemoryStorage(), WithLogger(quietLog()))
		res, ok := c.ResolveView(ctx, id, quiz, []quizapi.Attempt{{
			SubmittedAt: newer,
			Answers:     []scoring.Answer{{QuestionIndex: 0, SelectedAnswer: 1}, {QuestionIndex: 1, SelectedAnswer: 1}},
		}})
		require.True(t, ok)
		assert.Equal(t, SourceRecomputed, res.Source)
		assert.Equal(t, 33, res.Score)
		assert.Equal(t, 1, res.CorrectAnswers)
		assert.Equal(t, 1, res.IncorrectAnswers)
		assert.Equal(t, 1, res.Unattempted)
		assert.Len(t, res.Answers, 3)
	})

	t.Run("falls back to the local snapshot", func(t *testing.T) {
		c := New(NewMemoryStorage(), WithLogger(quietLog()))
		require.NoError(t, c.MarkSubmitted(ctx, id, Result{Score: 50, TotalQuestions: 2, CorrectAnswers: 1}))
		res, ok := c.ResolveView(ctx, id, nil, []quizapi.Attempt{{SubmittedAt: newer}})
		require.True(t, ok)
		assert.Equal(t, SourceLocal, res.Source)
		assert.Equal(t, 50, res.Score)
	})

	t.Run("nothing to show", func(t *testing.T) {
		c := New(NewMemoryStorage(), WithLogger(quietLog()))
		_, ok := c.ResolveView(ctx, id, quiz, nil)
		assert.False(t, ok)
	})
}

func TestStorageFailuresAreTransient(t *testing.T) {
	ctx := context.Background()
	c := New(brokenStorage{}, WithLogger(quietLog()))
	id := uuid.NewString()

	err := c.RecordAnswer(ctx, id, 0, 1)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, errDisk)

	assert.Empty(t, c.Answers(ctx, id))
	assert.False(t, c.IsAttempted(ctx, id))
	_, ok := c.RestoreTimer(ctx, id, time.Minute)
	assert.False(t, ok)
	_, ok = c.ResolveView(ctx, id, nil, nil)
	assert.False(t, ok)
}

// flakyStorage: Get gagal sekali saat failNextGet di-set, sisanya MemoryStorage.
type flakyStorage struct {
	*MemoryStorage
	failNextGet bool
}

func (s *flakyStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.failNextGet {
		s.failNextGet = false
		return nil, false, errDisk
	}
	return s.MemoryStorage.Get(ctx, key)
}

func TestRecordAnswerKeepsSavedAnswersWhenReadFails(t *testing.T) {
	ctx := context.Background()
	store := &flakyStorage{MemoryStorage: NewMemoryStorage()}
	c := New(store, WithLogger(quietLog()))
	id := uuid.NewString()

	require.NoError(t, c.RecordAnswer(ctx, id, 0, 1))
	require.NoError(t, c.RecordAnswer(ctx, id, 1, 3))

	store.failNextGet = true
	err := c.RecordAnswer(ctx, id, 2, 0)
	assert.True(t, IsTransient(err))
	assert.ErrorIs(t, err, errDisk)

	assert.Equal(t, []scoring.Answer{
		{QuestionIndex: 0, SelectedAnswer: 1},
		{QuestionIndex: 1, SelectedAnswer: 3},
	}, c.Answers(ctx, id))

	// retry setelah storage pulih
	require.NoError(t, c.RecordAnswer(ctx, id, 2, 0))
	assert.Len(t, c.Answers(ctx, id), 3)
}

func TestCorruptEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStorage()
	id := uuid.NewString()
	require.NoError(t, store.Set(ctx, ResultsKey(id), []byte("{not json")))

	c := New(store, WithLogger(quietLog()))
	_, ok := c.Snapshot(ctx, id)
	assert.False(t, ok)
	_, exists, _ := store.Get(ctx, ResultsKey(id))
	assert.False(t, exists)
}

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available for testing: %v", err)
	}
	client.FlushDB(ctx)
	return client
}

func TestRedisStorage(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	id := uuid.NewString()
	c := New(NewRedisStorage(client, "attempt:u1:", time.Hour), WithLogger(quietLog()))

	require.NoError(t, c.RecordAnswer(ctx, id, 0, 2))
	assert.Equal(t, []scoring.Answer{{QuestionIndex: 0, SelectedAnswer: 2}}, c.Answers(ctx, id))

	ttl := client.TTL(ctx, "attempt:u1:"+AnswersKey(id)).Val()
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, c.MarkSubmitted(ctx, id, Result{Score: 100}))
	assert.True(t, c.IsAttempted(ctx, id))
	assert.Empty(t, c.Answers(ctx, id))
}
