package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"coursemarket_backend/internals/features/quizzes/model"
)

// CacheObserver dipenuhi *metrics.Metrics.
type CacheObserver interface {
	ObserveCache(result string)
}

// CachedStore: read-through cache definisi quiz di Redis. Quiz tidak pernah
// di-update setelah dibuat, jadi cukup TTL tanpa invalidasi. Attempt selalu
// langsung ke Store di bawahnya.
type CachedStore struct {
	Store
	client   *redis.Client
	ttl      time.Duration
	log      *logrus.Entry
	observer CacheObserver
}

func NewCachedStore(inner Store, client *redis.Client, ttl time.Duration, log *logrus.Entry, observer CacheObserver) *CachedStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CachedStore{
		Store:    inner,
		client:   client,
		ttl:      ttl,
		log:      log.WithField("component", "quiz_cache"),
		observer: observer,
	}
}

func quizCacheKey(id uuid.UUID) string {
	return fmt.Sprintf("quiz:def:%s", id)
}

func (s *CachedStore) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveCache(result)
	}
}

func (s *CachedStore) GetQuiz(ctx context.Context, quizID uuid.UUID) (*model.QuizModel, error) {
	key := quizCacheKey(quizID)

	raw, err := s.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var q model.QuizModel
		if uerr := sonic.Unmarshal(raw, &q); uerr == nil {
			s.observe("hit")
			return &q, nil
		}
		// isi cache rusak → buang, ambil dari DB
		s.log.WithField("key", key).Warn("corrupt cached quiz, dropping")
		_ = s.client.Del(ctx, key).Err()
		s.observe("error")
	case err == redis.Nil:
		s.observe("miss")
	default:
		s.log.WithError(err).WithField("key", key).Warn("quiz cache read failed, falling back to store")
		s.observe("error")
	}

	q, err := s.Store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	s.put(ctx, q)
	return q, nil
}

func (s *CachedStore) CreateQuiz(ctx context.Context, quiz *model.QuizModel) error {
	if err := s.Store.CreateQuiz(ctx, quiz); err != nil {
		return err
	}
	s.put(ctx, quiz)
	return nil
}

func (s *CachedStore) put(ctx context.Context, q *model.QuizModel) {
	buf, err := sonic.Marshal(q)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, quizCacheKey(q.QuizID), buf, s.ttl).Err(); err != nil {
		s.log.WithError(err).Warn("quiz cache write failed")
	}
}
