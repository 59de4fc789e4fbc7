// Package attemptcache: state attempt di sisi client (jawaban & timer yang
// sedang jalan, marker attempted, snapshot hasil terakhir) supaya tetap ada
// setelah reload.
package attemptcache

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sirupsen/logrus"

	"coursemarket_backend/internals/client/quizapi"
	"coursemarket_backend/internals/features/quizzes/ids"
	"coursemarket_backend/internals/features/quizzes/scoring"
	"coursemarket_backend/internals/logger"
)

const (
	SourceServer     = "server"
	SourceRecomputed = "recomputed"
	SourceLocal      = "local"
)

// Result = snapshot hasil yang ditampilkan di layar hasil.
type Result struct {
	Score            int              `json:"score"`
	TotalQuestions   int              `json:"total_questions"`
	CorrectAnswers   int              `json:"correct_answers"`
	IncorrectAnswers int              `json:"incorrect_answers"`
	Unattempted      int              `json:"unattempted"`
	TimeTaken        float64          `json:"time_taken"`
	Answers          []scoring.Answer `json:"answers,omitempty"`
	SubmittedAt      time.Time        `json:"submitted_at"`
	Source           string           `json:"-"`
}

type timerState struct {
	RemainingSeconds int       `json:"remaining_seconds"`
	SavedAt          time.Time `json:"saved_at"`
}

type Cache struct {
	store Storage
	log   *logrus.Entry
	now   func() time.Time
}

type Option func(*Cache)

func WithLogger(l *logrus.Entry) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

func New(store Storage, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		log:   logger.Log.WithField("component", "attempt-cache"),
		now:   time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

/* =========================================================
   Keys
========================================================= */

// keyID: "id:slug" dan "id" harus jatuh ke key yang sama
func keyID(quizID string) string {
	if id, err := ids.Clean(quizID); err == nil {
		return id.String()
	}
	return strings.TrimSpace(quizID)
}

func AttemptedKey(quizID string) string { return "quiz_" + keyID(quizID) + "_attempted" }
func ResultsKey(quizID string) string   { return "quiz_" + keyID(quizID) + "_results" }
func AnswersKey(quizID string) string   { return "quiz_" + keyID(quizID) + "_answers" }
func TimerKey(quizID string) string     { return "quiz_" + keyID(quizID) + "_timer" }

/* =========================================================
   Storage wrappers: error → TransientStorageError, log, miss
========================================================= */

func (c *Cache) get(ctx context.Context, key string, out any) bool {
	ok, _ := c.load(ctx, key, out)
	return ok
}

// load membedakan miss (false, nil) dari storage gagal dibaca (false, err).
// Entry rusak dihitung miss.
func (c *Cache) load(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		te := &TransientStorageError{Op: "get", Key: key, Err: err}
		c.warn(te)
		return false, te
	}
	if !ok {
		return false, nil
	}
	if err := sonic.Unmarshal(raw, out); err != nil {
		// entry rusak: buang supaya tidak dibaca ulang terus
		c.warn(&TransientStorageError{Op: "decode", Key: key, Err: err})
		_ = c.store.Remove(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *Cache) set(ctx context.Context, key string, v any) error {
	raw, err := sonic.Marshal(v)
	if err == nil {
		err = c.store.Set(ctx, key, raw)
	}
	if err != nil {
		te := &TransientStorageError{Op: "set", Key: key, Err: err}
		c.warn(te)
		return te
	}
	return nil
}

func (c *Cache) remove(ctx context.Context, key string) error {
	if err := c.store.Remove(ctx, key); err != nil {
		te := &TransientStorageError{Op: "remove", Key: key, Err: err}
		c.warn(te)
		return te
	}
	return nil
}

func (c *Cache) warn(err *TransientStorageError) {
	c.log.WithFields(logrus.Fields{"op": err.Op, "key": err.Key}).WithError(err.Err).Warn("⚠️ attempt cache storage error")
}

/* =========================================================
   In-progress answers
========================================================= */

// RecordAnswer menyimpan pilihan untuk satu soal segera setelah dipilih.
// selected < 0 berarti jawaban dikosongkan lagi. Kalau jawaban lama gagal
// dibaca, tidak ada yang ditulis (supaya jawaban lain tidak tertimpa).
func (c *Cache) RecordAnswer(ctx context.Context, quizID string, questionIndex, selected int) error {
	if questionIndex < 0 {
		return nil
	}
	byIndex, err := c.answerMap(ctx, quizID)
	if err != nil {
		return err
	}
	if selected < 0 {
		delete(byIndex, questionIndex)
	} else {
		byIndex[questionIndex] = selected
	}
	return c.set(ctx, AnswersKey(quizID), toAnswers(byIndex))
}

// Answers = jawaban tersimpan, urut index soal. Kosong kalau belum ada.
func (c *Cache) Answers(ctx context.Context, quizID string) []scoring.Answer {
	m, _ := c.answerMap(ctx, quizID)
	return toAnswers(m)
}

func (c *Cache) answerMap(ctx context.Context, quizID string) (map[int]int, error) {
	var saved []scoring.Answer
	if _, err := c.load(ctx, AnswersKey(quizID), &saved); err != nil {
		return map[int]int{}, err
	}
	m := make(map[int]int, len(saved))
	for _, a := range saved {
		if a.QuestionIndex >= 0 && a.SelectedAnswer >= 0 {
			m[a.QuestionIndex] = a.SelectedAnswer
		}
	}
	return m, nil
}

func toAnswers(m map[int]int) []scoring.Answer {
	out := make([]scoring.Answer, 0, len(m))
	for idx, sel := range m {
		out = append(out, scoring.Answer{QuestionIndex: idx, SelectedAnswer: sel})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionIndex < out[j].QuestionIndex })
	return out
}

/* =========================================================
   Countdown
========================================================= */

func (c *Cache) SaveTimer(ctx context.Context, quizID string, remaining time.Duration) error {
	if remaining < 0 {
		remaining = 0
	}
	return c.set(ctx, TimerKey(quizID), timerState{
		RemainingSeconds: int(remaining / time.Second),
		SavedAt:          c.now().UTC(),
	})
}

// RestoreTimer → sisa waktu tersimpan, dijepit ke [0, limit].
func (c *Cache) RestoreTimer(ctx context.Context, quizID string, limit time.Duration) (time.Duration, bool) {
	var st timerState
	if !c.get(ctx, TimerKey(quizID), &st) {
		return limit, false
	}
	remaining := time.Duration(st.RemainingSeconds) * time.Second
	if remaining < 0 {
		remaining = 0
	}
	if limit > 0 && remaining > limit {
		remaining = limit
	}
	return remaining, true
}

/* =========================================================
   Lifecycle
========================================================= */

// MarkSubmitted: dipanggil hanya setelah submit sukses (atau server bilang
// sudah attempt). Jawaban & timer dibuang, marker + snapshot ditulis.
func (c *Cache) MarkSubmitted(ctx context.Context, quizID string, res Result) error {
	if res.SubmittedAt.IsZero() {
		res.SubmittedAt = c.now().UTC()
	}
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	keep(c.set(ctx, AttemptedKey(quizID), true))
	keep(c.set(ctx, ResultsKey(quizID), res))
	keep(c.remove(ctx, AnswersKey(quizID)))
	keep(c.remove(ctx, TimerKey(quizID)))
	return firstErr
}

func (c *Cache) IsAttempted(ctx context.Context, quizID string) bool {
	var marked bool
	return c.get(ctx, AttemptedKey(quizID), &marked) && marked
}

func (c *Cache) Snapshot(ctx context.Context, quizID string) (Result, bool) {
	var res Result
	if !c.get(ctx, ResultsKey(quizID), &res) {
		return Result{}, false
	}
	res.Source = SourceLocal
	return res, true
}

// Close: keluar dari quiz. Hanya state in-progress yang dibuang; layar hasil
// (inProgress=false) tidak menyentuh apa pun.
func (c *Cache) Close(ctx context.Context, quizID string, inProgress bool) error {
	if !inProgress {
		return nil
	}
	if err := c.remove(ctx, AnswersKey(quizID)); err != nil {
		return err
	}
	return c.remove(ctx, TimerKey(quizID))
}

/* =========================================================
   View model hasil
========================================================= */

// ResolveView memilih satu hasil untuk ditampilkan:
//  1. attempt server paling baru dengan counter lengkap,
//  2. attempt server tanpa counter tapi ada jawaban → hitung ulang pakai scoring,
//  3. snapshot lokal.
//
// Hasil dari server ikut ditulis sebagai snapshot lokal.
func (c *Cache) ResolveView(ctx context.Context, quizID string, quiz *quizapi.Quiz, attempts []quizapi.Attempt) (Result, bool) {
	if latest := freshest(attempts); latest != nil {
		if res, ok := fromAttempt(latest, quiz); ok {
			_ = c.set(ctx, ResultsKey(quizID), res)
			_ = c.set(ctx, AttemptedKey(quizID), true)
			return res, true
		}
	}
	return c.Snapshot(ctx, quizID)
}

func freshest(attempts []quizapi.Attempt) *quizapi.Attempt {
	var best *quizapi.Attempt
	for i := range attempts {
		a := &attempts[i]
		if best == nil || stamp(a).After(stamp(best)) {
			best = a
		}
	}
	return best
}

func stamp(a *quizapi.Attempt) time.Time {
	if !a.SubmittedAt.IsZero() {
		return a.SubmittedAt
	}
	return a.CreatedAt
}

func fromAttempt(a *quizapi.Attempt, quiz *quizapi.Quiz) (Result, bool) {
	res := Result{SubmittedAt: stamp(a), Answers: a.Answers}
	if a.TimeTaken != nil {
		res.TimeTaken = *a.TimeTaken
	}

	if a.HasScore() {
		res.Score = *a.Score
		res.TotalQuestions = *a.TotalQuestions
		res.CorrectAnswers = *a.CorrectAnswers
		res.IncorrectAnswers = *a.IncorrectAnswers
		if a.Unattempted != nil {
			res.Unattempted = *a.Unattempted
		} else {
			res.Unattempted = max(0, res.TotalQuestions-res.CorrectAnswers-res.IncorrectAnswers)
		}
		res.Source = SourceServer
		return res, true
	}

	if quiz == nil || len(a.Answers) == 0 {
		return Result{}, false
	}
	eval := scoring.Evaluate(quiz.AnswerKey(), a.Answers)
	res.Score = eval.Score
	res.TotalQuestions = eval.TotalQuestions
	res.CorrectAnswers = eval.CorrectAnswers
	res.IncorrectAnswers = eval.IncorrectAnswers
	res.Unattempted = eval.Unattempted
	res.Answers = eval.Answers
	res.Source = SourceRecomputed
	return res, true
}

// ResultFromBreakdown: snapshot dari respons submit.
func ResultFromBreakdown(b *quizapi.ScoreBreakdown, answers []scoring.Answer) Result {
	return Result{
		Score:            b.Score,
		TotalQuestions:   b.TotalQuestions,
		CorrectAnswers:   b.CorrectAnswers,
		IncorrectAnswers: b.IncorrectAnswers,
		Unattempted:      b.Unattempted,
		TimeTaken:        b.TimeTaken,
		Answers:          answers,
		Source:           SourceServer,
	}
}
