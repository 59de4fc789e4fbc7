// Package cli: front end terminal untuk mengerjakan quiz ke service quiz.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"coursemarket_backend/internals/client/attemptcache"
	"coursemarket_backend/internals/client/countdown"
	"coursemarket_backend/internals/client/quizapi"
	"coursemarket_backend/internals/features/quizzes/ids"
	"coursemarket_backend/internals/features/quizzes/scoring"
	"coursemarket_backend/internals/logger"
)

const usage = `usage: quizctl <command> [flags]

commands:
  take     -quiz <id>                      take a quiz (resumes saved answers and timer)
  attempts -quiz <id>                      show your attempts and the resolved result
  create   -lecture <id> -file <quiz.yaml> create a quiz (instructor)

env: QUIZ_API_URL, QUIZ_TOKEN, QUIZ_CACHE_FILE`

type env struct {
	api   *quizapi.Client
	cache *attemptcache.Cache
	in    <-chan string
	out   io.Writer
	tick  time.Duration
}

// Run menjalankan satu subcommand. in dibaca per baris.
func Run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	_ = godotenv.Load()
	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return errors.New("missing command")
	}

	baseURL := getenv("QUIZ_API_URL", "http://localhost:3000")
	cachePath := getenv("QUIZ_CACHE_FILE", defaultCachePath())
	e := &env{
		api:   quizapi.New(baseURL, os.Getenv("QUIZ_TOKEN")),
		cache: attemptcache.New(attemptcache.NewFileStorage(cachePath), attemptcache.WithLogger(logger.New("quizctl", "warn", os.Stderr))),
		in:    readLines(in),
		out:   out,
		tick:  time.Second,
	}
	return e.dispatch(ctx, args)
}

func (e *env) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(e.out)
	quizID := fs.String("quiz", "", "quiz id")
	lectureID := fs.String("lecture", "", "lecture id (create)")
	file := fs.String("file", "", "quiz definition, .json or .yaml (create)")
	timeLimit := fs.Int("time-limit", 0, "minutes, 0 = server default (create)")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	switch cmd {
	case "take":
		if *quizID == "" {
			return errors.New("-quiz is required")
		}
		return e.take(ctx, *quizID)
	case "attempts":
		if *quizID == "" {
			return errors.New("-quiz is required")
		}
		return e.attempts(ctx, *quizID)
	case "create":
		if *lectureID == "" || *file == "" {
			return errors.New("-lecture and -file are required")
		}
		return e.create(ctx, *lectureID, *file, *timeLimit)
	default:
		fmt.Fprintln(e.out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

/* =========================================================
   take
========================================================= */

func (e *env) take(ctx context.Context, quizID string) error {
	quiz, err := e.api.GetQuiz(ctx, quizID)
	var already *quizapi.AlreadyAttemptedError
	if errors.As(err, &already) {
		fmt.Fprintln(e.out, "You have already attempted this quiz.")
		_ = e.cache.Close(ctx, quizID, true)
		var server []quizapi.Attempt
		if already.Attempt != nil {
			server = append(server, *already.Attempt)
		}
		return e.showResult(ctx, quizID, nil, server)
	}
	if err != nil {
		// marker lokal: sudah pernah submit, jangan mulai quiz baru
		if transient(err) && e.cache.IsAttempted(ctx, quizID) && e.showSnapshot(ctx, quizID, err) {
			return nil
		}
		return err
	}

	limit := time.Duration(quiz.TimeLimit) * time.Minute
	remaining, resumed := e.cache.RestoreTimer(ctx, quizID, limit)
	if resumed {
		fmt.Fprintf(e.out, "Resuming quiz, %s left.\n", countdown.Format(remaining))
	}

	expired := make(chan struct{})
	cd := countdown.New(limit,
		countdown.WithPersist(func(left time.Duration) { _ = e.cache.SaveTimer(ctx, quizID, left) }),
		countdown.OnExpire(func() { close(expired) }),
	)
	if err := cd.Start(remaining); err != nil {
		return err
	}

	runCtx, stopRun := context.WithCancel(ctx)
	defer stopRun()
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	go cd.Run(runCtx, ticker.C, e.tick)

	saved := map[int]int{}
	for _, a := range e.cache.Answers(ctx, quizID) {
		saved[a.QuestionIndex] = a.SelectedAnswer
	}
	quit, err := e.askQuestions(ctx, quiz, cd, expired, saved)
	if err != nil {
		return err
	}
	if quit {
		cd.Stop()
		fmt.Fprintln(e.out, "Quiz closed, progress discarded.")
		return e.cache.Close(ctx, quizID, true)
	}
	return e.submit(ctx, quiz, cd, saved)
}

// askQuestions → quit=true kalau user mengetik "q". saved diisi pilihan user;
// cache hanya salinan untuk reload.
func (e *env) askQuestions(ctx context.Context, quiz *quizapi.Quiz, cd *countdown.Countdown, expired <-chan struct{}, saved map[int]int) (bool, error) {
	for i, q := range quiz.Questions {
		fmt.Fprintf(e.out, "\n[%s] Q%d/%d: %s\n", countdown.Format(cd.Remaining()), i+1, len(quiz.Questions), q.Question)
		for j, opt := range q.Options {
			mark := " "
			if sel, ok := saved[i]; ok && sel == j {
				mark = "*"
			}
			fmt.Fprintf(e.out, " %s %c. %s\n", mark, 'A'+j, opt)
		}

		for {
			fmt.Fprint(e.out, "answer (letter, enter = keep/skip, q = quit): ")
			var line string
			select {
			case <-expired:
				fmt.Fprintln(e.out, "\n⏰ Time is up, submitting.")
				return false, nil
			case <-ctx.Done():
				return false, ctx.Err()
			case l, ok := <-e.in:
				if !ok {
					// input habis: submit apa yang sudah ada
					return false, nil
				}
				line = strings.ToUpper(strings.TrimSpace(l))
			}

			if line == "Q" {
				return true, nil
			}
			if line == "" {
				break
			}
			idx, ok := parseOption(line, len(q.Options))
			if !ok {
				fmt.Fprintf(e.out, "Invalid input. Enter a letter A-%c.\n", 'A'+len(q.Options)-1)
				continue
			}
			saved[i] = idx
			if err := e.cache.RecordAnswer(ctx, quiz.ID, i, idx); err != nil {
				fmt.Fprintln(e.out, "⚠️ answer not saved locally, it will still be submitted.")
			}
			break
		}
	}
	return false, nil
}

func parseOption(s string, n int) (int, bool) {
	if len(s) != 1 || n < 1 {
		return 0, false
	}
	idx := int(s[0] - 'A')
	if idx < 0 || idx >= n {
		return 0, false
	}
	return idx, true
}

func (e *env) submit(ctx context.Context, quiz *quizapi.Quiz, cd *countdown.Countdown, saved map[int]int) error {
	if err := cd.Submit(); err != nil && !errors.Is(err, countdown.ErrAlreadySubmitted) {
		return err
	}

	picked := make([]scoring.Answer, 0, len(saved))
	for idx, sel := range saved {
		picked = append(picked, scoring.Answer{QuestionIndex: idx, SelectedAnswer: sel})
	}
	answers := scoring.Normalize(picked, len(quiz.Questions))
	res, err := e.api.Submit(ctx, quiz.ID, quizapi.SubmitRequest{
		Answers:   answers,
		TimeTaken: cd.Elapsed().Minutes(),
	})

	var already *quizapi.AlreadyAttemptedError
	switch {
	case errors.As(err, &already):
		fmt.Fprintln(e.out, "You have already attempted this quiz.")
		_ = e.cache.Close(ctx, quiz.ID, true)
		var server []quizapi.Attempt
		if already.Attempt != nil {
			server = append(server, *already.Attempt)
		}
		return e.showResult(ctx, quiz.ID, quiz, server)
	case err != nil:
		// jawaban tetap di cache, bisa dicoba lagi
		return fmt.Errorf("submit failed, answers kept locally: %w", err)
	}

	snap := attemptcache.ResultFromBreakdown(res, answers)
	_ = e.cache.MarkSubmitted(ctx, quiz.ID, snap)
	printResult(e.out, snap)
	return nil
}

/* =========================================================
   attempts / create
========================================================= */

func (e *env) attempts(ctx context.Context, quizID string) error {
	list, err := e.api.ListAttempts(ctx, quizID)
	if err != nil {
		if transient(err) && e.showSnapshot(ctx, quizID, err) {
			return nil
		}
		return err
	}
	fmt.Fprintf(e.out, "%d attempt(s)\n", len(list))
	for _, a := range list {
		score := "-"
		if a.Score != nil {
			score = fmt.Sprintf("%d%%", *a.Score)
		}
		fmt.Fprintf(e.out, "  %s  %s  score %s\n", a.ID, a.SubmittedAt.Format(time.RFC3339), score)
	}
	return e.showResult(ctx, quizID, nil, list)
}

func (e *env) showResult(ctx context.Context, quizID string, quiz *quizapi.Quiz, server []quizapi.Attempt) error {
	res, ok := e.cache.ResolveView(ctx, quizID, quiz, server)
	if !ok {
		fmt.Fprintln(e.out, "No result available.")
		return nil
	}
	printResult(e.out, res)
	return nil
}

// showSnapshot: server tidak terjangkau, tampilkan snapshot lokal kalau ada.
func (e *env) showSnapshot(ctx context.Context, quizID string, cause error) bool {
	res, ok := e.cache.ResolveView(ctx, quizID, nil, nil)
	if !ok {
		return false
	}
	fmt.Fprintf(e.out, "⚠️ server unavailable (%v), showing saved result.\n", cause)
	printResult(e.out, res)
	return true
}

// transient: gagal di transport (bukan jawaban server, bukan id invalid).
func transient(err error) bool {
	var apiErr *quizapi.APIError
	var already *quizapi.AlreadyAttemptedError
	switch {
	case err == nil, errors.As(err, &apiErr), errors.As(err, &already), errors.Is(err, ids.ErrInvalid):
		return false
	case errors.Is(err, context.Canceled):
		return false
	}
	return true
}

func printResult(out io.Writer, r attemptcache.Result) {
	fmt.Fprintf(out, "\nScore: %d%%\n", r.Score)
	fmt.Fprintf(out, "Correct: %d  Incorrect: %d  Unattempted: %d  Total: %d\n",
		r.CorrectAnswers, r.IncorrectAnswers, r.Unattempted, r.TotalQuestions)
	fmt.Fprintf(out, "Time taken: %.2f min (%s)\n", r.TimeTaken, r.Source)
}

type quizFile struct {
	Questions []quizapi.Question `json:"questions" yaml:"questions"`
}

type yamlQuestion struct {
	Question      string   `yaml:"question"`
	Options       []string `yaml:"options"`
	CorrectAnswer int      `yaml:"correct_answer"`
}

func loadQuizFile(path string) ([]quizapi.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc struct {
			Questions []yamlQuestion `yaml:"questions"`
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		out := make([]quizapi.Question, 0, len(doc.Questions))
		for _, q := range doc.Questions {
			out = append(out, quizapi.Question{Question: q.Question, Options: q.Options, CorrectAnswer: q.CorrectAnswer})
		}
		return out, nil
	default:
		var doc quizFile
		if err := sonic.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return doc.Questions, nil
	}
}

func (e *env) create(ctx context.Context, lectureID, file string, timeLimit int) error {
	questions, err := loadQuizFile(file)
	if err != nil {
		return err
	}
	req := quizapi.CreateQuizRequest{LectureID: lectureID, Questions: questions}
	if timeLimit > 0 {
		req.TimeLimit = &timeLimit
	}
	quiz, err := e.api.CreateQuiz(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "Created quiz %s (%d questions, %d min)\n", quiz.ID, len(quiz.Questions), quiz.TimeLimit)
	return nil
}

/* =========================================================
   helpers
========================================================= */

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "quizctl", "attempts.json")
}

// readLines: stdin dibaca di goroutine supaya prompt bisa di-select bareng timer.
func readLines(in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			ch <- sc.Text()
		}
	}()
	return ch
}
