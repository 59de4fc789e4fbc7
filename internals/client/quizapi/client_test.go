package quizapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursemarket_backend/internals/constants"
	"coursemarket_backend/internals/features/quizzes/ids"
	"coursemarket_backend/internals/features/quizzes/repository"
	"coursemarket_backend/internals/features/quizzes/scoring"
	"coursemarket_backend/internals/features/quizzes/service"
	"coursemarket_backend/internals/metrics"
	routes "coursemarket_backend/internals/route"
)

const secret = "quizapi-test-secret"

func signToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   userID.String(),
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

// startServer menjalankan app asli di port acak.
func startServer(t *testing.T) (string, uuid.UUID) {
	t.Helper()
	store := repository.NewMemoryStore()
	lectureID := uuid.New()
	require.NoError(t, store.UpsertLecture(context.Background(), &repository.LectureSeed{
		ID: lectureID, CourseID: uuid.New(), Title: "Lecture",
	}))
	m := metrics.New("quizapi_test")
	app := routes.NewApp(nil, routes.Deps{
		QuizService: service.NewQuizService(store, service.WithObserver(m)),
		Metrics:     m,
		JWTSecret:   secret,
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String(), lectureID
}

func TestClientAgainstServer(t *testing.T) {
	base, lectureID := startServer(t)
	ctx := context.Background()

	instructor := New(base, signToken(t, uuid.New(), constants.RoleInstructor))
	quiz, err := instructor.CreateQuiz(ctx, CreateQuizRequest{
		LectureID: lectureID.String(),
		Questions: []Question{
			{Question: "2+2", Options: []string{"3", "4"}, CorrectAnswer: 1},
			{Question: "3+3", Options: []string{"6", "7"}, CorrectAnswer: 0},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 30, quiz.TimeLimit)

	student := New(base, signToken(t, uuid.New(), constants.RoleStudent))

	got, err := student.GetQuiz(ctx, quiz.ID+":slug")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0}, got.AnswerKey())

	res, err := student.Submit(ctx, quiz.ID, SubmitRequest{
		Answers:   []scoring.Answer{{QuestionIndex: 0, SelectedAnswer: 1}},
		TimeTaken: 1.25,
	})
	require.NoError(t, err)
	assert.Equal(t, 50, res.Score)
	assert.Equal(t, 1, res.Unattempted)

	_, err = student.Submit(ctx, quiz.ID, SubmitRequest{})
	var already *AlreadyAttemptedError
	require.ErrorAs(t, err, &already)
	require.NotNil(t, already.Attempt)
	assert.Equal(t, 50, *already.Attempt.Score)

	_, err = student.GetQuiz(ctx, quiz.ID)
	assert.ErrorIs(t, err, ErrAlreadyAttempted)

	list, err := student.ListAttempts(ctx, quiz.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Answers, 2)
	assert.True(t, list[0].HasScore())

	// validasi & not found
	_, err = instructor.CreateQuiz(ctx, CreateQuizRequest{LectureID: lectureID.String()})
	assert.True(t, IsValidation(err), err)
	_, err = student.GetQuiz(ctx, uuid.NewString())
	assert.True(t, IsNotFound(err), err)

	// tanpa token
	_, err = New(base, "").GetQuiz(ctx, quiz.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestClientRejectsInvalidIDLocally(t *testing.T) {
	c := New("http://127.0.0.1:1", "tok")
	_, err := c.GetQuiz(context.Background(), "  :slug")
	assert.ErrorIs(t, err, ids.ErrInvalid)
	_, err = c.Submit(context.Background(), uuid.Nil.String(), SubmitRequest{})
	assert.ErrorIs(t, err, ids.ErrInvalid)
}

func TestClientPartialAttemptAndPlainErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/quiz/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if strings.HasSuffix(r.URL.Path, "/attempts") {
			_, _ = w.Write([]byte(`{"success":true,"data":[{"quiz_attempt_id":"a1","quiz_attempt_answers":[{"question_index":0,"selected_answer":2}]}],"count":1}`))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, "tok")
	list, err := c.ListAttempts(context.Background(), uuid.NewString())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].HasScore())
	assert.Nil(t, list[0].Score)

	_, err = c.GetQuiz(context.Background(), uuid.NewString())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream down", apiErr.Message)
	assert.False(t, errors.Is(err, ErrAlreadyAttempted))
}

func TestClientHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New("http://127.0.0.1:1", "").ListAttempts(ctx, uuid.NewString())
	assert.ErrorIs(t, err, context.Canceled)
}
