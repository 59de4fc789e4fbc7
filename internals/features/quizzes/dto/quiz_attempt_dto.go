// file: internals/features/quizzes/dto/quiz_attempt_dto.go
package dto

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"coursemarket_backend/internals/features/quizzes/model"
	"coursemarket_backend/internals/features/quizzes/scoring"
)

/* ===================== LOOSE NUMBERS ===================== */

// FlexNumber menerima angka JSON, string angka ("2"), atau null.
// FE lama kadang kirim selected_answer sebagai string.
type FlexNumber struct {
	Value float64
	Valid bool
}

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = FlexNumber{}
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			*n = FlexNumber{}
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		// nilai aneh (bool, object, teks) diperlakukan kosong, bukan error parse body
		*n = FlexNumber{}
		return nil
	}
	*n = FlexNumber{Value: f, Valid: true}
	return nil
}

// Int mengembalikan nilai bulat; pecahan & di luar range int32 dianggap tidak valid.
func (n FlexNumber) Int() (int, bool) {
	if !n.Valid || n.Value != math.Trunc(n.Value) {
		return 0, false
	}
	if n.Value < math.MinInt32 || n.Value > math.MaxInt32 {
		return 0, false
	}
	return int(n.Value), true
}

/* ===================== REQUESTS ===================== */

type SubmitAnswerRequest struct {
	QuestionIndex  FlexNumber `json:"question_index"`
	SelectedAnswer FlexNumber `json:"selected_answer"`
}

type SubmitQuizRequest struct {
	Answers   *[]SubmitAnswerRequest `json:"answers"`
	TimeTaken FlexNumber             `json:"time_taken"` // menit (boleh pecahan)
}

// MaxTimeTaken = batas kolom numeric(8,3).
const MaxTimeTaken = 99999.999

var (
	ErrAnswersMissing    = errors.New("answers must be an array")
	ErrNegativeTimeTaken = errors.New("time_taken must be >= 0")
	ErrTimeTakenTooLarge = errors.New("time_taken must be <= 99999.999")
)

// Ingest menormalkan payload ke bentuk tetap sebelum masuk scoring:
//   - question_index wajib bilangan bulat >= 0, selain itu entri dibuang
//   - selected_answer kosong/null/tidak valid → -1 (tidak dijawab)
//   - time_taken kosong → 0, negatif atau > MaxTimeTaken ditolak
func (r *SubmitQuizRequest) Ingest() ([]scoring.Answer, float64, error) {
	if r.Answers == nil {
		return nil, 0, ErrAnswersMissing
	}

	timeTaken := 0.0
	if r.TimeTaken.Valid {
		if r.TimeTaken.Value < 0 {
			return nil, 0, ErrNegativeTimeTaken
		}
		if r.TimeTaken.Value > MaxTimeTaken {
			return nil, 0, ErrTimeTakenTooLarge
		}
		timeTaken = r.TimeTaken.Value
	}

	out := make([]scoring.Answer, 0, len(*r.Answers))
	for _, a := range *r.Answers {
		idx, ok := a.QuestionIndex.Int()
		if !ok || idx < 0 {
			continue
		}
		sel, ok := a.SelectedAnswer.Int()
		if !ok || sel < 0 {
			sel = scoring.Unattempted
		}
		out = append(out, scoring.Answer{QuestionIndex: idx, SelectedAnswer: sel})
	}
	return out, timeTaken, nil
}

/* ===================== RESPONSES ===================== */

type ScoreBreakdown struct {
	Score            int     `json:"score"`
	TotalQuestions   int     `json:"total_questions"`
	CorrectAnswers   int     `json:"correct_answers"`
	IncorrectAnswers int     `json:"incorrect_answers"`
	Unattempted      int     `json:"unattempted"`
	TimeTaken        float64 `json:"time_taken"`
}

type QuizAttemptResponse struct {
	QuizAttemptID               uuid.UUID        `json:"quiz_attempt_id"`
	QuizAttemptQuizID           uuid.UUID        `json:"quiz_attempt_quiz_id"`
	QuizAttemptUserID           uuid.UUID        `json:"quiz_attempt_user_id"`
	QuizAttemptAnswers          []scoring.Answer `json:"quiz_attempt_answers"`
	QuizAttemptScore            int              `json:"quiz_attempt_score"`
	QuizAttemptTotalQuestions   int              `json:"quiz_attempt_total_questions"`
	QuizAttemptCorrectAnswers   int              `json:"quiz_attempt_correct_answers"`
	QuizAttemptIncorrectAnswers int              `json:"quiz_attempt_incorrect_answers"`
	QuizAttemptUnattempted      int              `json:"quiz_attempt_unattempted"`
	QuizAttemptTimeTaken        float64          `json:"quiz_attempt_time_taken"`
	QuizAttemptSubmittedAt      time.Time        `json:"quiz_attempt_submitted_at"`
	QuizAttemptCreatedAt        time.Time        `json:"quiz_attempt_created_at"`
}

/* ===================== CONVERTERS ===================== */

func ToScoreBreakdown(m *model.QuizAttemptModel) ScoreBreakdown {
	return ScoreBreakdown{
		Score:            m.QuizAttemptScore,
		TotalQuestions:   m.QuizAttemptTotalQuestions,
		CorrectAnswers:   m.QuizAttemptCorrectAnswers,
		IncorrectAnswers: m.QuizAttemptIncorrectAnswers,
		Unattempted:      m.QuizAttemptUnattempted,
		TimeTaken:        m.QuizAttemptTimeTaken,
	}
}

// ToQuizAttemptResponse: answers selalu array (tidak pernah null) walau JSONB rusak/kosong.
func ToQuizAttemptResponse(m *model.QuizAttemptModel) *QuizAttemptResponse {
	if m == nil {
		return nil
	}
	answers, err := m.Answers()
	if err != nil {
		answers = []scoring.Answer{}
	}
	return &QuizAttemptResponse{
		QuizAttemptID:               m.QuizAttemptID,
		QuizAttemptQuizID:           m.QuizAttemptQuizID,
		QuizAttemptUserID:           m.QuizAttemptUserID,
		QuizAttemptAnswers:          answers,
		QuizAttemptScore:            m.QuizAttemptScore,
		QuizAttemptTotalQuestions:   m.QuizAttemptTotalQuestions,
		QuizAttemptCorrectAnswers:   m.QuizAttemptCorrectAnswers,
		QuizAttemptIncorrectAnswers: m.QuizAttemptIncorrectAnswers,
		QuizAttemptUnattempted:      m.QuizAttemptUnattempted,
		QuizAttemptTimeTaken:        m.QuizAttemptTimeTaken,
		QuizAttemptSubmittedAt:      m.QuizAttemptSubmittedAt,
		QuizAttemptCreatedAt:        m.QuizAttemptCreatedAt,
	}
}

func ToQuizAttemptResponses(rows []model.QuizAttemptModel) []QuizAttemptResponse {
	out := make([]QuizAttemptResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *ToQuizAttemptResponse(&rows[i]))
	}
	return out
}
