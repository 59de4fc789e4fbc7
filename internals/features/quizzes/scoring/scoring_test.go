package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	key := []int{1, 0, 2}

	tests := []struct {
		name    string
		correct []int
		answers []Answer
		want    Result
	}{
		{
			name:    "mixed answers",
			correct: key,
			answers: []Answer{{0, 1}, {1, 1}, {2, 2}},
			want:    Result{Score: 67, TotalQuestions: 3, CorrectAnswers: 2, IncorrectAnswers: 1},
		},
		{
			name:    "only first index submitted as unattempted",
			correct: key,
			answers: []Answer{{0, -1}},
			want:    Result{Score: 0, TotalQuestions: 3, Unattempted: 3},
		},
		{
			name:    "missing index two counts as unattempted",
			correct: key,
			answers: []Answer{{0, 1}, {1, 0}},
			want:    Result{Score: 67, TotalQuestions: 3, CorrectAnswers: 2, Unattempted: 1},
		},
		{
			name:    "single question answered correctly",
			correct: []int{3},
			answers: []Answer{{0, 3}},
			want:    Result{Score: 100, TotalQuestions: 1, CorrectAnswers: 1},
		},
		{
			name:    "empty quiz",
			correct: nil,
			answers: []Answer{{0, 1}},
			want:    Result{Score: 0},
		},
		{
			name:    "out of range option is incorrect",
			correct: []int{0, 1},
			answers: []Answer{{0, 9}, {1, 1}},
			want:    Result{Score: 50, TotalQuestions: 2, CorrectAnswers: 1, IncorrectAnswers: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.correct, tt.answers)
			assert.Equal(t, tt.want.Score, got.Score)
			assert.Equal(t, tt.want.TotalQuestions, got.TotalQuestions)
			assert.Equal(t, tt.want.CorrectAnswers, got.CorrectAnswers)
			assert.Equal(t, tt.want.IncorrectAnswers, got.IncorrectAnswers)
			assert.Equal(t, tt.want.Unattempted, got.Unattempted)
			assert.Len(t, got.Answers, len(tt.correct))
		})
	}
}

func TestEvaluateCountsAlwaysCoverEveryQuestion(t *testing.T) {
	correct := []int{0, 1, 2, 3, 0, 1, 2}
	subsets := [][]Answer{
		nil,
		{{0, 0}},
		{{6, 2}, {2, 1}},
		{{0, 0}, {1, 1}, {2, 2}, {3, 3}, {4, 0}, {5, 1}, {6, 2}},
		{{10, 1}, {-3, 0}, {3, -7}},
	}

	for _, answers := range subsets {
		got := Evaluate(correct, answers)
		require.Equal(t, len(correct), got.CorrectAnswers+got.IncorrectAnswers+got.Unattempted)
		require.Equal(t, Percent(got.CorrectAnswers, len(correct)), got.Score)
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Answer{{2, 1}, {0, 0}, {2, 3}, {5, 1}, {1, -4}}, 3)

	assert.Equal(t, []Answer{
		{QuestionIndex: 0, SelectedAnswer: 0},
		{QuestionIndex: 1, SelectedAnswer: Unattempted},
		{QuestionIndex: 2, SelectedAnswer: 3},
	}, got)
	assert.Empty(t, Normalize(nil, 0))
	assert.NotNil(t, Normalize(nil, 0))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 13, Percent(1, 8))
	assert.Equal(t, 100, Percent(1, 1))
}
