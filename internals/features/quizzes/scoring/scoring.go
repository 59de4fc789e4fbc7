// Package scoring: hitung skor dari daftar jawaban. Dipakai server saat submit
// dan client saat attempt dari server tidak membawa counter.
package scoring

import "math"

// Unattempted = soal tidak dijawab.
const Unattempted = -1

type Answer struct {
	QuestionIndex  int `json:"question_index"`
	SelectedAnswer int `json:"selected_answer"`
}

type Result struct {
	Score            int      `json:"score"`
	TotalQuestions   int      `json:"total_questions"`
	CorrectAnswers   int      `json:"correct_answers"`
	IncorrectAnswers int      `json:"incorrect_answers"`
	Unattempted      int      `json:"unattempted"`
	Answers          []Answer `json:"answers"`
}

// Normalize → tepat satu jawaban per index soal di [0, total).
// Index hilang/negatif jadi Unattempted, di luar range dibuang, index dobel
// pakai nilai terakhir.
func Normalize(answers []Answer, total int) []Answer {
	if total < 0 {
		total = 0
	}
	byIndex := make(map[int]int, len(answers))
	for _, a := range answers {
		if a.QuestionIndex < 0 || a.QuestionIndex >= total {
			continue
		}
		byIndex[a.QuestionIndex] = a.SelectedAnswer
	}

	out := make([]Answer, total)
	for i := 0; i < total; i++ {
		sel, ok := byIndex[i]
		if !ok || sel < 0 {
			sel = Unattempted
		}
		out[i] = Answer{QuestionIndex: i, SelectedAnswer: sel}
	}
	return out
}

// Evaluate: correct[i] = index opsi benar (mulai 0) untuk soal ke-i.
func Evaluate(correct []int, answers []Answer) Result {
	total := len(correct)
	res := Result{
		TotalQuestions: total,
		Answers:        Normalize(answers, total),
	}

	for _, a := range res.Answers {
		switch {
		case a.SelectedAnswer == Unattempted:
			res.Unattempted++
		case a.SelectedAnswer == correct[a.QuestionIndex]:
			res.CorrectAnswers++
		default:
			res.IncorrectAnswers++
		}
	}
	res.Score = Percent(res.CorrectAnswers, total)
	return res
}

// Percent = round(correct / total * 100); quiz kosong → 0.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}
