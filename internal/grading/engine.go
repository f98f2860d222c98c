package grading

import (
	"math"
	"strings"

	"github.com/amitacademy/testseries/internal/catalog"
	"github.com/amitacademy/testseries/internal/session"
)

// Result is the outcome of evaluating one session against its test.
type Result struct {
	CorrectMCQ         int     `json:"correctMCQ"`
	TotalMCQ           int     `json:"totalMCQ"`
	DescriptiveCount   int     `json:"descriptiveCount"`
	Score              float64 `json:"score"`
	TotalPossibleScore float64 `json:"totalPossibleScore"`
}

// Evaluate scores a session snapshot against the question model. Pure
// function, no side effects.
//
// Each correct MCQ is worth 1 point (letter match, case-insensitive). A
// descriptive question contributes its admin-assigned score when graded and
// nothing when ungraded, but always counts 1 point toward the total
// possible; any different grading scale is flattened to that weight.
func Evaluate(t catalog.Test, s session.SessionState) Result {
	var r Result
	for i, q := range t.Questions {
		answer := s.Answers[i]
		switch q.Type {
		case "mcq":
			r.TotalMCQ++
			if answer != "" && q.Correct != "" && strings.EqualFold(answer, q.Correct) {
				r.CorrectMCQ++
				r.Score++
			}
		case "desc":
			r.DescriptiveCount++
			if score, ok := s.DescriptiveScores[i]; ok {
				r.Score += score
			}
		}
	}
	r.TotalPossibleScore = float64(r.TotalMCQ + r.DescriptiveCount)
	return r
}

// Percent is the rounded score percentage; 0 when nothing is scorable, so
// an empty test never divides by zero.
func (r Result) Percent() int {
	if r.TotalPossibleScore <= 0 {
		return 0
	}
	return int(math.Round(r.Score / r.TotalPossibleScore * 100))
}
