// Package scoring turns a respondent's per-question selections into a
// bounded, deterministic score and aggregates quiz-level results.
package scoring

import (
	"errors"
	"fmt"
)

const (
	// NumOptions and NumCorrect pin the question shape the generator
	// contract guarantees: six options, four of them correct.
	NumOptions = 6
	NumCorrect = 4

	correctCredit    = 0.25
	incorrectPenalty = 0.5

	// MaxPerQuestion is the natural ceiling: all four correct, nothing else.
	MaxPerQuestion = NumCorrect * correctCredit
)

var (
	ErrMalformedQuestion   = errors.New("malformed question")
	ErrMalformedSubmission = errors.New("malformed submission")
)

// Option is one answer choice with its correctness flag.
type Option struct {
	ID      int64
	Correct bool
}

// Question is the minimal view needed for grading.
type Question struct {
	ID      string
	Options []Option
}

// OptionReview reports the (selected, correct) state of a single option so a
// caller can render selected-and-correct, missed, selected-and-wrong, etc.
type OptionReview struct {
	OptionID int64 `json:"option_id"`
	Selected bool  `json:"selected"`
	Correct  bool  `json:"correct"`
}

// Result is the graded outcome of a single question.
type Result struct {
	Points    float64        `json:"points"`
	MaxPoints float64        `json:"max_points"`
	Review    []OptionReview `json:"review"`
}

// Summary aggregates a full quiz submission.
type Summary struct {
	Total       float64           `json:"total"`
	MaxPossible float64           `json:"max_possible"`
	Percent     float64           `json:"percent"`
	PerQuestion map[string]Result `json:"per_question"`
}

// Validate checks the six-option/four-correct invariant.
func Validate(q Question) error {
	if len(q.Options) != NumOptions {
		return fmt.Errorf("%w: question %s has %d options, want %d",
			ErrMalformedQuestion, q.ID, len(q.Options), NumOptions)
	}
	correct := 0
	seen := make(map[int64]struct{}, NumOptions)
	for _, o := range q.Options {
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: question %s has duplicate option id %d",
				ErrMalformedQuestion, q.ID, o.ID)
		}
		seen[o.ID] = struct{}{}
		if o.Correct {
			correct++
		}
	}
	if correct != NumCorrect {
		return fmt.Errorf("%w: question %s has %d correct options, want %d",
			ErrMalformedQuestion, q.ID, correct, NumCorrect)
	}
	return nil
}

// Grade scores one question. Selected correct options add credit, selected
// incorrect options subtract a penalty, and the raw sum is clamped at zero.
// Duplicate or unknown option ids reject the submission rather than being
// silently deduplicated.
func Grade(q Question, selected []int64) (Result, error) {
	if err := Validate(q); err != nil {
		return Result{}, err
	}
	if len(selected) > NumOptions {
		return Result{}, fmt.Errorf("%w: question %s has %d selections, max %d",
			ErrMalformedSubmission, q.ID, len(selected), NumOptions)
	}

	byID := make(map[int64]Option, NumOptions)
	for _, o := range q.Options {
		byID[o.ID] = o
	}
	picked := make(map[int64]struct{}, len(selected))
	for _, id := range selected {
		if _, ok := byID[id]; !ok {
			return Result{}, fmt.Errorf("%w: question %s has no option %d",
				ErrMalformedSubmission, q.ID, id)
		}
		if _, dup := picked[id]; dup {
			return Result{}, fmt.Errorf("%w: option %d selected twice for question %s",
				ErrMalformedSubmission, id, q.ID)
		}
		picked[id] = struct{}{}
	}

	raw := 0.0
	review := make([]OptionReview, 0, NumOptions)
	for _, o := range q.Options {
		_, sel := picked[o.ID]
		if sel {
			if o.Correct {
				raw += correctCredit
			} else {
				raw -= incorrectPenalty
			}
		}
		review = append(review, OptionReview{OptionID: o.ID, Selected: sel, Correct: o.Correct})
	}
	if raw < 0 {
		raw = 0
	}
	return Result{Points: raw, MaxPoints: MaxPerQuestion, Review: review}, nil
}

// GradeQuiz grades every question of a quiz against the respondent's
// selections. Questions without a recorded selection grade as empty (zero
// points). An empty quiz reports zero percent rather than dividing by zero.
func GradeQuiz(questions []Question, selections map[string][]int64) (Summary, error) {
	sum := Summary{PerQuestion: make(map[string]Result, len(questions))}
	for _, q := range questions {
		res, err := Grade(q, selections[q.ID])
		if err != nil {
			return Summary{}, err
		}
		sum.PerQuestion[q.ID] = res
		sum.Total += res.Points
		sum.MaxPossible += MaxPerQuestion
	}
	if sum.MaxPossible > 0 {
		sum.Percent = 100 * sum.Total / sum.MaxPossible
	}
	return sum, nil
}
