package quiz

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/scoring"
)

// QuizQuestions loads a quiz's questions in quiz order. Questions deleted
// since quiz creation are skipped.
func QuizQuestions(store Store, q Quiz) ([]Question, error) {
	out := make([]Question, 0, len(q.QuestionIDs))
	for _, id := range q.QuestionIDs {
		qu, err := store.GetQuestion(id)
		if err != nil {
			if err == ErrNotFound {
				continue
			}
			return nil, err
		}
		out = append(out, qu)
	}
	return out, nil
}

func toScoring(q Question) scoring.Question {
	sq := scoring.Question{ID: q.ID, Options: make([]scoring.Option, 0, len(q.Answers))}
	for _, a := range q.Answers {
		sq.Options = append(sq.Options, scoring.Option{ID: a.ID, Correct: a.Correct})
	}
	return sq
}

// SubmitQuiz grades a submission against the quiz's questions, persists the
// attempt, and returns it. Scoring input errors surface unchanged so the
// handler can report malformed questions or submissions as hard failures.
func SubmitQuiz(store Store, quizID string, selected map[string][]int64) (Attempt, error) {
	qz, err := store.GetQuiz(quizID)
	if err != nil {
		return Attempt{}, err
	}
	questions, err := QuizQuestions(store, qz)
	if err != nil {
		return Attempt{}, err
	}

	sqs := make([]scoring.Question, 0, len(questions))
	for _, q := range questions {
		sqs = append(sqs, toScoring(q))
	}
	sum, err := scoring.GradeQuiz(sqs, selected)
	if err != nil {
		return Attempt{}, err
	}

	a := Attempt{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		Selected:    selected,
		Scores:      make(map[string]float64, len(sum.PerQuestion)),
		Total:       sum.Total,
		MaxPossible: sum.MaxPossible,
		Percent:     sum.Percent,
		CompletedAt: time.Now().Unix(),
	}
	if a.Selected == nil {
		a.Selected = map[string][]int64{}
	}
	for id, res := range sum.PerQuestion {
		a.Scores[id] = res.Points
	}
	if err := store.PutAttempt(a); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

// AttemptDetail is an attempt joined with its quiz, questions, and the
// per-option review needed to render results.
type AttemptDetail struct {
	Attempt
	Quiz      Quiz                              `json:"quiz"`
	Questions []Question                        `json:"questions"`
	Review    map[string][]scoring.OptionReview `json:"review"`
}

// AttemptDetails re-grades the stored selections to rebuild per-option
// review state. Grading is deterministic, so this always reproduces the
// scores recorded at submission time.
func AttemptDetails(store Store, attemptID string) (AttemptDetail, error) {
	a, err := store.GetAttempt(attemptID)
	if err != nil {
		return AttemptDetail{}, err
	}
	qz, err := store.GetQuiz(a.QuizID)
	if err != nil {
		return AttemptDetail{}, err
	}
	questions, err := QuizQuestions(store, qz)
	if err != nil {
		return AttemptDetail{}, err
	}

	d := AttemptDetail{Attempt: a, Quiz: qz, Questions: questions, Review: map[string][]scoring.OptionReview{}}
	for _, q := range questions {
		res, err := scoring.Grade(toScoring(q), a.Selected[q.ID])
		if err != nil {
			return AttemptDetail{}, fmt.Errorf("attempt %s question %s: %w", a.ID, q.ID, err)
		}
		d.Review[q.ID] = res.Review
	}
	return d, nil
}

var numberedTitle = regexp.MustCompile(`^(.+?)\s+(\d+)$`)

// UniqueTitle appends an iteration number when base collides with an
// existing topic title ("Pointers", "Pointers 1", "Pointers 2", ...).
func UniqueTitle(base string, existing []Topic) string {
	baseLower := strings.ToLower(strings.TrimSpace(base))
	max := -1
	for _, t := range existing {
		title := strings.TrimSpace(t.Title)
		if strings.ToLower(title) == baseLower {
			if max < 0 {
				max = 0
			}
			continue
		}
		if m := numberedTitle.FindStringSubmatch(title); m != nil {
			if strings.ToLower(strings.TrimSpace(m[1])) == baseLower {
				if n, err := strconv.Atoi(m[2]); err == nil && n > max {
					max = n
				}
			}
		}
	}
	if max < 0 {
		return base
	}
	return fmt.Sprintf("%s %d", base, max+1)
}
