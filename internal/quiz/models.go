// Package quiz holds the domain model and persistence for sources, topics,
// generated questions, quizzes, and scored attempts.
package quiz

type Source struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"` // url, pdf, docx, image
	Title     string            `json:"title"`
	Content   string            `json:"content"` // extracted text, or the URL itself for lazy url sources
	Meta      map[string]string `json:"metadata,omitempty"`
	CreatedAt int64             `json:"created_at"`
}

type Topic struct {
	ID          string `json:"id"`
	SourceID    string `json:"source_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"created_at"`
}

// Answer is one of a question's six options. Correctness and point weight
// are fixed at generation time: four correct at +0.25, two incorrect at
// -0.5.
type Answer struct {
	ID      int64   `json:"id"`
	Text    string  `json:"text"`
	Correct bool    `json:"is_correct"`
	Points  float64 `json:"points"`
}

type Question struct {
	ID        string   `json:"id"`
	TopicID   string   `json:"topic_id"`
	Prompt    string   `json:"question_text"`
	Answers   []Answer `json:"answers"`
	CreatedAt int64    `json:"created_at"`
}

// Quiz is an ordered, immutable selection of questions.
type Quiz struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	QuestionIDs []string `json:"question_ids"`
	CreatedAt   int64    `json:"created_at"`
}

// Attempt is one respondent's submission, immutable once created.
type Attempt struct {
	ID          string             `json:"id"`
	QuizID      string             `json:"quiz_id"`
	Selected    map[string][]int64 `json:"selected_answers"` // question id -> selected option ids
	Scores      map[string]float64 `json:"question_scores"`
	Total       float64            `json:"total_score"`
	MaxPossible float64            `json:"max_possible"`
	Percent     float64            `json:"percent"`
	CompletedAt int64              `json:"completed_at"`
}

// TakeAnswer and TakeQuestion are the student-facing views with
// correctness stripped.
type TakeAnswer struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

type TakeQuestion struct {
	ID      string       `json:"id"`
	TopicID string       `json:"topic_id"`
	Prompt  string       `json:"question_text"`
	Answers []TakeAnswer `json:"answers"`
}

// TakeView strips answer keys before serving a quiz to a respondent.
func TakeView(questions []Question) []TakeQuestion {
	out := make([]TakeQuestion, 0, len(questions))
	for _, q := range questions {
		tq := TakeQuestion{ID: q.ID, TopicID: q.TopicID, Prompt: q.Prompt}
		for _, a := range q.Answers {
			tq.Answers = append(tq.Answers, TakeAnswer{ID: a.ID, Text: a.Text})
		}
		out = append(out, tq)
	}
	return out
}
