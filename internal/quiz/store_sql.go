package quiz

import (
	"database/sql"
	"encoding/json"
	"errors"
)

// SQLStore persists the domain over database/sql. Nested data (answers,
// question id lists, selections) lives in JSON text columns; the same
// statements work on sqlite and postgres.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) PutSource(src Source) error {
	meta, err := json.Marshal(src.Meta)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO sources (id,type,title,content,meta_json,created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		src.ID, src.Type, src.Title, src.Content, string(meta), src.CreatedAt)
	return err
}

func scanSource(row interface{ Scan(...any) error }) (Source, error) {
	var src Source
	var meta string
	if err := row.Scan(&src.ID, &src.Type, &src.Title, &src.Content, &meta, &src.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Source{}, ErrNotFound
		}
		return Source{}, err
	}
	if meta != "" {
		if err := json.Unmarshal([]byte(meta), &src.Meta); err != nil {
			src.Meta = nil
		}
	}
	return src, nil
}

func (s *SQLStore) ListSources() ([]Source, error) {
	rows, err := s.db.Query(`SELECT id,type,title,content,meta_json,created_at FROM sources ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetSource(id string) (Source, error) {
	row := s.db.QueryRow(`SELECT id,type,title,content,meta_json,created_at FROM sources WHERE id=$1`, id)
	return scanSource(row)
}

func (s *SQLStore) DeleteSource(id string) error {
	res, err := s.db.Exec(`DELETE FROM sources WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PutTopic(t Topic) error {
	_, err := s.db.Exec(`INSERT INTO topics (id,source_id,title,description,created_at) VALUES ($1,$2,$3,$4,$5)`,
		t.ID, t.SourceID, t.Title, t.Description, t.CreatedAt)
	return err
}

func (s *SQLStore) GetTopic(id string) (Topic, error) {
	row := s.db.QueryRow(`SELECT id,source_id,title,description,created_at FROM topics WHERE id=$1`, id)
	var t Topic
	if err := row.Scan(&t.ID, &t.SourceID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Topic{}, ErrNotFound
		}
		return Topic{}, err
	}
	return t, nil
}

func (s *SQLStore) TopicsBySource(sourceID string) ([]Topic, error) {
	rows, err := s.db.Query(`SELECT id,source_id,title,description,created_at FROM topics WHERE source_id=$1 ORDER BY created_at`, sourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Topic
	for rows.Next() {
		var t Topic
		if err := rows.Scan(&t.ID, &t.SourceID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpdateTopic(id string, title, description *string) (Topic, error) {
	t, err := s.GetTopic(id)
	if err != nil {
		return Topic{}, err
	}
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}
	_, err = s.db.Exec(`UPDATE topics SET title=$1, description=$2 WHERE id=$3`, t.Title, t.Description, id)
	if err != nil {
		return Topic{}, err
	}
	return t, nil
}

func (s *SQLStore) PutQuestion(q Question) error {
	aj, err := json.Marshal(q.Answers)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO questions (id,topic_id,question_text,answers_json,created_at) VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.TopicID, q.Prompt, string(aj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuestion(id string) (Question, error) {
	row := s.db.QueryRow(`SELECT id,topic_id,question_text,answers_json,created_at FROM questions WHERE id=$1`, id)
	var q Question
	var aj string
	if err := row.Scan(&q.ID, &q.TopicID, &q.Prompt, &aj, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	if err := json.Unmarshal([]byte(aj), &q.Answers); err != nil {
		return Question{}, err
	}
	return q, nil
}

func (s *SQLStore) QuestionsByTopic(topicID string) ([]Question, error) {
	rows, err := s.db.Query(`SELECT id,topic_id,question_text,answers_json,created_at FROM questions WHERE topic_id=$1 ORDER BY created_at`, topicID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var q Question
		var aj string
		if err := rows.Scan(&q.ID, &q.TopicID, &q.Prompt, &aj, &q.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aj), &q.Answers); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) PutQuiz(q Quiz) error {
	ids, err := json.Marshal(q.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO quizzes (id,title,description,question_ids_json,created_at) VALUES ($1,$2,$3,$4,$5)`,
		q.ID, q.Title, q.Description, string(ids), q.CreatedAt)
	return err
}

func scanQuiz(row interface{ Scan(...any) error }) (Quiz, error) {
	var q Quiz
	var ids string
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &ids, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	if err := json.Unmarshal([]byte(ids), &q.QuestionIDs); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes() ([]Quiz, error) {
	rows, err := s.db.Query(`SELECT id,title,description,question_ids_json,created_at FROM quizzes ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Quiz
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetQuiz(id string) (Quiz, error) {
	row := s.db.QueryRow(`SELECT id,title,description,question_ids_json,created_at FROM quizzes WHERE id=$1`, id)
	return scanQuiz(row)
}

func (s *SQLStore) DeleteQuiz(id string) error {
	res, err := s.db.Exec(`DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) PutAttempt(a Attempt) error {
	sel, err := json.Marshal(a.Selected)
	if err != nil {
		return err
	}
	scores, err := json.Marshal(a.Scores)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO quiz_attempts (id,quiz_id,selected_json,scores_json,total_score,max_possible,percent,completed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.QuizID, string(sel), string(scores), a.Total, a.MaxPossible, a.Percent, a.CompletedAt)
	return err
}

func scanAttempt(row interface{ Scan(...any) error }) (Attempt, error) {
	var a Attempt
	var sel, scores string
	if err := row.Scan(&a.ID, &a.QuizID, &sel, &scores, &a.Total, &a.MaxPossible, &a.Percent, &a.CompletedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(sel), &a.Selected); err != nil {
		a.Selected = map[string][]int64{}
	}
	if err := json.Unmarshal([]byte(scores), &a.Scores); err != nil {
		a.Scores = map[string]float64{}
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(id string) (Attempt, error) {
	row := s.db.QueryRow(`SELECT id,quiz_id,selected_json,scores_json,total_score,max_possible,percent,completed_at FROM quiz_attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) AttemptsByQuiz(quizID string) ([]Attempt, error) {
	rows, err := s.db.Query(`SELECT id,quiz_id,selected_json,scores_json,total_score,max_possible,percent,completed_at FROM quiz_attempts WHERE quiz_id=$1 ORDER BY completed_at`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
