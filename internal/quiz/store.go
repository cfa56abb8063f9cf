package quiz

import (
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("not found")

type Store interface {
	PutSource(s Source) error
	ListSources() ([]Source, error)
	GetSource(id string) (Source, error)
	DeleteSource(id string) error

	PutTopic(t Topic) error
	GetTopic(id string) (Topic, error)
	TopicsBySource(sourceID string) ([]Topic, error)
	UpdateTopic(id string, title, description *string) (Topic, error)

	PutQuestion(q Question) error
	GetQuestion(id string) (Question, error)
	QuestionsByTopic(topicID string) ([]Question, error)

	PutQuiz(q Quiz) error
	ListQuizzes() ([]Quiz, error)
	GetQuiz(id string) (Quiz, error)
	DeleteQuiz(id string) error

	PutAttempt(a Attempt) error
	GetAttempt(id string) (Attempt, error)
	AttemptsByQuiz(quizID string) ([]Attempt, error)
}

type memoryStore struct {
	mu        sync.RWMutex
	sources   map[string]Source
	topics    map[string]Topic
	questions map[string]Question
	quizzes   map[string]Quiz
	attempts  map[string]Attempt
}

// NewInMemoryStore backs tests and quick local runs.
func NewInMemoryStore() Store {
	return &memoryStore{
		sources:   map[string]Source{},
		topics:    map[string]Topic{},
		questions: map[string]Question{},
		quizzes:   map[string]Quiz{},
		attempts:  map[string]Attempt{},
	}
}

func (m *memoryStore) PutSource(s Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources[s.ID] = s
	return nil
}

func (m *memoryStore) ListSources() ([]Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Source, 0, len(m.sources))
	for _, s := range m.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) GetSource(id string) (Source, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sources[id]
	if !ok {
		return Source{}, ErrNotFound
	}
	return s, nil
}

func (m *memoryStore) DeleteSource(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sources[id]; !ok {
		return ErrNotFound
	}
	delete(m.sources, id)
	// cascade: topics and their questions
	for tid, t := range m.topics {
		if t.SourceID != id {
			continue
		}
		delete(m.topics, tid)
		for qid, q := range m.questions {
			if q.TopicID == tid {
				delete(m.questions, qid)
			}
		}
	}
	return nil
}

func (m *memoryStore) PutTopic(t Topic) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[t.ID] = t
	return nil
}

func (m *memoryStore) GetTopic(id string) (Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.topics[id]
	if !ok {
		return Topic{}, ErrNotFound
	}
	return t, nil
}

func (m *memoryStore) TopicsBySource(sourceID string) ([]Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Topic
	for _, t := range m.topics {
		if t.SourceID == sourceID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) UpdateTopic(id string, title, description *string) (Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.topics[id]
	if !ok {
		return Topic{}, ErrNotFound
	}
	if title != nil {
		t.Title = *title
	}
	if description != nil {
		t.Description = *description
	}
	m.topics[id] = t
	return t, nil
}

func (m *memoryStore) PutQuestion(q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuestion(id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) QuestionsByTopic(topicID string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Question
	for _, q := range m.questions {
		if q.TopicID == topicID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) PutQuiz(q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) ListQuizzes() ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Quiz, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) GetQuiz(id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) DeleteQuiz(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	for aid, a := range m.attempts {
		if a.QuizID == id {
			delete(m.attempts, aid)
		}
	}
	return nil
}

func (m *memoryStore) PutAttempt(a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.ID] = a
	return nil
}

func (m *memoryStore) GetAttempt(id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) AttemptsByQuiz(quizID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Attempt
	for _, a := range m.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt < out[j].CompletedAt })
	return out, nil
}
