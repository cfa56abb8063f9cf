package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
)

/* ---------------- fakes ---------------- */

type memBlobs map[string][]byte

func (m memBlobs) Put(key string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m[key] = b
	return key, nil
}

func (m memBlobs) Get(key string) (io.ReadCloser, error) {
	b, ok := m[key]
	if !ok {
		return nil, errors.New("no such blob")
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m memBlobs) Delete(key string) error {
	delete(m, key)
	return nil
}

type fakeGenerator struct {
	questions []genai.DraftQuestion
	topic     genai.TopicInfo
	err       error
}

func (f *fakeGenerator) GenerateQuestions(ctx context.Context, content string, n int) ([]genai.DraftQuestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

func (f *fakeGenerator) GenerateTopic(ctx context.Context, content string) genai.TopicInfo {
	return f.topic
}

func draftQuestion(prompt string) genai.DraftQuestion {
	q := genai.DraftQuestion{Prompt: prompt}
	for i := int64(1); i <= 6; i++ {
		correct := i <= 4
		pts := -0.5
		if correct {
			pts = 0.25
		}
		q.Answers = append(q.Answers, genai.DraftAnswer{ID: i, Text: "opt", Correct: correct, Points: pts})
	}
	return q
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Count   int             `json:"count"`
}

func newTestServer(t *testing.T, store quiz.Store, gen Generator) *httptest.Server {
	t.Helper()
	blobs := memBlobs{}
	pipe := extract.New()
	r := chi.NewRouter()
	r.Route("/api/v1", func(vr chi.Router) {
		Mount(vr, store, blobs, pipe, gen, 10<<20)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

/* ---------------- sources ---------------- */

func TestSubmitURLSource(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources",
		map[string]string{"type": "url", "url": "example.com/article"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", resp.StatusCode, env.Error)
	}
	var src quiz.Source
	if err := json.Unmarshal(env.Data, &src); err != nil {
		t.Fatalf("unmarshal source: %v", err)
	}
	if src.Type != "url" {
		t.Errorf("type = %q, want url", src.Type)
	}
	if src.Content != "https://example.com/article" {
		t.Errorf("content = %q, want normalized https URL", src.Content)
	}
	if src.Meta["is_url"] != "true" {
		t.Errorf("meta is_url = %q, want true", src.Meta["is_url"])
	}
}

func TestSubmitSourceRejectsBadURL(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources",
		map[string]string{"type": "url", "url": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	if env.Success {
		t.Error("success = true for bad URL")
	}
}

func TestSubmitSourceRequiresType(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources", map[string]string{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeleteSourceNotFound(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/sources/missing", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

/* ---------------- topics ---------------- */

func seedSource(t *testing.T, store quiz.Store, content string) quiz.Source {
	t.Helper()
	src := quiz.Source{
		ID:        "src-1",
		Type:      "pdf",
		Title:     "doc.pdf",
		Content:   content,
		Meta:      map[string]string{},
		CreatedAt: time.Now().Unix(),
	}
	if err := store.PutSource(src); err != nil {
		t.Fatal(err)
	}
	return src
}

func TestGenerateTopicPersistsQuestions(t *testing.T) {
	store := quiz.NewInMemoryStore()
	gen := &fakeGenerator{
		questions: []genai.DraftQuestion{draftQuestion("What is Go?"), draftQuestion("What is chi?")},
		topic:     genai.TopicInfo{Title: "Go Basics", Description: "Intro material."},
	}
	srv := newTestServer(t, store, gen)
	src := seedSource(t, store, strings.Repeat("Go is a programming language. ", 10))

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources/"+src.ID+"/generate-topic",
		map[string]interface{}{"num_questions": 2})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", resp.StatusCode, env.Error)
	}

	var got struct {
		quiz.Topic
		Questions []quiz.Question `json:"questions"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Title != "Go Basics" {
		t.Errorf("title = %q, want Go Basics", got.Title)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(got.Questions))
	}
	stored, err := store.QuestionsByTopic(got.ID)
	if err != nil || len(stored) != 2 {
		t.Fatalf("stored questions = %d (%v), want 2", len(stored), err)
	}
}

func TestGenerateTopicNumbersDuplicateTitles(t *testing.T) {
	store := quiz.NewInMemoryStore()
	gen := &fakeGenerator{
		questions: []genai.DraftQuestion{draftQuestion("Q")},
		topic:     genai.TopicInfo{Title: "Go Basics"},
	}
	srv := newTestServer(t, store, gen)
	src := seedSource(t, store, strings.Repeat("content ", 20))

	for _, want := range []string{"Go Basics", "Go Basics 1", "Go Basics 2"} {
		_, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources/"+src.ID+"/generate-topic", nil)
		var got quiz.Topic
		if err := json.Unmarshal(env.Data, &got); err != nil {
			t.Fatal(err)
		}
		if got.Title != want {
			t.Errorf("title = %q, want %q", got.Title, want)
		}
	}
}

func TestGenerateTopicRejectsShortContent(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})
	src := seedSource(t, store, "too short")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources/"+src.ID+"/generate-topic", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestGenerateTopicGenerationFailureIs502(t *testing.T) {
	store := quiz.NewInMemoryStore()
	gen := &fakeGenerator{err: errors.New("model unavailable"), topic: genai.TopicInfo{Title: "T"}}
	srv := newTestServer(t, store, gen)
	src := seedSource(t, store, strings.Repeat("content ", 20))

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/sources/"+src.ID+"/generate-topic", nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

/* ---------------- quizzes and attempts ---------------- */

func seedQuizOverAPI(t *testing.T, store quiz.Store, srv *httptest.Server) (quiz.Quiz, quiz.Question) {
	t.Helper()
	topic := quiz.Topic{ID: "t-1", SourceID: "src-1", Title: "T", CreatedAt: 1}
	if err := store.PutTopic(topic); err != nil {
		t.Fatal(err)
	}
	q := quiz.Question{ID: "q-1", TopicID: topic.ID, Prompt: "Pick", CreatedAt: 1}
	for i := int64(1); i <= 6; i++ {
		correct := i <= 4
		pts := -0.5
		if correct {
			pts = 0.25
		}
		q.Answers = append(q.Answers, quiz.Answer{ID: i, Text: "opt", Correct: correct, Points: pts})
	}
	if err := store.PutQuestion(q); err != nil {
		t.Fatal(err)
	}

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quizzes",
		map[string]interface{}{"title": "Quiz", "question_ids": []string{q.ID}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quiz status = %d (error: %s)", resp.StatusCode, env.Error)
	}
	var qz quiz.Quiz
	if err := json.Unmarshal(env.Data, &qz); err != nil {
		t.Fatal(err)
	}
	return qz, q
}

func TestCreateQuizRejectsUnknownQuestion(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quizzes",
		map[string]interface{}{"title": "Quiz", "question_ids": []string{"missing"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTakeQuizStripsCorrectness(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})
	qz, _ := seedQuizOverAPI(t, store, srv)

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/quizzes/"+qz.ID+"/take", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if bytes.Contains(env.Data, []byte("is_correct")) {
		t.Error("take view leaks is_correct")
	}
	if bytes.Contains(env.Data, []byte("points")) {
		t.Error("take view leaks points")
	}
}

func TestSubmitQuizGradesAttempt(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})
	qz, q := seedQuizOverAPI(t, store, srv)

	resp, env := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quizzes/"+qz.ID+"/submit",
		map[string]interface{}{"selected_answers": map[string][]int64{q.ID: {1, 2, 3, 4}}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (error: %s)", resp.StatusCode, env.Error)
	}

	var detail quiz.AttemptDetail
	if err := json.Unmarshal(env.Data, &detail); err != nil {
		t.Fatal(err)
	}
	if detail.Total != 1.0 {
		t.Errorf("total = %v, want 1.0", detail.Total)
	}
	if detail.Percent != 100 {
		t.Errorf("percent = %v, want 100", detail.Percent)
	}
	if len(detail.Review[q.ID]) != 6 {
		t.Errorf("review options = %d, want 6", len(detail.Review[q.ID]))
	}

	// attempt is retrievable afterwards
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/api/v1/quiz-attempts/"+detail.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get attempt status = %d, want 200", resp.StatusCode)
	}
}

func TestSubmitQuizRejectsUnknownOption(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})
	qz, q := seedQuizOverAPI(t, store, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/v1/quizzes/"+qz.ID+"/submit",
		map[string]interface{}{"selected_answers": map[string][]int64{q.ID: {99}}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListQuizAttempts(t *testing.T) {
	store := quiz.NewInMemoryStore()
	srv := newTestServer(t, store, &fakeGenerator{})
	qz, q := seedQuizOverAPI(t, store, srv)

	doJSON(t, http.MethodPost, srv.URL+"/api/v1/quizzes/"+qz.ID+"/submit",
		map[string]interface{}{"selected_answers": map[string][]int64{q.ID: {1}}})

	resp, env := doJSON(t, http.MethodGet, srv.URL+"/api/v1/quizzes/"+qz.ID+"/attempts", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if env.Count != 1 {
		t.Errorf("count = %d, want 1", env.Count)
	}
}
