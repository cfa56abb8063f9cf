package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
)

// Generator is the slice of the AI client the handlers need; tests swap in
// a fake.
type Generator interface {
	GenerateQuestions(ctx context.Context, content string, n int) ([]genai.DraftQuestion, error)
	GenerateTopic(ctx context.Context, content string) genai.TopicInfo
}

// minGenerateContent guards against generating questions from a page where
// extraction only recovered navigation scraps.
const minGenerateContent = 100

type topicWithQuestions struct {
	quiz.Topic
	Questions []quiz.Question `json:"questions"`
}

// GenerateTopicHandler extracts content (for URL sources), names a topic,
// generates questions, and persists the lot.
func GenerateTopicHandler(store quiz.Store, pipe *extract.Pipeline, gen Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		src, err := store.GetSource(chi.URLParam(r, "sourceID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}

		var req struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			NumQuestions int    `json:"num_questions"`
		}
		_ = decodeJSON(r, &req) // body is optional

		content := src.Content
		if src.Type == "url" || src.Meta["is_url"] == "true" {
			res, err := pipe.Extract(r.Context(), extract.Source{Kind: extract.KindURL, URL: src.Content})
			if err != nil {
				writeExtractErr(w, err)
				return
			}
			content = res.Text
		}
		if len(content) < minGenerateContent {
			writeErr(w, http.StatusBadRequest,
				"extracted content is too short to generate questions from; the page may need JavaScript, or try a PDF/Word document instead")
			return
		}

		title, description := req.Title, req.Description
		if title == "" {
			info := gen.GenerateTopic(r.Context(), content)
			title = info.Title
			if description == "" {
				description = info.Description
			}
		}
		existing, err := store.TopicsBySource(src.ID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		title = quiz.UniqueTitle(title, existing)

		drafts, err := gen.GenerateQuestions(r.Context(), content, req.NumQuestions)
		if err != nil {
			writeErr(w, http.StatusBadGateway, "question generation failed: "+err.Error())
			return
		}

		topic := quiz.Topic{
			ID:          uuid.NewString(),
			SourceID:    src.ID,
			Title:       title,
			Description: description,
			CreatedAt:   time.Now().Unix(),
		}
		if err := store.PutTopic(topic); err != nil {
			writeStoreErr(w, err)
			return
		}

		questions := make([]quiz.Question, 0, len(drafts))
		for _, d := range drafts {
			q := quiz.Question{
				ID:        uuid.NewString(),
				TopicID:   topic.ID,
				Prompt:    d.Prompt,
				CreatedAt: time.Now().Unix(),
			}
			for _, a := range d.Answers {
				q.Answers = append(q.Answers, quiz.Answer{ID: a.ID, Text: a.Text, Correct: a.Correct, Points: a.Points})
			}
			if err := store.PutQuestion(q); err != nil {
				writeStoreErr(w, err)
				return
			}
			questions = append(questions, q)
		}

		writeData(w, http.StatusCreated, topicWithQuestions{Topic: topic, Questions: questions})
	}
}

func ListSourceTopicsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topics, err := store.TopicsBySource(chi.URLParam(r, "sourceID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		out := make([]topicWithQuestions, 0, len(topics))
		for _, t := range topics {
			qs, err := store.QuestionsByTopic(t.ID)
			if err != nil {
				writeStoreErr(w, err)
				return
			}
			out = append(out, topicWithQuestions{Topic: t, Questions: qs})
		}
		writeList(w, out, len(out))
	}
}

func UpdateTopicHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       *string `json:"title"`
			Description *string `json:"description"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		t, err := store.UpdateTopic(chi.URLParam(r, "topicID"), req.Title, req.Description)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusOK, t)
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}
