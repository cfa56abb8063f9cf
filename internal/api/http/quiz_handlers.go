package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/quiz"
)

type quizWithQuestions struct {
	quiz.Quiz
	Questions []quiz.Question `json:"questions"`
}

type quizForTaking struct {
	quiz.Quiz
	Questions []quiz.TakeQuestion `json:"questions"`
}

func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title       string   `json:"title"`
			Description string   `json:"description"`
			QuestionIDs []string `json:"question_ids"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Title == "" {
			writeErr(w, http.StatusBadRequest, "title is required")
			return
		}
		if len(req.QuestionIDs) == 0 {
			writeErr(w, http.StatusBadRequest, "at least one question is required")
			return
		}
		for _, id := range req.QuestionIDs {
			if _, err := store.GetQuestion(id); err != nil {
				writeErr(w, http.StatusBadRequest, "unknown question id "+id)
				return
			}
		}
		qz := quiz.Quiz{
			ID:          uuid.NewString(),
			Title:       req.Title,
			Description: req.Description,
			QuestionIDs: req.QuestionIDs,
			CreatedAt:   time.Now().Unix(),
		}
		if err := store.PutQuiz(qz); err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusCreated, qz)
	}
}

func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizzes, err := store.ListQuizzes()
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeList(w, quizzes, len(quizzes))
	}
}

func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qz, err := store.GetQuiz(chi.URLParam(r, "quizID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		questions, err := quiz.QuizQuestions(store, qz)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusOK, quizWithQuestions{Quiz: qz, Questions: questions})
	}
}

func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteQuiz(chi.URLParam(r, "quizID")); err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusOK, map[string]string{"message": "quiz deleted"})
	}
}

// TakeQuizHandler serves a quiz with correctness stripped from every
// answer so the client never sees the key before submitting.
func TakeQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qz, err := store.GetQuiz(chi.URLParam(r, "quizID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		questions, err := quiz.QuizQuestions(store, qz)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusOK, quizForTaking{Quiz: qz, Questions: quiz.TakeView(questions)})
	}
}
