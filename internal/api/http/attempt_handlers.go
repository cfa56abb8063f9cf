package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/quiz"
)

// SubmitQuizHandler grades a set of selected answers and persists the
// attempt. Selections are keyed by question id; each value lists the
// chosen option ids.
func SubmitQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Selected map[string][]int64 `json:"selected_answers"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeErr(w, http.StatusBadRequest, "bad json")
			return
		}
		if req.Selected == nil {
			req.Selected = map[string][]int64{}
		}

		attempt, err := quiz.SubmitQuiz(store, chi.URLParam(r, "quizID"), req.Selected)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		detail, err := quiz.AttemptDetails(store, attempt.ID)
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusCreated, detail)
	}
}

func ListQuizAttemptsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.GetQuiz(chi.URLParam(r, "quizID")); err != nil {
			writeStoreErr(w, err)
			return
		}
		attempts, err := store.AttemptsByQuiz(chi.URLParam(r, "quizID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeList(w, attempts, len(attempts))
	}
}

func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := quiz.AttemptDetails(store, chi.URLParam(r, "attemptID"))
		if err != nil {
			writeStoreErr(w, err)
			return
		}
		writeData(w, http.StatusOK, detail)
	}
}
