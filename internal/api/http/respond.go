// Package http exposes the JSON API over chi. Handlers are thin closures
// over the store, the extraction pipeline, and the question generator;
// responses use a {"success": ..., "data"/"error": ...} envelope.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/scoring"
)

func writeData(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data})
}

func writeList(w http.ResponseWriter, data interface{}, count int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data, "count": count})
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": msg})
}

// writeStoreErr maps domain errors onto status codes: unknown ids are 404,
// malformed submissions are the client's fault, malformed questions mean
// our stored data violates the generation contract.
func writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, scoring.ErrMalformedSubmission):
		writeErr(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, scoring.ErrMalformedQuestion):
		writeErr(w, http.StatusInternalServerError, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}
