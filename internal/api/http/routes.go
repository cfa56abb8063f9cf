package http

import (
	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/storage"
)

// Mount attaches the versioned API onto r. The caller owns middleware.
func Mount(r chi.Router, store quiz.Store, blobs storage.BlobStore, pipe *extract.Pipeline, gen Generator, maxUpload int64) {
	r.Route("/sources", func(sr chi.Router) {
		sr.Post("/", SubmitSourceHandler(store, blobs, pipe, maxUpload))
		sr.Get("/", ListSourcesHandler(store))
		sr.Get("/{sourceID}", GetSourceHandler(store))
		sr.Delete("/{sourceID}", DeleteSourceHandler(store, blobs))
		sr.Post("/{sourceID}/generate-topic", GenerateTopicHandler(store, pipe, gen))
		sr.Get("/{sourceID}/topics", ListSourceTopicsHandler(store))
	})

	r.Put("/topics/{topicID}", UpdateTopicHandler(store))

	r.Route("/quizzes", func(qr chi.Router) {
		qr.Post("/", CreateQuizHandler(store))
		qr.Get("/", ListQuizzesHandler(store))
		qr.Get("/{quizID}", GetQuizHandler(store))
		qr.Delete("/{quizID}", DeleteQuizHandler(store))
		qr.Get("/{quizID}/take", TakeQuizHandler(store))
		qr.Post("/{quizID}/submit", SubmitQuizHandler(store))
		qr.Get("/{quizID}/attempts", ListQuizAttemptsHandler(store))
	})

	r.Get("/quiz-attempts/{attemptID}", GetAttemptHandler(store))
}
