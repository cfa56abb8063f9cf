package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/extract"
	"github.com/quizforge/quizforge/internal/genai"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	store := quiz.NewSQLStore(dbh)

	// --- Blob store for uploads ---
	blobs, err := storage.NewFSStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	// --- Extraction + generation ---
	pipe := extract.New(
		extract.WithOCRLang(cfg.OCRLang),
		extract.WithHTTPClient(&http.Client{Timeout: cfg.ExtractTimeout}),
	)
	if cfg.OpenAIKey == "" {
		log.Printf("warning: OPENAI_API_KEY is not set; topic generation will fail")
	}
	var genOpts []genai.Option
	if cfg.OpenAIModel != "" {
		genOpts = append(genOpts, genai.WithModel(cfg.OpenAIModel))
	}
	gen := genai.NewGenerator(cfg.OpenAIKey, genOpts...)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.ExtractTimeout + 30*time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api/v1", func(vr chi.Router) {
		api.Mount(vr, store, blobs, pipe, gen, cfg.MaxUploadSize)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
