package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DBDriver string
	DBDSN    string

	UploadDir     string
	MaxUploadSize int64

	OpenAIKey   string
	OpenAIModel string

	CORSOrigins []string

	ExtractTimeout time.Duration
	OCRLang        string
}

// FromEnv builds the configuration from the environment, reading a local
// .env file first when present. The result is passed explicitly to the
// components that need it; nothing else reads ambient process state.
func FromEnv() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr:       envOr("HTTP_ADDR", ":8080"),
		DBDriver:       envOr("DB_DRIVER", "sqlite"),
		DBDSN:          os.Getenv("DB_DSN"),
		UploadDir:      envOr("UPLOAD_DIR", "./data/uploads"),
		MaxUploadSize:  10 << 20,
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    os.Getenv("OPENAI_MODEL"),
		CORSOrigins:    csvOr("CORS_ORIGINS", "http://localhost:3000"),
		ExtractTimeout: durOr("EXTRACT_TIMEOUT", 30*time.Second),
		OCRLang:        envOr("OCR_LANG", "eng"),
	}
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func durOr(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func csvOr(k, def string) []string {
	v := envOr(k, def)
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
