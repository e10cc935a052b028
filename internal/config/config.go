// Package config loads service configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime knob the service reads.
type Config struct {
	Port string

	// GCP project and bucket for the Firestore-backed store. Empty project
	// or UseMemoryStore selects the in-memory store.
	ProjectID      string
	StorageBucket  string
	UseMemoryStore bool

	// Gemini fallback classification. An empty key disables the fallback
	// tier: unmatched descriptions resolve to Other.
	GeminiAPIKey string
	GeminiModel  string

	ClassifierWorkers int
	FallbackTimeout   time.Duration
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	godotenv.Load()

	return &Config{
		Port:              getEnv("PORT", "8080"),
		ProjectID:         os.Getenv("GOOGLE_CLOUD_PROJECT"),
		StorageBucket:     os.Getenv("STORAGE_BUCKET"),
		UseMemoryStore:    getBool("USE_MEMORY_STORE", false),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       os.Getenv("GEMINI_MODEL"),
		ClassifierWorkers: getInt("CLASSIFIER_WORKERS", 4),
		FallbackTimeout:   getDuration("FALLBACK_TIMEOUT", 20*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
