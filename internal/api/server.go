package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/version"
)

// Handlers groups the route handlers. Audio may be nil when no engine is wired.
type Handlers struct {
	Story   *StoryHandler
	Audio   *AudioHandler
	Catalog *CatalogHandler
	Stats   *StatsHandler
}

// NewServer creates and configures the HTTP server.
func NewServer(cfg config.ServerConfig, h Handlers) *http.Server {
	return &http.Server{
		Addr:         cfg.Address,
		Handler:      NewRouter(h),
		ReadTimeout:  cfg.ReadTimeout.Std(),
		WriteTimeout: cfg.WriteTimeout.Std(),
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter registers every route and wraps the mux in the request middleware.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	// 1. Health & Version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Story
	if h.Story != nil {
		mux.HandleFunc("POST /api/generate-story", h.Story.HandleGenerate)
	}

	// 3. Audio
	if h.Audio != nil {
		mux.HandleFunc("POST /api/generate-audio", h.Audio.HandleGenerate)
		mux.HandleFunc("GET /api/voices", h.Audio.HandleVoices)
	}

	// 4. Catalog
	if h.Catalog != nil {
		mux.HandleFunc("GET /api/interests", h.Catalog.HandleInterests)
		mux.HandleFunc("GET /api/examples", h.Catalog.HandleExamples)
		mux.HandleFunc("GET /api/examples/{id}", h.Catalog.HandleExample)
	}

	// 5. Stats
	if h.Stats != nil {
		mux.Handle("GET /api/stats", h.Stats)
	}

	return requestIDMiddleware(loggingMiddleware(mux))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
