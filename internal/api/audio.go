package api

import (
	"bytes"
	"encoding/base64"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"naturenarrated/pkg/tts"
)

// maxAudioChars bounds the text sent for synthesis; a long story is about 5000 characters.
const maxAudioChars = 12000

// AudioHandler serves POST /api/generate-audio.
type AudioHandler struct {
	provider tts.Provider
	limiter  *rate.Limiter
	voice    string
}

// NewAudioHandler creates a handler allowing perMinute syntheses per minute across all callers.
// A non-positive perMinute disables throttling.
func NewAudioHandler(p tts.Provider, perMinute int, voice string) *AudioHandler {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute)
	}
	return &AudioHandler{provider: p, limiter: limiter, voice: voice}
}

type audioRequest struct {
	Text string `json:"text"`
}

type audioResponse struct {
	AudioDataURL string `json:"audioDataUrl"`
}

// HandleVoices lists the voices of the configured engine.
func (h *AudioHandler) HandleVoices(w http.ResponseWriter, r *http.Request) {
	if err := h.provider.Configured(); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	voices, err := h.provider.Voices(r.Context())
	if err != nil {
		slog.Error("Audio: listing voices failed", "request_id", RequestID(r.Context()), "engine", h.provider.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list voices")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"engine":  h.provider.Name(),
		"default": h.voice,
		"voices":  voices,
	})
}

// HandleGenerate synthesizes the story text and returns it inline as a data URL.
func (h *AudioHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID(r.Context())

	if err := h.provider.Configured(); err != nil {
		slog.Error("Audio: engine not configured", "request_id", reqID, "engine", h.provider.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var req audioRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	text := tts.CleanForSpeech(req.Text)
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}
	if len(text) > maxAudioChars {
		writeError(w, http.StatusBadRequest, "Text is too long")
		return
	}

	res := h.limiter.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		secs := int(math.Ceil(delay.Seconds()))
		slog.Warn("Audio: throttled", "request_id", reqID, "retry_after", secs)
		writeRateLimited(w, secs, "Too many audio requests. Please try again in %d seconds.")
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	if _, err := h.provider.Synthesize(r.Context(), text, h.voice, &buf); err != nil {
		slog.Error("Audio: synthesis failed", "request_id", reqID, "engine", h.provider.Name(), "fatal", tts.IsFatalError(err), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate audio")
		return
	}

	slog.Info("Audio: synthesized", "request_id", reqID, "engine", h.provider.Name(), "chars", len(text), "bytes", buf.Len(), "latency", time.Since(start))
	writeJSON(w, http.StatusOK, audioResponse{
		AudioDataURL: "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	})
}
