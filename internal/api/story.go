package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"naturenarrated/pkg/model"
	"naturenarrated/pkg/narrator"
)

// StoryGenerator is the part of narrator.Service the route needs.
type StoryGenerator interface {
	Generate(ctx context.Context, req model.StoryRequest) (*model.Narrative, error)
}

// StoryHandler serves POST /api/generate-story.
type StoryHandler struct {
	gen StoryGenerator
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(gen StoryGenerator) *StoryHandler {
	return &StoryHandler{gen: gen}
}

type storyResponse struct {
	Story string `json:"story"`
}

// HandleGenerate decodes the request, runs the orchestrator and maps failures to statuses.
func (h *StoryHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	reqID := RequestID(r.Context())

	var req model.StoryRequest
	if err := decodeBody(w, r, &req); err != nil {
		slog.Warn("Story: invalid request body", "request_id", reqID, "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	slog.Info("Story: request",
		"request_id", reqID,
		"place", req.Trail.Name,
		"interests", req.Interests,
		"length", req.Length,
		"web_search", req.UseWebSearch)

	n, err := h.gen.Generate(r.Context(), req)
	if err != nil {
		writeStoryError(w, reqID, err)
		return
	}

	slog.Info("Story: done",
		"request_id", reqID,
		"augmented", n.Augmented,
		"input_tokens", n.InputTokens,
		"output_tokens", n.OutputTokens,
		"latency", n.Latency)
	writeJSON(w, http.StatusOK, storyResponse{Story: n.Story})
}

// writeStoryError maps a failure to its status. Only *narrator.Error carries the
// rate-limited and invalid-input kinds; anything else is an upstream failure.
func writeStoryError(w http.ResponseWriter, reqID string, err error) {
	var nerr *narrator.Error
	errors.As(err, &nerr)

	switch narrator.KindOf(err) {
	case narrator.KindRateLimited:
		secs := nerr.RetryAfterSeconds()
		slog.Warn("Story: rate limited", "request_id", reqID, "retry_after", secs)
		writeRateLimited(w, secs, "Too many stories are being generated right now. Please try again in %d seconds.")
	case narrator.KindInvalidInput:
		slog.Warn("Story: invalid input", "request_id", reqID, "error", err)
		writeError(w, http.StatusBadRequest, nerr.Message)
	case narrator.KindConfig:
		slog.Error("Story: service not configured", "request_id", reqID, "error", err)
		writeError(w, http.StatusInternalServerError, "Story service is not configured")
	default:
		slog.Error("Story: generation failed", "request_id", reqID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate story")
	}
}
