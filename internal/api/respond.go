package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// maxBodyBytes caps inbound JSON bodies. Long stories sent back for audio stay well under it.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// rateLimitResponse is the 429 body; retryAfter is always present.
type rateLimitResponse struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
	Message    string `json:"message"`
}

// writeRateLimited sets Retry-After and writes the 429 body. Clients are never
// told to retry in less than a second. msgFormat takes the seconds as its only verb.
func writeRateLimited(w http.ResponseWriter, secs int, msgFormat string) {
	secs = max(secs, 1)
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeJSON(w, http.StatusTooManyRequests, rateLimitResponse{
		Error:      "Rate limit exceeded",
		RetryAfter: secs,
		Message:    fmt.Sprintf(msgFormat, secs),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeBody reads a JSON body into v. Unknown fields are ignored, as browsers send extras.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}
