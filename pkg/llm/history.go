package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// History appends prompt/response pairs to a plain-text log for later reading.
// A zero-value or nil History, or one with an empty path, discards everything.
type History struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewHistory creates a history log writing to path.
func NewHistory(path string) *History {
	return &History{path: path, now: time.Now}
}

// Record appends one exchange. Write failures are ignored; the history is best effort.
func (h *History) Record(req Request, resp *Response, callErr error) {
	if h == nil || h.path == "" {
		return
	}

	var prompt strings.Builder
	if req.System != "" {
		prompt.WriteString("SYSTEM:\n")
		prompt.WriteString(req.System)
		prompt.WriteString("\n\n")
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&prompt, "%s:\n%s\n", strings.ToUpper(string(m.Role)), m.Text)
	}

	var result string
	switch {
	case callErr != nil:
		result = fmt.Sprintf("ERROR: %v", callErr)
	case resp != nil:
		result = fmt.Sprintf("%s\n[model=%s stop=%s in=%d out=%d search=%t]",
			WordWrap(resp.Text(), 80), resp.Model, resp.StopReason,
			resp.Usage.InputTokens, resp.Usage.OutputTokens, req.WebSearch)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	now := time.Now
	if h.now != nil {
		now = h.now
	}
	entry := fmt.Sprintf("[%s] PROMPT: %s\nPROMPT_TEXT:\n%s\nRESPONSE:\n%s\n%s\n",
		now().Format("2006-01-02 15:04:05"), req.Name, prompt.String(), result, strings.Repeat("-", 80))
	_, _ = f.WriteString(entry)
}
