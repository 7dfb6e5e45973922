package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logPath = "logs/tts.log"
	mu      sync.RWMutex
)

// SetLogPath configures the path for the TTS log file. An empty path disables it.
func SetLogPath(path string) {
	mu.Lock()
	defer mu.Unlock()
	logPath = path
}

// Log appends the synthesized text and status to the configured log file.
// Shared by all providers so every engine leaves the same trail.
func Log(provider, text string, status int, err error) {
	mu.RLock()
	defer mu.RUnlock()
	if logPath == "" {
		return
	}

	_ = os.MkdirAll(filepath.Dir(logPath), 0o755)

	f, fileErr := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if fileErr != nil {
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	statusStr := fmt.Sprintf("%d", status)
	if err != nil {
		statusStr = fmt.Sprintf("ERROR(%v)", err)
	}

	// Format: [TIMESTAMP] [PROVIDER] STATUS: <code> | TEXT: <text>
	entry := fmt.Sprintf("[%s] [%s] STATUS: %s\nTEXT:\n%s\n--------------------------------------------------\n",
		timestamp, provider, statusStr, text)

	_, _ = f.WriteString(entry)
}
