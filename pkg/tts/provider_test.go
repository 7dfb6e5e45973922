package tts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsFatalError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "FatalError 401",
			err:      NewFatalError(401, "Unauthorized"),
			expected: true,
		},
		{
			name:     "Wrapped FatalError",
			err:      fmt.Errorf("elevenlabs: %w", NewFatalError(403, "Forbidden")),
			expected: true,
		},
		{
			name:     "Standard Error",
			err:      errors.New("some regular error"),
			expected: false,
		},
		{
			name:     "Nil Error",
			err:      nil,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFatalError(tt.err); got != tt.expected {
				t.Errorf("IsFatalError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestVerifyAudio(t *testing.T) {
	if err := VerifyAudio(make([]byte, 512)); err == nil {
		t.Error("expected error for small payload, got nil")
	}
	if err := VerifyAudio(make([]byte, MinAudioSize)); err != nil {
		t.Errorf("expected no error for valid payload, got: %v", err)
	}
}

func TestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tts.log")
	SetLogPath(path)
	defer SetLogPath("logs/tts.log")

	Log("ELEVENLABS", "Hello trail", 200, nil)
	Log("EDGETTS", "Hello again", 0, errors.New("dial failed"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	for _, want := range []string{"[ELEVENLABS] STATUS: 200", "Hello trail", "[EDGETTS] STATUS: ERROR(dial failed)"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}
