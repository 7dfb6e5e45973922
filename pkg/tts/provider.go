package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
)

const (
	// MinAudioSize is the minimum size of a synthesized audio payload (1KB).
	// Anything smaller is a failed synthesis, not speech.
	MinAudioSize = 1024

	// FormatMP3 is the only format the providers produce.
	FormatMP3 = "mp3"
)

// Provider defines the interface for Text-To-Speech engines.
type Provider interface {
	// Synthesize generates audio from text and writes it to w.
	// An empty voice selects the provider's configured default.
	// Returns the audio format ("mp3").
	Synthesize(ctx context.Context, text, voice string, w io.Writer) (string, error)

	// Voices returns a list of available voices for the provider.
	Voices(ctx context.Context) ([]Voice, error)

	// Configured reports a missing credential or setting without calling out.
	Configured() error

	// Name identifies the provider in logs and stats.
	Name() string
}

// Voice represents an available TTS voice.
type Voice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	IsNeural bool   `json:"is_neural"`
}

// FatalError is a TTS failure that retrying will not fix.
// Examples: auth failures (401/403), bad voice ids (4xx).
type FatalError struct {
	StatusCode int
	Message    string
}

func (e *FatalError) Error() string {
	return e.Message
}

// NewFatalError creates a new FatalError with the given status code and message.
func NewFatalError(statusCode int, message string) *FatalError {
	return &FatalError{StatusCode: statusCode, Message: message}
}

// IsFatalError checks if an error is or wraps a FatalError.
func IsFatalError(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// VerifyAudio rejects payloads too small to be real speech.
func VerifyAudio(data []byte) error {
	if len(data) < MinAudioSize {
		return fmt.Errorf("audio payload too small (%d bytes)", len(data))
	}
	return nil
}
