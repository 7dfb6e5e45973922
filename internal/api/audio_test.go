package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/tts"
)

type fakeSpeech struct {
	configErr error
	synthErr  error
	voicesErr error
	audio     []byte
	gotText   string
	gotVoice  string
	calls     int
}

func (f *fakeSpeech) Synthesize(ctx context.Context, text, voice string, w io.Writer) (string, error) {
	f.calls++
	f.gotText = text
	f.gotVoice = voice
	if f.synthErr != nil {
		return "", f.synthErr
	}
	_, err := w.Write(f.audio)
	return tts.FormatMP3, err
}

func (f *fakeSpeech) Voices(ctx context.Context) ([]tts.Voice, error) {
	if f.voicesErr != nil {
		return nil, f.voicesErr
	}
	return []tts.Voice{{ID: "voice-1", Name: "Narrator"}}, nil
}
func (f *fakeSpeech) Configured() error { return f.configErr }
func (f *fakeSpeech) Name() string      { return "fake" }

func postAudio(h *AudioHandler, body string) *httptest.ResponseRecorder {
	router := NewRouter(Handlers{Audio: h})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/generate-audio", strings.NewReader(body)))
	return w
}

func TestAudio_Success(t *testing.T) {
	speech := &fakeSpeech{audio: []byte("mp3-bytes")}
	h := NewAudioHandler(speech, 0, "voice-1")

	w := postAudio(h, `{"text":"Intro.\n\n**Birds: Songs You'll Hear**\n\nA **wood thrush** sings."}`)
	require.Equal(t, http.StatusOK, w.Code)

	var body audioResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "data:audio/mpeg;base64,"+base64.StdEncoding.EncodeToString([]byte("mp3-bytes")), body.AudioDataURL)

	assert.Equal(t, "Intro.\n\nA wood thrush sings.", speech.gotText)
	assert.Equal(t, "voice-1", speech.gotVoice)
}

func TestAudio_NotConfigured(t *testing.T) {
	speech := &fakeSpeech{configErr: errors.New("ElevenLabs API key not configured")}
	w := postAudio(NewAudioHandler(speech, 0, ""), `{"text":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"ElevenLabs API key not configured"}`, w.Body.String())
	assert.Zero(t, speech.calls)
}

func TestAudio_SynthesisFailure(t *testing.T) {
	speech := &fakeSpeech{synthErr: tts.NewFatalError(401, "ElevenLabs API error 401: bad key")}
	w := postAudio(NewAudioHandler(speech, 0, ""), `{"text":"hi"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to generate audio"}`, w.Body.String())
}

func TestAudio_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"text":`, "Invalid request body"},
		{"empty", `{"text":"   "}`, "Text is required"},
		{"only labels", `{"text":"**Birds**"}`, "Text is required"},
		{"too long", `{"text":"` + strings.Repeat("a", maxAudioChars+1) + `"}`, "Text is too long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			speech := &fakeSpeech{}
			w := postAudio(NewAudioHandler(speech, 0, ""), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
			assert.Zero(t, speech.calls)
		})
	}
}

func TestAudio_Throttled(t *testing.T) {
	speech := &fakeSpeech{audio: []byte("x")}
	h := NewAudioHandler(speech, 2, "")

	assert.Equal(t, http.StatusOK, postAudio(h, `{"text":"one"}`).Code)
	assert.Equal(t, http.StatusOK, postAudio(h, `{"text":"two"}`).Code)

	w := postAudio(h, `{"text":"three"}`)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body rateLimitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Rate limit exceeded", body.Error)
	assert.Positive(t, body.RetryAfter)
	assert.Equal(t, 2, speech.calls)
}

func TestAudio_Voices(t *testing.T) {
	get := func(speech *fakeSpeech) *httptest.ResponseRecorder {
		router := NewRouter(Handlers{Audio: NewAudioHandler(speech, 0, "voice-1")})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/voices", http.NoBody))
		return w
	}

	w := get(&fakeSpeech{})
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Engine  string      `json:"engine"`
		Default string      `json:"default"`
		Voices  []tts.Voice `json:"voices"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "fake", body.Engine)
	assert.Equal(t, "voice-1", body.Default)
	require.Len(t, body.Voices, 1)
	assert.Equal(t, "voice-1", body.Voices[0].ID)

	w = get(&fakeSpeech{voicesErr: errors.New("upstream down")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to list voices"}`, w.Body.String())

	w = get(&fakeSpeech{configErr: errors.New("ElevenLabs API key not configured")})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
