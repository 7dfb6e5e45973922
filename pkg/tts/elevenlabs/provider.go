package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/request"
	"naturenarrated/pkg/tts"
)

const (
	defaultBaseURL = "https://api.elevenlabs.io"
	providerName   = "ELEVENLABS"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("ElevenLabs API key not configured")

// Provider implements tts.Provider for ElevenLabs.
type Provider struct {
	cfg     config.ElevenLabsConfig
	baseURL string
	rc      *request.Client
}

// NewProvider creates a new ElevenLabs TTS provider.
// Retries and tracking are delegated to rc.
func NewProvider(cfg config.ElevenLabsConfig, rc *request.Client) *Provider {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Provider{cfg: cfg, baseURL: base, rc: rc}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "elevenlabs" }

// Configured reports whether an API key is set.
func (p *Provider) Configured() error {
	if p.cfg.Key == "" {
		return ErrNotConfigured
	}
	return nil
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// requestBody represents the JSON payload for a text-to-speech call.
type requestBody struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

// Synthesize generates MP3 speech from text and writes it to w.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID string, w io.Writer) (string, error) {
	if err := p.Configured(); err != nil {
		return "", err
	}

	vid := p.cfg.VoiceID
	if voiceID != "" {
		vid = voiceID
	}
	if vid == "" {
		return "", tts.NewFatalError(http.StatusBadRequest, "no voice ID configured for ElevenLabs")
	}

	reqData := requestBody{
		Text:    text,
		ModelID: p.cfg.Model,
		VoiceSettings: voiceSettings{
			Stability:       p.cfg.Stability,
			SimilarityBoost: p.cfg.SimilarityBoost,
			Style:           p.cfg.Style,
			UseSpeakerBoost: p.cfg.SpeakerBoost,
		},
	}
	jsonData, err := json.Marshal(reqData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	u := fmt.Sprintf("%s/v1/text-to-speech/%s", p.baseURL, url.PathEscape(vid))
	data, err := p.rc.PostWithHeaders(ctx, u, jsonData, p.headers("audio/mpeg"))
	if err != nil {
		tts.Log(providerName, text, statusOf(err), err)
		return "", classify(err)
	}

	if err := tts.VerifyAudio(data); err != nil {
		tts.Log(providerName, text, http.StatusOK, err)
		return "", err
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}

	tts.Log(providerName, text, http.StatusOK, nil)
	return tts.FormatMP3, nil
}

type voicesResponse struct {
	Voices []struct {
		VoiceID string            `json:"voice_id"`
		Name    string            `json:"name"`
		Labels  map[string]string `json:"labels"`
	} `json:"voices"`
}

// Voices lists the voices available to the account.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	if err := p.Configured(); err != nil {
		return nil, err
	}
	data, err := p.rc.Get(ctx, p.baseURL+"/v1/voices", p.headers("application/json"))
	if err != nil {
		return nil, classify(err)
	}
	var vr voicesResponse
	if err := json.Unmarshal(data, &vr); err != nil {
		return nil, fmt.Errorf("failed to decode voices: %w", err)
	}

	voices := make([]tts.Voice, 0, len(vr.Voices))
	for _, v := range vr.Voices {
		voices = append(voices, tts.Voice{
			ID:       v.VoiceID,
			Name:     v.Name,
			Language: v.Labels["language"],
			IsNeural: true,
		})
	}
	return voices, nil
}

func (p *Provider) headers(accept string) map[string]string {
	return map[string]string{
		"Accept":       accept,
		"Content-Type": "application/json",
		"xi-api-key":   p.cfg.Key,
	}
}

// classify turns client errors (bad key, unknown voice) into fatal ones.
// Everything else already went through the request client's retries.
func classify(err error) error {
	var se *request.StatusError
	if errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("elevenlabs: %w", tts.NewFatalError(se.StatusCode, fmt.Sprintf("ElevenLabs API error %d: %s", se.StatusCode, se.Body)))
	}
	return fmt.Errorf("elevenlabs: %w", err)
}

func statusOf(err error) int {
	var se *request.StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
