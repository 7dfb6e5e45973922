package edgetts

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/tracker"
	"naturenarrated/pkg/tts"
)

const (
	providerName = "EDGETTS"
	trackerName  = "edge-tts"
	dialAttempts = 3
	outputFormat = "audio-24khz-48kbitrate-mono-mp3"

	// windowsEpochOffset is the seconds between 1601-01-01 and the unix epoch.
	windowsEpochOffset = 11644473600
)

// ErrNotConfigured is returned when the endpoint settings are incomplete.
var ErrNotConfigured = errors.New("edge-tts endpoint not configured")

// Provider implements tts.Provider for Microsoft Edge TTS over its websocket endpoint.
type Provider struct {
	cfg       config.EdgeTTSConfig
	tracker   *tracker.Tracker
	dialer    *websocket.Dialer
	now       func() time.Time
	dialDelay time.Duration
}

// NewProvider creates a new Edge TTS provider.
func NewProvider(cfg config.EdgeTTSConfig, t *tracker.Tracker) *Provider {
	return &Provider{
		cfg:       cfg,
		tracker:   t,
		dialer:    websocket.DefaultDialer,
		now:       time.Now,
		dialDelay: 500 * time.Millisecond,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return trackerName }

// Configured reports a missing endpoint setting.
func (p *Provider) Configured() error {
	missing := []string{}
	for name, v := range map[string]string{
		"base_url":             p.cfg.BaseURL,
		"trusted_client_token": p.cfg.TrustedClientToken,
		"sec_ms_gec_version":   p.cfg.SecMSGECVersion,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

// Synthesize streams MP3 audio for text into w.
// Audio is buffered until the turn ends so a broken stream never reaches w half-written.
func (p *Provider) Synthesize(ctx context.Context, text, voice string, w io.Writer) (string, error) {
	if err := p.Configured(); err != nil {
		return "", err
	}
	if voice == "" {
		voice = p.cfg.VoiceID
	}
	if voice == "" {
		return "", tts.NewFatalError(http.StatusBadRequest, "voice ID is required")
	}

	audio, err := p.synthesize(ctx, text, voice)
	if err == nil {
		err = tts.VerifyAudio(audio)
	}
	if err != nil {
		tts.Log(providerName, text, 0, err)
		p.track(false)
		return "", err
	}

	if _, err := w.Write(audio); err != nil {
		return "", fmt.Errorf("failed to write audio: %w", err)
	}
	tts.Log(providerName, text, http.StatusOK, nil)
	p.track(true)
	return tts.FormatMP3, nil
}

func (p *Provider) synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	conn, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := sendConfig(conn); err != nil {
		return nil, err
	}
	requestID := strings.ReplaceAll(uuid.New().String(), "-", "")
	if err := sendSSML(conn, voice, text, requestID); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := consumeResponses(ctx, conn, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (p *Provider) track(ok bool) {
	if p.tracker == nil {
		return
	}
	if ok {
		p.tracker.TrackAPISuccess(trackerName)
	} else {
		p.tracker.TrackAPIFailure(trackerName)
	}
}

func (p *Provider) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if p.cfg.Origin != "" {
		header.Set("Origin", p.cfg.Origin)
	}
	if p.cfg.UserAgent != "" {
		header.Set("User-Agent", p.cfg.UserAgent)
	}
	header.Set("Pragma", "no-cache")
	header.Set("Cache-Control", "no-cache")
	header.Set("Accept-Language", "en-US,en;q=0.9")
	header.Set("Cookie", "muid="+strings.ReplaceAll(uuid.New().String(), "-", ""))

	q := url.Values{}
	q.Set("TrustedClientToken", p.cfg.TrustedClientToken)
	q.Set("Sec-MS-GEC", p.generateSecMSGec(p.cfg.TrustedClientToken))
	q.Set("Sec-MS-GEC-Version", p.cfg.SecMSGECVersion)
	endpoint := p.cfg.BaseURL + "?" + q.Encode()

	var dialErr error
	for i := 0; i < dialAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.dialDelay):
			}
		}
		conn, resp, err := p.dialer.DialContext(ctx, endpoint, header)
		if err == nil {
			return conn, nil
		}
		dialErr = err
		if resp != nil {
			slog.Warn("EdgeTTS: handshake failure", "status_code", resp.StatusCode, "attempt", i+1)
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return nil, tts.NewFatalError(resp.StatusCode, fmt.Sprintf("edge-tts handshake rejected: %s", resp.Status))
			}
		}
	}
	return nil, fmt.Errorf("websocket dial failed after %d attempts: %w", dialAttempts, dialErr)
}

// generateSecMSGec derives the rotating access token: Windows file-time ticks,
// floored to a 5 minute bucket, hashed with the client token.
func (p *Provider) generateSecMSGec(trustedClientToken string) string {
	ticks := p.now().Unix() + windowsEpochOffset
	ticks -= ticks % 300

	hash := sha256.Sum256([]byte(fmt.Sprintf("%d0000000%s", ticks, trustedClientToken)))
	return strings.ToUpper(hex.EncodeToString(hash[:]))
}

func sendConfig(conn *websocket.Conn) error {
	configMsg := "Content-Type:application/json; charset=utf-8\r\nPath:speech.config\r\n\r\n" +
		`{"context":{"synthesis":{"audio":{"metadataoptions":{"sentenceBoundaryEnabled":"false","wordBoundaryEnabled":"false"},"outputFormat":"` + outputFormat + `"}}}}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(configMsg)); err != nil {
		return fmt.Errorf("failed to send speech.config: %w", err)
	}
	return nil
}

func sendSSML(conn *websocket.Conn, voice, text, requestID string) error {
	ssmlMsg := fmt.Sprintf("X-RequestId:%s\r\nContent-Type:application/ssml+xml\r\nPath:ssml\r\n\r\n%s", requestID, buildSSML(voice, text))
	if err := conn.WriteMessage(websocket.TextMessage, []byte(ssmlMsg)); err != nil {
		return fmt.Errorf("failed to send ssml: %w", err)
	}
	return nil
}

var ssmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func buildSSML(voice, text string) string {
	return fmt.Sprintf("<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='en-US'><voice name='%s'>%s</voice></speak>",
		voice, ssmlEscaper.Replace(text))
}

func consumeResponses(ctx context.Context, conn *websocket.Conn, w io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read message failed: %w", err)
		}

		switch msgType {
		case websocket.TextMessage:
			if bytes.Contains(data, []byte("Path:turn.end")) {
				return nil
			}
		case websocket.BinaryMessage:
			if err := writeAudioFrame(data, w); err != nil {
				return err
			}
		}
	}
}

// writeAudioFrame strips the big-endian length-prefixed header from a binary frame.
func writeAudioFrame(data []byte, w io.Writer) error {
	if len(data) < 2 {
		return nil
	}
	headerLength := int(uint16(data[0])<<8 | uint16(data[1]))
	if len(data) < 2+headerLength {
		return nil
	}
	audio := data[2+headerLength:]
	if len(audio) == 0 {
		return nil
	}
	if _, err := w.Write(audio); err != nil {
		return fmt.Errorf("write audio data failed: %w", err)
	}
	return nil
}

// Voices returns a short list of English neural voices suited to narration.
func (p *Provider) Voices(ctx context.Context) ([]tts.Voice, error) {
	return []tts.Voice{
		{ID: "en-US-AndrewMultilingualNeural", Name: "Andrew (Multilingual)", Language: "en-US", IsNeural: true},
		{ID: "en-US-AvaMultilingualNeural", Name: "Ava (Multilingual)", Language: "en-US", IsNeural: true},
		{ID: "en-US-GuyNeural", Name: "Guy", Language: "en-US", IsNeural: true},
		{ID: "en-GB-SoniaNeural", Name: "Sonia (UK)", Language: "en-GB", IsNeural: true},
		{ID: "en-AU-WilliamNeural", Name: "William (Australia)", Language: "en-AU", IsNeural: true},
	}, nil
}
