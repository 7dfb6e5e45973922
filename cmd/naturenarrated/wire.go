package main

import (
	"context"
	"fmt"
	"time"

	"naturenarrated/pkg/budget"
	"naturenarrated/pkg/config"
	"naturenarrated/pkg/llm"
	"naturenarrated/pkg/llm/anthropic"
	"naturenarrated/pkg/llm/gemini"
	"naturenarrated/pkg/narrator"
	"naturenarrated/pkg/request"
	"naturenarrated/pkg/tracker"
	"naturenarrated/pkg/tts"
	"naturenarrated/pkg/tts/edgetts"
	"naturenarrated/pkg/tts/elevenlabs"
)

// ttsRetryDelay is the first backoff step for speech calls.
const ttsRetryDelay = 500 * time.Millisecond

// services holds everything built from the config that the commands share.
type services struct {
	tracker  *tracker.Tracker
	gate     *budget.Window
	llm      llm.Provider
	speech   tts.Provider
	narrator *narrator.Service
}

func buildServices(ctx context.Context, appCfg *config.Config) (*services, error) {
	tr := tracker.New()
	tts.SetLogPath(appCfg.Log.TTS.Path)

	provider, err := newLLMProvider(ctx, appCfg, tr)
	if err != nil {
		return nil, err
	}

	gate := budget.NewWindow(appCfg.Budget.Ceiling, appCfg.Budget.Window.Std())
	svc, err := narrator.NewService(provider, gate, narrator.EstimatesFromConfig(appCfg.Budget), appCfg.LLM.MaxOutputTokens, tr)
	if err != nil {
		return nil, fmt.Errorf("failed to create narrator: %w", err)
	}

	return &services{
		tracker:  tr,
		gate:     gate,
		llm:      provider,
		speech:   newSpeechProvider(appCfg, tr),
		narrator: svc,
	}, nil
}

// newLLMProvider selects the text provider. Model calls are never retried.
func newLLMProvider(ctx context.Context, appCfg *config.Config, tr *tracker.Tracker) (llm.Provider, error) {
	history := llm.NewHistory(appCfg.Log.LLM.Path)

	switch appCfg.LLM.Provider {
	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, appCfg.LLM, history, tr)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini client: %w", err)
		}
		return c, nil
	default:
		rc := request.New(tr, request.WithTimeout(appCfg.Request.Timeout.Std()))
		return anthropic.NewClient(appCfg.LLM, history, rc, tr), nil
	}
}

func newSpeechProvider(appCfg *config.Config, tr *tracker.Tracker) tts.Provider {
	switch appCfg.TTS.Engine {
	case config.EngineEdgeTTS:
		return edgetts.NewProvider(appCfg.TTS.EdgeTTS, tr)
	default:
		rc := request.New(tr,
			request.WithTimeout(appCfg.Request.Timeout.Std()),
			request.WithRetries(appCfg.Request.Retries),
			request.WithBaseDelay(ttsRetryDelay))
		return elevenlabs.NewProvider(appCfg.TTS.ElevenLabs, rc)
	}
}

// speechVoice is the configured voice of the active engine.
func speechVoice(appCfg *config.Config) string {
	if appCfg.TTS.Engine == config.EngineEdgeTTS {
		return appCfg.TTS.EdgeTTS.VoiceID
	}
	return appCfg.TTS.ElevenLabs.VoiceID
}
