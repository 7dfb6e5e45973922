package main

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/llm/anthropic"
	"naturenarrated/pkg/llm/gemini"
	"naturenarrated/pkg/model"
	"naturenarrated/pkg/tts"
	"naturenarrated/pkg/tts/edgetts"
	"naturenarrated/pkg/tts/elevenlabs"
)

func TestParseInterests(t *testing.T) {
	got, err := parseInterests([]string{"birds:songs-hear", "history", " geology:how-formed "})
	require.NoError(t, err)
	assert.Equal(t, []model.InterestSelection{
		{Category: model.CategoryBirds, Subcategory: model.SubSongsHear},
		{Category: model.CategoryHistory, Subcategory: model.SubcategoryOverview},
		{Category: model.CategoryGeology, Subcategory: model.SubHowFormed},
	}, got)

	_, err = parseInterests(nil)
	assert.Error(t, err)
	_, err = parseInterests([]string{":songs-hear"})
	assert.Error(t, err)
}

func TestLoadEnv(t *testing.T) {
	assert.NoError(t, loadEnv(filepath.Join(t.TempDir(), "missing.env")))
	assert.NoError(t, loadEnv(""))

	t.Setenv("NN_TEST_KEY", "")
	os.Unsetenv("NN_TEST_KEY")
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("NN_TEST_KEY=from-dotenv\n"), 0o600))
	require.NoError(t, loadEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("NN_TEST_KEY"))
}

func TestBuildServices_ProviderSelection(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(c *config.Config)
		wantLLM    any
		wantSpeech any
		wantVoice  string
	}{
		{
			name:       "defaults",
			mutate:     func(c *config.Config) {},
			wantLLM:    &anthropic.Client{},
			wantSpeech: &elevenlabs.Provider{},
			wantVoice:  "4YYIPFl9wE5c4L2eu2Gb",
		},
		{
			name: "gemini and edge",
			mutate: func(c *config.Config) {
				c.LLM.Provider = config.ProviderGemini
				c.TTS.Engine = config.EngineEdgeTTS
			},
			wantLLM:    &gemini.Client{},
			wantSpeech: &edgetts.Provider{},
			wantVoice:  "en-US-AndrewMultilingualNeural",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appCfg := config.DefaultConfig()
			appCfg.Log.LLM.Path = ""
			appCfg.Log.TTS.Path = ""
			tt.mutate(appCfg)

			svcs, err := buildServices(context.Background(), appCfg)
			require.NoError(t, err)
			assert.IsType(t, tt.wantLLM, svcs.llm)
			assert.IsType(t, tt.wantSpeech, svcs.speech)
			assert.Equal(t, tt.wantVoice, speechVoice(appCfg))
			assert.NotNil(t, svcs.narrator)
			assert.Equal(t, appCfg.Budget.Ceiling, svcs.gate.Snapshot().Ceiling)
		})
	}
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "nn.yaml")
	rootCmd.SetArgs([]string{"init-config", "--config", path, "--env", ""})
	require.NoError(t, rootCmd.Execute())
	assert.FileExists(t, path)
}

// partialSpeech writes some audio and then fails, like a stream cut mid-way.
type partialSpeech struct {
	err error
}

func (p *partialSpeech) Synthesize(ctx context.Context, text, voice string, w io.Writer) (string, error) {
	if _, err := w.Write([]byte("ID3partial")); err != nil {
		return "", err
	}
	return tts.FormatMP3, p.err
}

func (p *partialSpeech) Voices(ctx context.Context) ([]tts.Voice, error) { return nil, nil }
func (p *partialSpeech) Configured() error                              { return nil }
func (p *partialSpeech) Name() string                                   { return "partial" }

func TestSpeakToFile(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetErr(io.Discard)

	t.Run("Success keeps the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "story.mp3")
		require.NoError(t, speakToFile(cmd, &partialSpeech{}, "**Birds**\n\nA thrush sings.", path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "ID3partial", string(data))
	})

	t.Run("Failure removes the partial file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "story.mp3")
		err := speakToFile(cmd, &partialSpeech{err: errors.New("stream closed")}, "A thrush sings.", path)
		require.ErrorContains(t, err, "speech synthesis failed")

		_, statErr := os.Stat(path)
		assert.ErrorIs(t, statErr, os.ErrNotExist)
	})
}
