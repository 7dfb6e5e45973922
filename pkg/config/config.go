package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// LLM provider identifiers.
const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// TTS engine identifiers.
const (
	EngineElevenLabs = "elevenlabs"
	EngineEdgeTTS    = "edge-tts"
)

// Config holds the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Request RequestConfig `yaml:"request"`
	LLM     LLMConfig     `yaml:"llm"`
	Budget  BudgetConfig  `yaml:"budget"`
	TTS     TTSConfig     `yaml:"tts"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Address      string   `yaml:"address"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// RequestConfig holds outbound HTTP settings.
// Retries only apply to text-to-speech calls; model calls are never retried.
type RequestConfig struct {
	Timeout Duration `yaml:"timeout"`
	Retries int      `yaml:"retries"`
}

// LLMConfig holds settings for the generative text provider.
type LLMConfig struct {
	Provider          string            `yaml:"provider"` // "anthropic", "gemini"
	Model             string            `yaml:"model"`
	Key               string            `yaml:"key"`
	BaseURL           string            `yaml:"base_url,omitempty"`
	Profiles          map[string]string `yaml:"profiles"` // intent -> model
	MaxOutputTokens   int               `yaml:"max_output_tokens"`
	WebSearchMaxUses  int               `yaml:"web_search_max_uses"`
	TemperatureBase   float32           `yaml:"temperature_base"`
	TemperatureJitter float32           `yaml:"temperature_jitter"`
}

// BudgetConfig holds the token budget gate settings.
type BudgetConfig struct {
	Ceiling            int      `yaml:"ceiling"`
	Window             Duration `yaml:"window"`
	EstimateAssessment int      `yaml:"estimate_assessment"`
	EstimatePrompt     int      `yaml:"estimate_prompt"`
	EstimateSearch     int      `yaml:"estimate_search"`
}

// ElevenLabsConfig holds settings for ElevenLabs TTS.
type ElevenLabsConfig struct {
	Key             string  `yaml:"key"`
	VoiceID         string  `yaml:"voice"`
	Model           string  `yaml:"model"`
	BaseURL         string  `yaml:"base_url,omitempty"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	Style           float64 `yaml:"style"`
	SpeakerBoost    bool    `yaml:"speaker_boost"`
}

// EdgeTTSConfig holds settings for Edge TTS.
// The endpoint fields are usually supplied through EDGE_TTS_* variables.
type EdgeTTSConfig struct {
	VoiceID            string `yaml:"voice"` // e.g. "en-US-AndrewMultilingualNeural"
	BaseURL            string `yaml:"base_url,omitempty"`
	Origin             string `yaml:"origin,omitempty"`
	UserAgent          string `yaml:"user_agent,omitempty"`
	TrustedClientToken string `yaml:"trusted_client_token,omitempty"`
	SecMSGECVersion    string `yaml:"sec_ms_gec_version,omitempty"`
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Engine            string           `yaml:"engine"`
	RequestsPerMinute int              `yaml:"requests_per_minute"`
	ElevenLabs        ElevenLabsConfig `yaml:"elevenlabs"`
	EdgeTTS           EdgeTTSConfig    `yaml:"edge_tts"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server   LogSettings `yaml:"server"`
	Requests LogSettings `yaml:"requests"`
	LLM      LogSettings `yaml:"llm"`
	TTS      LogSettings `yaml:"tts"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      "localhost:3000",
			ReadTimeout:  Duration(15 * time.Second),
			WriteTimeout: Duration(5 * time.Minute), // long stories with search can take a while
		},
		Request: RequestConfig{
			Timeout: Duration(120 * time.Second),
			Retries: 2,
		},
		LLM: LLMConfig{
			Provider: ProviderAnthropic,
			Model:    "claude-sonnet-4-20250514",
			Profiles: map[string]string{
				"assessment": "claude-3-5-haiku-20241022",
			},
			MaxOutputTokens:   4000,
			WebSearchMaxUses:  5,
			TemperatureBase:   1.0,
			TemperatureJitter: 0.2,
		},
		Budget: BudgetConfig{
			Ceiling:            25000, // provider limit is 30k/min, keep 5k in reserve
			Window:             Duration(time.Minute),
			EstimateAssessment: 200,
			EstimatePrompt:     3000,
			EstimateSearch:     10000,
		},
		TTS: TTSConfig{
			Engine:            EngineElevenLabs,
			RequestsPerMinute: 10,
			ElevenLabs: ElevenLabsConfig{
				VoiceID:         "4YYIPFl9wE5c4L2eu2Gb",
				Model:           "eleven_turbo_v2",
				Stability:       0.5,
				SimilarityBoost: 0.75,
				Style:           0.0,
				SpeakerBoost:    true,
			},
			EdgeTTS: EdgeTTSConfig{
				VoiceID: "en-US-AndrewMultilingualNeural",
			},
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/server.log",
				Level: "INFO",
			},
			Requests: LogSettings{
				Path:  "./logs/requests.log",
				Level: "INFO",
			},
			LLM: LogSettings{
				Path:  "./logs/llm.log",
				Level: "INFO",
			},
			TTS: LogSettings{
				Path:  "./logs/tts.log",
				Level: "INFO",
			},
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, values are merged over the defaults but never written back,
// so user formatting and comments survive.
// Secrets left empty are filled from the environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv fills empty secrets from the environment. Values are never saved back to disk.
func applyEnv(cfg *Config) {
	if cfg.LLM.Key == "" {
		switch cfg.LLM.Provider {
		case ProviderGemini:
			cfg.LLM.Key = os.Getenv("GEMINI_API_KEY")
		default:
			cfg.LLM.Key = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.TTS.ElevenLabs.Key == "" {
		cfg.TTS.ElevenLabs.Key = os.Getenv("ELEVENLABS_API_KEY")
	}

	edge := &cfg.TTS.EdgeTTS
	for field, env := range map[*string]string{
		&edge.BaseURL:            "EDGE_TTS_BASE_URL",
		&edge.Origin:             "EDGE_TTS_ORIGIN",
		&edge.UserAgent:          "EDGE_TTS_USER_AGENT",
		&edge.TrustedClientToken: "EDGE_TTS_TRUSTED_CLIENT_TOKEN",
		&edge.SecMSGECVersion:    "EDGE_TTS_SEC_MS_GEC_VERSION",
	} {
		if *field == "" {
			*field = os.Getenv(env)
		}
	}
}

// Validate checks the enumerated settings and the budget parameters.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return fmt.Errorf("invalid llm.provider '%s': must be one of %s, %s", c.LLM.Provider, ProviderAnthropic, ProviderGemini)
	}
	switch c.TTS.Engine {
	case EngineElevenLabs, EngineEdgeTTS:
	default:
		return fmt.Errorf("invalid tts.engine '%s': must be one of %s, %s", c.TTS.Engine, EngineElevenLabs, EngineEdgeTTS)
	}
	if c.Budget.Ceiling <= 0 {
		return fmt.Errorf("invalid budget.ceiling %d: must be positive", c.Budget.Ceiling)
	}
	if c.Budget.Window.Std() <= 0 {
		return fmt.Errorf("invalid budget.window %s: must be positive", c.Budget.Window.Std())
	}
	if c.LLM.MaxOutputTokens <= 0 {
		return fmt.Errorf("invalid llm.max_output_tokens %d: must be positive", c.LLM.MaxOutputTokens)
	}
	return nil
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# Nature Narrated Configuration
# ----------------------------
# Secrets may be left empty and supplied via ANTHROPIC_API_KEY, GEMINI_API_KEY,
# ELEVENLABS_API_KEY (a .env file next to the binary is loaded at startup).
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)

`)
	data = append(header, data...)

	// Inject comments for enum fields
	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: anthropic, gemini\n${1}provider:"))

	reEngine := regexp.MustCompile(`(?m)^(\s+)engine:`)
	data = reEngine.ReplaceAll(data, []byte("${1}# Options: elevenlabs, edge-tts\n${1}engine:"))

	reCeiling := regexp.MustCompile(`(?m)^(\s+)ceiling:`)
	data = reCeiling.ReplaceAll(data, []byte("${1}# Estimated input tokens allowed per window (keep a margin below the provider limit)\n${1}ceiling:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
