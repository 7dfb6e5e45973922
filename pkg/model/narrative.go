package model

import "time"

// Narrative is the result of a story generation.
// Only Story is returned to browsers; the rest is kept for logs and the CLI.
type Narrative struct {
	Story        string        `json:"story"`
	Length       LengthMode    `json:"length"`
	Augmented    bool          `json:"augmented"`
	Assessed     bool          `json:"assessed"`
	Model        string        `json:"model,omitempty"`
	StopReason   string        `json:"stop_reason,omitempty"`
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	Latency      time.Duration `json:"latency"`
}

// ExampleStory is a curated, pre-generated story shown on the landing page.
type ExampleStory struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Location    string              `json:"location" yaml:"location"`
	Emoji       string              `json:"emoji" yaml:"emoji"`
	Coordinates Coordinates         `json:"coordinates" yaml:"coordinates"`
	Interests   []InterestSelection `json:"interests" yaml:"interests"`
	Story       string              `json:"story" yaml:"story"`
	AudioFile   string              `json:"audioFile,omitempty" yaml:"audio_file"`
	DistanceKm  *float64            `json:"distanceKm,omitempty" yaml:"-"`
}
