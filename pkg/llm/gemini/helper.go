package gemini

import (
	"google.golang.org/genai"

	"naturenarrated/pkg/llm"
)

// Gemini accepts temperatures up to 2.0.
const maxTemperature = 2.0

const (
	intentAssessment = "assessment"
	intentStory      = "story"
)

// resolveModel returns the target model name and configuration for the request.
// Must be called with c.mu held for reading.
func (c *Client) resolveModel(req llm.Request) (string, *genai.GenerateContentConfig) {
	targetModel := c.modelName // Default

	// Check if intent maps to a profile
	if profileModel, ok := c.profiles[req.Name]; ok && profileModel != "" {
		targetModel = profileModel
	}

	config := &genai.GenerateContentConfig{}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	// The assessment answer is a single word; thinking would consume its whole output budget.
	if req.Name == intentAssessment {
		config.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)}
	}

	// Augmentation is Google Search grounding.
	if req.WebSearch {
		config.Tools = []*genai.Tool{
			{
				GoogleSearch: &genai.GoogleSearch{},
			},
		}
	}

	// Apply temperature with bell curve (normal distribution) to the story only
	if req.Name == intentStory && c.temperatureBase > 0 {
		temp := llm.SampleTemperature(c.temperatureBase, c.temperatureJitter, maxTemperature)
		config.Temperature = &temp
	}

	return targetModel, config
}
