// Package gemini implements llm.Provider on the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync"

	"google.golang.org/genai"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/llm"
	"naturenarrated/pkg/tracker"
)

const (
	providerName = "gemini"
	defaultModel = "gemini-2.5-flash"
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("gemini: api key not configured")

// Client implements llm.Provider for Google Gemini.
type Client struct {
	genaiClient *genai.Client
	apiKey      string
	modelName   string
	profiles    map[string]string // Map intent -> modelName
	tracker     *tracker.Tracker
	history     *llm.History

	// Temperature settings for the story call (base + jitter with bell curve)
	temperatureBase   float32
	temperatureJitter float32

	mu sync.RWMutex
}

// NewClient creates a new Gemini client.
func NewClient(ctx context.Context, cfg config.LLMConfig, history *llm.History, t *tracker.Tracker) (*Client, error) {
	c := &Client{tracker: t, history: history}
	if err := c.Configure(ctx, cfg); err != nil {
		return nil, err
	}
	return c, nil
}

// Configure updates the client with new settings.
func (c *Client) Configure(ctx context.Context, cfg config.LLMConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = cfg.Key
	c.modelName = cfg.Model
	c.profiles = cfg.Profiles
	c.temperatureBase = cfg.TemperatureBase
	c.temperatureJitter = cfg.TemperatureJitter

	if c.modelName == "" || strings.HasPrefix(c.modelName, "claude") {
		c.modelName = defaultModel
	}

	if c.apiKey == "" {
		// Can't initialize without key.
		c.genaiClient = nil
		return nil
	}

	cc := &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return fmt.Errorf("failed to create genai client: %w", err)
	}
	c.genaiClient = client
	return nil
}

// Name implements llm.Provider.
func (c *Client) Name() string { return providerName }

// HealthCheck implements llm.Provider. It only checks configuration.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.genaiClient == nil {
		return ErrNotConfigured
	}
	return nil
}

// Complete implements llm.Provider.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.RLock()
	client := c.genaiClient
	modelName, cfg := c.resolveModel(req)
	c.mu.RUnlock()

	if client == nil {
		return nil, ErrNotConfigured
	}

	contents := make([]*genai.Content, 0, len(req.Messages))
	for _, m := range req.Messages {
		var role genai.Role = genai.RoleUser
		if m.Role == llm.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Text, role))
	}

	resp, err := client.Models.GenerateContent(ctx, modelName, contents, cfg)
	if err != nil {
		c.history.Record(req, nil, err)
		if c.tracker != nil {
			c.tracker.TrackAPIFailure(providerName)
		}
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}

	out, err := toResponse(resp, modelName)
	if err != nil {
		c.history.Record(req, nil, err)
		if c.tracker != nil {
			c.tracker.TrackAPIFailure(providerName)
		}
		return nil, err
	}

	if req.WebSearch {
		logGoogleSearchUsage(req.Name, resp.Candidates[0].GroundingMetadata)
	}

	c.history.Record(req, out, nil)
	if c.tracker != nil {
		c.tracker.TrackAPISuccess(providerName)
		c.tracker.TrackTokens(providerName, out.Usage.InputTokens, out.Usage.OutputTokens)
	}
	return out, nil
}

func toResponse(resp *genai.GenerateContentResponse, modelName string) (*llm.Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini: no candidates returned")
	}
	cand := resp.Candidates[0]

	out := &llm.Response{
		Model:      modelName,
		StopReason: string(cand.FinishReason),
	}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		out.Usage = llm.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought || part.Text == "" {
				continue
			}
			out.Blocks = append(out.Blocks, llm.Block{Type: llm.BlockText, Text: part.Text})
		}
	}
	if len(out.Blocks) == 0 {
		slog.Warn("Gemini: response carried no text", "finish_reason", cand.FinishReason, "model", out.Model)
	}
	return out, nil
}

// ValidateModel checks if the configured model is available for the API key.
// On failure it logs the available models; it never blocks startup.
func (c *Client) ValidateModel(ctx context.Context) error {
	c.mu.RLock()
	client, modelName := c.genaiClient, c.modelName
	c.mu.RUnlock()

	if client == nil {
		return ErrNotConfigured
	}

	// Ensure model name has 'models/' prefix
	name := modelName
	if !strings.HasPrefix(name, "models/") {
		name = "models/" + name
	}

	// Try to get the specific model (1 API call)
	_, err := client.Models.Get(ctx, name, nil)
	if err == nil {
		slog.Debug("Gemini model validation success", "model", modelName)
		return nil
	}

	slog.Warn("Gemini model validation failed, fetching available models...", "model", modelName, "error", err)

	availableModels, listErr := listGeminiModels(client.Models.All(ctx))
	if listErr != nil {
		slog.Debug("Stopped listing models", "error", listErr)
	}

	slog.Error("Configured model not found", "configured", modelName)
	for _, m := range availableModels {
		slog.Error("- " + m)
	}
	return fmt.Errorf("gemini: model %s not available: %w", modelName, err)
}

// listGeminiModels collects the names of Gemini models from a model listing.
// The SDK iterator handles paging; an error ends the listing early and is returned
// together with what was collected so far.
func listGeminiModels(models iter.Seq2[*genai.Model, error]) ([]string, error) {
	var names []string
	for m, err := range models {
		if err != nil {
			return names, err
		}
		if m != nil && strings.Contains(strings.ToLower(m.Name), "gemini") {
			names = append(names, m.Name)
		}
	}
	return names, nil
}
