// Package anthropic implements llm.Provider over the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/llm"
	"naturenarrated/pkg/request"
	"naturenarrated/pkg/tracker"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-sonnet-4-20250514"
	providerName   = "anthropic"

	// Anthropic rejects temperatures above 1.0.
	maxTemperature = 1.0
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("anthropic: api key not configured")

// Client implements llm.Provider for Anthropic Claude models.
type Client struct {
	rc      *request.Client
	tracker *tracker.Tracker
	history *llm.History

	mu                sync.RWMutex
	apiKey            string
	baseURL           string
	modelName         string
	profiles          map[string]string
	webSearchMaxUses  int
	temperatureBase   float32
	temperatureJitter float32
}

// NewClient creates a new Anthropic client. The key may be empty; calls then fail
// and HealthCheck reports ErrNotConfigured.
func NewClient(cfg config.LLMConfig, history *llm.History, rc *request.Client, t *tracker.Tracker) *Client {
	c := &Client{rc: rc, tracker: t, history: history}
	c.Configure(cfg)
	return c
}

// Configure updates the client with new settings.
func (c *Client) Configure(cfg config.LLMConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.apiKey = cfg.Key
	c.modelName = cfg.Model
	if c.modelName == "" {
		c.modelName = defaultModel
	}
	c.baseURL = strings.TrimRight(cfg.BaseURL, "/")
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	c.profiles = cfg.Profiles
	c.webSearchMaxUses = cfg.WebSearchMaxUses
	c.temperatureBase = cfg.TemperatureBase
	c.temperatureJitter = cfg.TemperatureJitter
}

// Name implements llm.Provider.
func (c *Client) Name() string { return providerName }

// HealthCheck implements llm.Provider. It only checks configuration.
func (c *Client) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.apiKey == "" {
		return ErrNotConfigured
	}
	return nil
}

// Complete implements llm.Provider.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	c.mu.RLock()
	apiKey, baseURL := c.apiKey, c.baseURL
	body := c.buildRequest(req)
	c.mu.RUnlock()

	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("anthropic: marshaling request: %w", err)
	}

	raw, err := c.rc.PostWithHeaders(ctx, baseURL+messagesPath, payload, map[string]string{
		"Content-Type":      "application/json",
		"x-api-key":         apiKey,
		"anthropic-version": apiVersion,
	})
	if err != nil {
		var se *request.StatusError
		if errors.As(err, &se) {
			slog.Error("Anthropic: upstream error", "intent", req.Name, "status", se.StatusCode, "body", se.Body)
		}
		c.history.Record(req, nil, err)
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	resp, err := parseResponse(raw)
	if err != nil {
		c.history.Record(req, nil, err)
		return nil, err
	}

	if c.tracker != nil {
		c.tracker.TrackTokens(providerName, resp.Usage.InputTokens, resp.Usage.OutputTokens)
	}
	c.history.Record(req, resp, nil)
	return resp, nil
}

// resolveModel returns the model for the intent, falling back to the configured default.
func (c *Client) resolveModel(intent string) string {
	if m, ok := c.profiles[intent]; ok && m != "" {
		return m
	}
	return c.modelName
}

// --- request types ---

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
	Temperature *float32     `json:"temperature,omitempty"`
	Tools       []apiTool    `json:"tools,omitempty"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiTool declares a server-side tool; web search is executed by Anthropic itself.
type apiTool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

// --- response types ---

type apiResponse struct {
	Type       string            `json:"type"`
	Model      string            `json:"model"`
	Content    []apiContentBlock `json:"content"`
	StopReason string            `json:"stop_reason"`
	Usage      apiUsage          `json:"usage"`
	Error      *apiError         `json:"error,omitempty"`
}

type apiContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// buildRequest must be called with c.mu held for reading.
func (c *Client) buildRequest(req llm.Request) apiRequest {
	out := apiRequest{
		Model:     c.resolveModel(req.Name),
		MaxTokens: req.MaxTokens,
		System:    req.System,
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, apiMessage{Role: string(m.Role), Content: m.Text})
	}

	if req.WebSearch {
		out.Tools = []apiTool{{
			Type:    "web_search_20250305",
			Name:    "web_search",
			MaxUses: c.webSearchMaxUses,
		}}
	}

	// Only the narrative call gets sampled temperature; short classification calls keep the default.
	if req.Name == "story" && c.temperatureBase > 0 {
		temp := llm.SampleTemperature(c.temperatureBase, c.temperatureJitter, maxTemperature)
		out.Temperature = &temp
	}
	return out
}

func parseResponse(raw []byte) (*llm.Response, error) {
	var resp apiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("anthropic: parsing response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("anthropic: API error (%s): %s", resp.Error.Type, resp.Error.Message)
	}
	out := &llm.Response{
		Model:      resp.Model,
		StopReason: resp.StopReason,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
		Blocks: make([]llm.Block, 0, len(resp.Content)),
	}
	for _, b := range resp.Content {
		out.Blocks = append(out.Blocks, llm.Block{Type: b.Type, Text: b.Text})
	}
	if len(out.Blocks) == 0 {
		slog.Warn("Anthropic: response carried no content", "stop_reason", out.StopReason, "model", out.Model)
	}
	return out, nil
}
