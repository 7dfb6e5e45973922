package llm

import (
	"context"
	"strings"
)

// Role tags a message in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged turn.
type Message struct {
	Role Role
	Text string
}

// Request is one call to a generative text provider.
type Request struct {
	// Name is the intent, used for model profiles and the history log ("story", "assessment").
	Name      string
	System    string
	Messages  []Message
	MaxTokens int
	// WebSearch enables the provider's search augmentation capability for this call.
	WebSearch bool
}

// BlockText is the only block type the narrator consumes.
const BlockText = "text"

// Block is one typed content segment of a response.
type Block struct {
	Type string
	Text string
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Response is the result of a completed call.
type Response struct {
	Blocks     []Block
	Usage      Usage
	Model      string
	StopReason string
}

// Text concatenates all text blocks in order, with no separator.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range r.Blocks {
		if b.Type == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// Provider defines the interface for interacting with LLM services.
type Provider interface {
	// Complete sends the request and returns the typed content blocks and usage.
	Complete(ctx context.Context, req Request) (*Response, error)

	// HealthCheck verifies that the provider is configured. It must not spend tokens.
	HealthCheck(ctx context.Context) error

	// Name identifies the provider in logs and stats.
	Name() string
}

// UserText is a convenience for a single-turn user message list.
func UserText(text string) []Message {
	return []Message{{Role: RoleUser, Text: text}}
}
