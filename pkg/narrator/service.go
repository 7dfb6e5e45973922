// Package narrator turns a place and a set of interests into a spoken nature story.
package narrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"naturenarrated/pkg/budget"
	"naturenarrated/pkg/config"
	"naturenarrated/pkg/llm"
	"naturenarrated/pkg/logging"
	"naturenarrated/pkg/model"
	"naturenarrated/pkg/tracker"
)

// Estimates are the static per-request token guesses submitted to the gate.
type Estimates struct {
	Assessment int
	Prompt     int
	Search     int
}

// EstimatesFromConfig reads the estimates from the budget settings.
func EstimatesFromConfig(cfg config.BudgetConfig) Estimates {
	return Estimates{
		Assessment: cfg.EstimateAssessment,
		Prompt:     cfg.EstimatePrompt,
		Search:     cfg.EstimateSearch,
	}
}

// Estimate is the coarse token cost of a request under a directive.
// It does not look at the prompt text.
func (e Estimates) Estimate(directive model.WebSearchMode) int {
	total := e.Prompt
	if directive == model.WebSearchAuto {
		total += e.Assessment
	}
	if directive != model.WebSearchOff {
		total += e.Search
	}
	return total
}

// Service is the story request orchestrator. It is safe for concurrent use;
// the gate is the only state shared between requests.
type Service struct {
	provider  llm.Provider
	gate      budget.Gate
	composer  *Composer
	estimates Estimates
	maxTokens int
	tracker   *tracker.Tracker
}

// NewService wires the orchestrator. The tracker may be nil.
func NewService(p llm.Provider, gate budget.Gate, est Estimates, maxTokens int, t *tracker.Tracker) (*Service, error) {
	composer, err := NewComposer()
	if err != nil {
		return nil, err
	}
	return &Service{
		provider:  p,
		gate:      gate,
		composer:  composer,
		estimates: est,
		maxTokens: maxTokens,
		tracker:   t,
	}, nil
}

// Generate runs the two-stage pipeline for one request and returns the normalized story.
// No partial story is ever returned; every failure is an *Error.
func (s *Service) Generate(ctx context.Context, req model.StoryRequest) (*model.Narrative, error) {
	start := time.Now()

	// 1. Credentials
	if err := s.provider.HealthCheck(ctx); err != nil {
		return nil, &Error{Kind: KindConfig, Message: "language model provider is not configured", Err: err}
	}

	// 2. Inputs
	length, lengthSpec, err := ResolveLength(req.Length)
	if err != nil {
		return nil, err
	}
	directive, err := ResolveWebSearch(req.UseWebSearch)
	if err != nil {
		return nil, err
	}

	// 3. Admission
	estimate := s.estimates.Estimate(directive)
	if err := s.gate.CheckAndReserve(estimate); err != nil {
		if s.tracker != nil {
			s.tracker.TrackRejected(s.provider.Name())
		}
		var rejected *budget.RejectedError
		if errors.As(err, &rejected) {
			slog.Warn("Narrator: token budget exceeded", "estimate", estimate, "used", rejected.Used, "retry_after", rejected.RetryAfterSeconds())
			return nil, &Error{Kind: KindRateLimited, Message: "token budget exceeded", RetryAfter: rejected.RetryAfter, Err: err}
		}
		return nil, &Error{Kind: KindRateLimited, Message: "token budget exceeded", Err: err}
	}

	// 4. Prompt
	topics := ResolveTopics(req.Interests)
	prompt, err := s.composer.Compose(req.Trail, topics, lengthSpec)
	if err != nil {
		return nil, upstream("composing prompt", err)
	}
	logging.TraceDefault("Narrator: prompt composed",
		"system_chars", len(prompt.System),
		"user_chars", len(prompt.User),
		"topics", labelForm(topics))

	// 5. Assessment stage
	augment, assessed, err := assessmentStage{provider: s.provider, gate: s.gate}.run(ctx, directive, prompt.Assessment)
	if err != nil {
		return nil, err
	}

	// 6. Generation stage
	resp, err := s.provider.Complete(ctx, llm.Request{
		Name:      intentStory,
		System:    prompt.System,
		Messages:  llm.UserText(prompt.User),
		MaxTokens: s.maxTokens,
		WebSearch: augment,
	})
	if err != nil {
		return nil, upstream("story generation failed", err)
	}
	s.gate.Track(resp.Usage.InputTokens)

	// 7. Extraction
	story, tagged := ExtractStory(resp.Text())
	if !tagged {
		slog.Warn("Narrator: story markers missing, using full response")
	}
	if story == "" {
		return nil, upstream("model returned an empty story", fmt.Errorf("stop reason %q", resp.StopReason))
	}

	n := &model.Narrative{
		Story:        story,
		Length:       length,
		Augmented:    augment,
		Assessed:     assessed,
		Model:        resp.Model,
		StopReason:   resp.StopReason,
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
		Latency:      time.Since(start),
	}
	slog.Info("Narrator: story generated",
		"place", req.Trail.Name,
		"interests", len(req.Interests),
		"length", length,
		"web_search", directive,
		"augmented", augment,
		"model", n.Model,
		"stop_reason", n.StopReason,
		"input_tokens", n.InputTokens,
		"output_tokens", n.OutputTokens,
		"latency", n.Latency)
	return n, nil
}
