package narrator

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"naturenarrated/pkg/llm"
	"naturenarrated/pkg/model"
)

const (
	intentAssessment = "assessment"
	intentStory      = "story"

	assessmentMaxTokens = 10
)

// noRe matches "no" as a word so "I know this area" is not read as a refusal.
var noRe = regexp.MustCompile(`(?i)\bno\b`)

// NeedsAugmentation interprets an assessment answer. Any answer containing the
// word "no" in any case asks for search; everything else, including garbage, does not.
func NeedsAugmentation(answer string) bool {
	return noRe.MatchString(answer)
}

// assessmentStage decides whether the generation stage runs with search enabled.
type assessmentStage struct {
	provider llm.Provider
	gate     tokenTracker
}

type tokenTracker interface {
	Track(inputTokens int)
}

// run returns the augmentation decision for a directive. Only auto issues a call;
// its reported input tokens are tracked whatever the answer.
func (a assessmentStage) run(ctx context.Context, directive model.WebSearchMode, question string) (augment, assessed bool, err error) {
	switch directive {
	case model.WebSearchOn:
		return true, false, nil
	case model.WebSearchOff:
		return false, false, nil
	}

	resp, err := a.provider.Complete(ctx, llm.Request{
		Name:      intentAssessment,
		Messages:  llm.UserText(question),
		MaxTokens: assessmentMaxTokens,
	})
	if err != nil {
		return false, true, upstream("knowledge assessment failed", err)
	}
	a.gate.Track(resp.Usage.InputTokens)

	answer := strings.TrimSpace(resp.Text())
	augment = NeedsAugmentation(answer)
	slog.Debug("Narrator: knowledge assessment", "answer", answer, "augment", augment)
	return augment, true, nil
}
