package narrator

import (
	"fmt"

	"naturenarrated/pkg/model"
)

// LengthSpec is the target shape of a story for one length mode.
type LengthSpec struct {
	Duration    string // spoken duration, e.g. "1-minute"
	Words       string // target word count range, e.g. "140-160"
	Description string // structural guidance
}

// ResolveLength maps a length mode to its static target. An empty mode means short.
// Any other unknown value is rejected rather than producing an empty target.
func ResolveLength(mode model.LengthMode) (model.LengthMode, LengthSpec, error) {
	switch mode {
	case "", model.LengthShort:
		return model.LengthShort, LengthSpec{
			Duration:    "15-second",
			Words:       "35-40",
			Description: "One or two evocative sentences that spark curiosity",
		}, nil
	case model.LengthMedium:
		return model.LengthMedium, LengthSpec{
			Duration:    "1-minute",
			Words:       "140-160",
			Description: "Two to three short paragraphs that weave facts with atmosphere",
		}, nil
	case model.LengthLong:
		return model.LengthLong, LengthSpec{
			Duration:    "5-minute",
			Words:       "700-800",
			Description: "Multiple paragraphs that immerse the listener in layered narratives—geological, ecological, cultural",
		}, nil
	default:
		return "", LengthSpec{}, invalidInput(fmt.Sprintf("unknown length %q: must be short, medium or long", mode))
	}
}

// ResolveWebSearch validates the web-search directive. An empty directive means auto.
func ResolveWebSearch(mode model.WebSearchMode) (model.WebSearchMode, error) {
	switch mode {
	case "", model.WebSearchAuto:
		return model.WebSearchAuto, nil
	case model.WebSearchOn, model.WebSearchOff:
		return mode, nil
	default:
		return "", invalidInput(fmt.Sprintf("unknown useWebSearch %q: must be on, off or auto", mode))
	}
}
