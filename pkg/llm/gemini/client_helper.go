package gemini

import (
	"log/slog"

	"google.golang.org/genai"
)

// searchUsage summarizes grounding metadata for one augmented story.
type searchUsage struct {
	Used    bool
	Queries []string
	Sources int
}

// searchUsageOf reads grounding metadata, which is optional in responses.
// A rendered search entry point counts as use even without query text.
func searchUsageOf(meta *genai.GroundingMetadata) searchUsage {
	if meta == nil {
		return searchUsage{}
	}
	u := searchUsage{
		Queries: meta.WebSearchQueries,
		Sources: len(meta.GroundingChunks),
	}
	u.Used = len(u.Queries) > 0 || u.Sources > 0 || meta.SearchEntryPoint != nil
	return u
}

// logGoogleSearchUsage reports whether the model searched when it was allowed to.
func logGoogleSearchUsage(intent string, meta *genai.GroundingMetadata) {
	u := searchUsageOf(meta)
	if !u.Used {
		slog.Warn("Gemini: Google Search enabled but not used", "intent", intent)
		return
	}
	slog.Info("Gemini: Google Search used",
		"intent", intent,
		"queries", u.Queries,
		"sources", u.Sources)
}
