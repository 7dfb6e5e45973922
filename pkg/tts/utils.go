package tts

import (
	"regexp"
	"strings"
)

var labelParagraphRegex = regexp.MustCompile(`^\*\*[^*]+\*\*$`)

// CleanForSpeech prepares story text for synthesis: paragraphs that are only a
// bold label ("**Geology: How This Formed**") are dropped and remaining ** markers removed.
func CleanForSpeech(text string) string {
	paras := strings.Split(text, "\n\n")
	kept := paras[:0]
	for _, p := range paras {
		if labelParagraphRegex.MatchString(p) {
			continue
		}
		kept = append(kept, p)
	}
	return strings.ReplaceAll(strings.Join(kept, "\n\n"), "**", "")
}
