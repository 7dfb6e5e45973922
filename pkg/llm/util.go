package llm

import (
	"math/rand"
	"strings"
)

// WordWrap wraps text at the specified width.
// Existing line breaks are kept; words longer than width stay on their own line.
func WordWrap(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			result.WriteString("\n")
		}

		words := strings.Fields(line)
		if len(words) == 0 {
			continue
		}

		currentLineLength := 0
		for j, word := range words {
			if j > 0 {
				if currentLineLength+len(word)+1 > width {
					result.WriteString("\n")
					currentLineLength = 0
				} else {
					result.WriteString(" ")
					currentLineLength++
				}
			}
			result.WriteString(word)
			currentLineLength += len(word)
		}
	}

	return result.String()
}

// SampleTemperature samples from a normal distribution centered on base.
// Uses jitter as the approximate range (±jitter), with σ = jitter/2.
// Result is clamped to [base-jitter, base+jitter], then to [0.1, maxTemp].
func SampleTemperature(base, jitter, maxTemp float32) float32 {
	sample := float64(base)
	if jitter > 0 {
		sigma := float64(jitter) / 2.0
		sample += rand.NormFloat64() * sigma

		minT := float64(base) - float64(jitter)
		maxT := float64(base) + float64(jitter)
		if sample < minT {
			sample = minT
		}
		if sample > maxT {
			sample = maxT
		}
	}

	// Ensure minimum positive temperature
	if sample < 0.1 {
		sample = 0.1
	}
	if maxTemp > 0 && sample > float64(maxTemp) {
		sample = float64(maxTemp)
	}
	return float32(sample)
}
