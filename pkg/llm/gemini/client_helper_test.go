package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestSearchUsageOf(t *testing.T) {
	tests := []struct {
		name string
		meta *genai.GroundingMetadata
		want searchUsage
	}{
		{
			name: "nil metadata",
			meta: nil,
			want: searchUsage{},
		},
		{
			name: "queries and sources",
			meta: &genai.GroundingMetadata{
				GroundingChunks:  []*genai.GroundingChunk{{}, {}},
				WebSearchQueries: []string{"Rock Creek Park history"},
				SearchEntryPoint: &genai.SearchEntryPoint{RenderedContent: "<div/>"},
			},
			want: searchUsage{Used: true, Queries: []string{"Rock Creek Park history"}, Sources: 2},
		},
		{
			name: "sources without entry point",
			meta: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{{}},
			},
			want: searchUsage{Used: true, Sources: 1},
		},
		{
			name: "entry point only",
			meta: &genai.GroundingMetadata{
				SearchEntryPoint: &genai.SearchEntryPoint{},
			},
			want: searchUsage{Used: true},
		},
		{
			name: "empty metadata",
			meta: &genai.GroundingMetadata{GroundingChunks: []*genai.GroundingChunk{}},
			want: searchUsage{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, searchUsageOf(tt.meta))
			assert.NotPanics(t, func() { logGoogleSearchUsage("story", tt.meta) })
		})
	}
}
