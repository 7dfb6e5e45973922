package edgetts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSSML(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		contains []string
		excludes []string
	}{
		{
			name:     "plain narration",
			text:     "The creek runs cold in spring.",
			contains: []string{"<voice name='en-US-GuyNeural'>The creek runs cold in spring.</voice>"},
		},
		{
			name:     "ampersand and apostrophe",
			text:     "Plants & Ecology: Clark's nutcracker",
			contains: []string{"Plants &amp; Ecology: Clark&apos;s nutcracker"},
		},
		{
			name:     "markup is neutralized",
			text:     "<break time='5s'/>",
			contains: []string{"&lt;break time=&apos;5s&apos;/&gt;"},
			excludes: []string{"<break"},
		},
		{
			name:     "quoted birdsong",
			text:     `"teacher-teacher-teacher"`,
			contains: []string{"&quot;teacher-teacher-teacher&quot;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildSSML("en-US-GuyNeural", tt.text)
			assert.True(t, strings.HasPrefix(got, "<speak version='1.0'"))
			assert.True(t, strings.HasSuffix(got, "</voice></speak>"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}
