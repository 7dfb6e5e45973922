package narrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/model"
)

func TestResolveLength(t *testing.T) {
	tests := []struct {
		in       model.LengthMode
		wantMode model.LengthMode
		want     LengthSpec
	}{
		{"short", model.LengthShort, LengthSpec{"15-second", "35-40", "One or two evocative sentences that spark curiosity"}},
		{"", model.LengthShort, LengthSpec{"15-second", "35-40", "One or two evocative sentences that spark curiosity"}},
		{"medium", model.LengthMedium, LengthSpec{"1-minute", "140-160", "Two to three short paragraphs that weave facts with atmosphere"}},
		{"long", model.LengthLong, LengthSpec{"5-minute", "700-800", "Multiple paragraphs that immerse the listener in layered narratives—geological, ecological, cultural"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.wantMode)+"/"+string(tt.in), func(t *testing.T) {
			mode, spec, err := ResolveLength(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, mode)
			assert.Equal(t, tt.want, spec)
		})
	}
}

func TestResolveLength_Unknown(t *testing.T) {
	for _, in := range []model.LengthMode{"epic", "SHORT", " short"} {
		mode, spec, err := ResolveLength(in)
		require.Error(t, err, in)
		assert.Equal(t, KindInvalidInput, KindOf(err))
		assert.Empty(t, mode)
		assert.Equal(t, LengthSpec{}, spec)
	}
}

func TestResolveWebSearch(t *testing.T) {
	tests := []struct {
		in      model.WebSearchMode
		want    model.WebSearchMode
		wantErr bool
	}{
		{"", model.WebSearchAuto, false},
		{"auto", model.WebSearchAuto, false},
		{"on", model.WebSearchOn, false},
		{"off", model.WebSearchOff, false},
		{"sometimes", "", true},
	}
	for _, tt := range tests {
		got, err := ResolveWebSearch(tt.in)
		if tt.wantErr {
			assert.Equal(t, KindInvalidInput, KindOf(err))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
