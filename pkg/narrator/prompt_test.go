package narrator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/model"
)

var rockCreek = model.Place{
	Name:        "Rock Creek Trail",
	Location:    "Washington, DC",
	Coordinates: model.Coordinates{Lat: 38.95, Lng: -77.05},
}

func composeFor(t *testing.T, interests []model.InterestSelection, length model.LengthMode) *Prompt {
	t.Helper()
	c, err := NewComposer()
	require.NoError(t, err)
	_, spec, err := ResolveLength(length)
	require.NoError(t, err)
	p, err := c.Compose(rockCreek, ResolveTopics(interests), spec)
	require.NoError(t, err)
	return p
}

func TestCompose_ContainsEveryLabelAndModifier(t *testing.T) {
	sets := [][]model.InterestSelection{
		{{Category: model.CategoryBirds, Subcategory: model.SubSongsHear}},
		{
			{Category: model.CategoryGeology, Subcategory: model.SubcategoryOverview},
			{Category: model.CategoryIndigenous, Subcategory: model.SubPlaceNames},
		},
		{
			{Category: model.CategoryWildlife, Subcategory: model.SubSignsTrail},
			{Category: model.CategoryPlants, Subcategory: model.SubSeasonsTrail},
			{Category: model.CategoryHistory, Subcategory: model.SubTrailStory},
		},
	}

	for _, interests := range sets {
		p := composeFor(t, interests, model.LengthMedium)
		for _, sel := range interests {
			cat, _ := LookupCategory(sel.Category)
			assert.Contains(t, p.User, cat.Label)
			assert.Contains(t, p.User, cat.Description)
			if sel.Subcategory != model.SubcategoryOverview {
				sub, _ := LookupSubcategory(sel.Subcategory)
				assert.Contains(t, p.User, sub.Modifier)
				assert.Contains(t, p.User, sub.Label)
			}
		}
	}
}

func TestCompose_PlaceAndLength(t *testing.T) {
	p := composeFor(t, []model.InterestSelection{{Category: model.CategoryGeology}}, model.LengthLong)

	assert.Contains(t, p.User, "Rock Creek Trail")
	assert.Contains(t, p.User, "Washington, DC")
	assert.Contains(t, p.User, "38.95, -77.05")
	assert.Contains(t, p.User, "5-minute audio narrative (approximately 700-800 words)")
	assert.Contains(t, p.User, "Multiple paragraphs that immerse the listener")
	assert.Contains(t, p.User, "<story></story>")
	assert.Contains(t, p.User, "Name formations and rock types", "category guidance should be included")

	assert.Contains(t, p.System, "poetic trail narrator")
	assert.Contains(t, p.Assessment, "Rock Creek Trail")
	assert.Contains(t, p.Assessment, "YES or NO")
}

func TestCompose_UnknownIdsDegrade(t *testing.T) {
	p := composeFor(t, []model.InterestSelection{{Category: "volcanoes", Subcategory: "lava-tubes"}}, model.LengthShort)

	assert.Contains(t, p.User, "volcanoes")
	assert.NotContains(t, p.User, "<no value>")
}

func TestTopicForms(t *testing.T) {
	topics := ResolveTopics([]model.InterestSelection{
		{Category: model.CategoryBirds, Subcategory: model.SubSongsHear},
		{Category: model.CategoryGeology, Subcategory: model.SubcategoryOverview},
		{Category: model.CategoryNature},
	})
	require.Len(t, topics, 3)

	assert.Equal(t, "Birds (Songs you'll hear)", topics[0].Heading())
	assert.Equal(t, "Geology", topics[1].Heading())
	assert.Equal(t, "plants", topics[2].Category)

	assert.Equal(t, "Birds (Songs you'll hear), Geology and Plants & Ecology", labelForm(topics))
	assert.Equal(t, "Geology", labelForm(topics[1:2]))
	assert.Equal(t, "", labelForm(nil))

	inline := inlineForm(topics)
	assert.Equal(t, 2, strings.Count(inline, "; "))
	assert.True(t, strings.HasPrefix(inline, "the winged lives here"))
	assert.Contains(t, inline, "ecosystem, with emphasis on the birdsongs")
}
