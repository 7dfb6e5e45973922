package narrator

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"naturenarrated/pkg/llm/prompts"
	"naturenarrated/pkg/model"
)

//go:embed prompts
var promptFS embed.FS

// Template names.
const (
	tmplStory      = "story.tmpl"
	tmplSystem     = "system.tmpl"
	tmplAssessment = "assessment.tmpl"
)

// Topic is one resolved interest selection as the prompt sees it.
type Topic struct {
	Category    string // canonical category id, selects optional category/<id>.tmpl guidance
	Label       string
	SubLabel    string // empty for overview
	Description string
	Modifier    string // empty for overview and unknown subcategories
}

// Heading is the short label of the topic, e.g. "Birds (Songs you'll hear)".
func (t Topic) Heading() string {
	if t.SubLabel == "" {
		return t.Label
	}
	return t.Label + " (" + t.SubLabel + ")"
}

// Focus is the category description with its subcategory modifier appended.
func (t Topic) Focus() string {
	return t.Description + t.Modifier
}

// Prompt is everything sent to the model for one story.
type Prompt struct {
	System     string
	User       string
	Assessment string
}

type promptData struct {
	Place  model.Place
	Length LengthSpec
	Topics []Topic
	Inline string // dense description of what to cover
	Labels string // short preview list
}

// ResolveTopics maps selections to topics. Unknown ids degrade to their raw id.
func ResolveTopics(interests []model.InterestSelection) []Topic {
	topics := make([]Topic, 0, len(interests))
	for _, sel := range interests {
		cat, _ := LookupCategory(sel.Category)
		t := Topic{
			Category:    canonicalCategory(sel.Category),
			Label:       cat.Label,
			Description: cat.Description,
		}
		if sel.Subcategory != "" && sel.Subcategory != model.SubcategoryOverview {
			sub, _ := LookupSubcategory(sel.Subcategory)
			t.SubLabel = sub.Label
			t.Modifier = sub.Modifier
		}
		topics = append(topics, t)
	}
	return topics
}

func canonicalCategory(c model.Category) string {
	if c == model.CategoryNature {
		return string(model.CategoryPlants)
	}
	return string(c)
}

// inlineForm joins every topic's focus into one dense description.
func inlineForm(topics []Topic) string {
	parts := make([]string, len(topics))
	for i, t := range topics {
		parts[i] = t.Focus()
	}
	return strings.Join(parts, "; ")
}

// labelForm is the short preview list, e.g. "Birds (Songs you'll hear), Geology and History".
func labelForm(topics []Topic) string {
	labels := make([]string, len(topics))
	for i, t := range topics {
		labels[i] = t.Heading()
	}
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}

// Composer renders story prompts from the embedded templates.
type Composer struct {
	pm *prompts.Manager
}

// NewComposer loads the embedded prompt templates.
func NewComposer() (*Composer, error) {
	sub, err := fs.Sub(promptFS, "prompts")
	if err != nil {
		return nil, err
	}
	pm, err := prompts.NewManager(sub)
	if err != nil {
		return nil, fmt.Errorf("loading prompt templates: %w", err)
	}
	return &Composer{pm: pm}, nil
}

// Compose builds the system text, the story prompt and the assessment question.
func (c *Composer) Compose(place model.Place, topics []Topic, length LengthSpec) (*Prompt, error) {
	data := promptData{
		Place:  place,
		Length: length,
		Topics: topics,
		Inline: inlineForm(topics),
		Labels: labelForm(topics),
	}

	system, err := c.pm.Render(tmplSystem, data)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", tmplSystem, err)
	}
	user, err := c.pm.Render(tmplStory, data)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", tmplStory, err)
	}
	assess, err := c.pm.Render(tmplAssessment, data)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", tmplAssessment, err)
	}

	return &Prompt{
		System:     strings.TrimSpace(system),
		User:       strings.TrimSpace(user),
		Assessment: strings.TrimSpace(assess),
	}, nil
}
