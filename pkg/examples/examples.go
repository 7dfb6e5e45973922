// Package examples serves the curated stories listeners see before generating their own.
package examples

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"naturenarrated/pkg/geo"
	"naturenarrated/pkg/model"
)

//go:embed examples.yaml
var embedded []byte

// Catalog is an immutable list of example stories.
type Catalog struct {
	stories []model.ExampleStory
}

// Load parses the embedded catalog.
func Load() (*Catalog, error) {
	return Parse(embedded)
}

// Parse builds a catalog from YAML. Ids must be unique and stories non-empty.
func Parse(data []byte) (*Catalog, error) {
	var stories []model.ExampleStory
	if err := yaml.Unmarshal(data, &stories); err != nil {
		return nil, fmt.Errorf("failed to parse examples: %w", err)
	}

	seen := make(map[string]bool, len(stories))
	for i, s := range stories {
		if s.ID == "" {
			return nil, fmt.Errorf("example %d has no id", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate example id %q", s.ID)
		}
		if s.Story == "" {
			return nil, fmt.Errorf("example %q has no story", s.ID)
		}
		if err := geo.Validate(s.Coordinates); err != nil {
			return nil, fmt.Errorf("example %q: %w", s.ID, err)
		}
		seen[s.ID] = true
	}
	return &Catalog{stories: stories}, nil
}

// All returns the stories in catalog order.
func (c *Catalog) All() []model.ExampleStory {
	out := make([]model.ExampleStory, len(c.stories))
	copy(out, c.stories)
	return out
}

// Get returns the story with the given id.
func (c *Catalog) Get(id string) (model.ExampleStory, bool) {
	for _, s := range c.stories {
		if s.ID == id {
			return s, true
		}
	}
	return model.ExampleStory{}, false
}

// Nearest returns the stories ordered by distance from the given point,
// each annotated with its distance in kilometers. Ties keep catalog order.
func (c *Catalog) Nearest(from model.Coordinates) []model.ExampleStory {
	out := c.All()
	for i := range out {
		d := geo.DistanceKm(from, out[i].Coordinates)
		out[i].DistanceKm = &d
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out
}
