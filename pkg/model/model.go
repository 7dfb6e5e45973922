package model

import (
	"encoding/json"
	"fmt"
)

// Coordinates is a WGS84 position as sent by the browser.
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Place is the trail or location a story is told about.
// It is only ever read; nothing downstream mutates it.
type Place struct {
	Name        string      `json:"name" yaml:"name"`
	Location    string      `json:"location" yaml:"location"`
	Coordinates Coordinates `json:"coordinates" yaml:"coordinates"`
}

// Category identifies an interest category.
type Category string

// Known interest categories.
const (
	CategoryBirds      Category = "birds"
	CategoryWildlife   Category = "wildlife"
	CategoryIndigenous Category = "indigenous"
	CategoryGeology    Category = "geology"
	CategoryPlants     Category = "plants"
	CategoryHistory    Category = "history"

	// CategoryNature is the older id for plants, still sent by bookmarked links.
	CategoryNature Category = "nature"
)

// Subcategory narrows a category. SubcategoryOverview means "the whole category".
type Subcategory string

// SubcategoryOverview is the default subcategory of every category.
const SubcategoryOverview Subcategory = "overview"

// Known subcategories, grouped by category.
const (
	SubBirdsNearby Subcategory = "birds-nearby"
	SubSongsHear   Subcategory = "songs-hear"
	SubMigration   Subcategory = "migration"
	SubSpotThem    Subcategory = "spot-them"

	SubAnimalsNearby Subcategory = "animals-nearby"
	SubSignsTrail    Subcategory = "signs-trail"
	SubWhereLive     Subcategory = "where-live"
	SubPredatorsHere Subcategory = "predators-here"

	SubWhoLived        Subcategory = "who-lived"
	SubPracticesRegion Subcategory = "practices-region"
	SubPlaceNames      Subcategory = "place-names-indigenous"
	SubCommunitiesNow  Subcategory = "communities-today"

	SubRocksSee         Subcategory = "rocks-see"
	SubHowFormed        Subcategory = "how-formed"
	SubShapingLandscape Subcategory = "shaping-landscape"
	SubAncientLife      Subcategory = "ancient-life"

	SubTreesTrail   Subcategory = "trees-trail"
	SubPlantsSee    Subcategory = "plants-see"
	SubConnectHere  Subcategory = "connect-here"
	SubSeasonsTrail Subcategory = "seasons-trail"

	SubSettlersExploration Subcategory = "settlers-exploration"
	SubWarsConflicts       Subcategory = "wars-conflicts"
	SubConservation        Subcategory = "conservation"
	SubTrailStory          Subcategory = "trail-story"
)

// InterestSelection is one (category, subcategory) pair picked by the listener.
type InterestSelection struct {
	Category    Category    `json:"category" yaml:"category"`
	Subcategory Subcategory `json:"subcategory" yaml:"subcategory"`
}

// UnmarshalJSON also accepts the older bare-string form ("geology"), which
// selects the overview of that category.
func (s *InterestSelection) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*s = InterestSelection{Category: Category(id), Subcategory: SubcategoryOverview}
		return nil
	}

	type plain InterestSelection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("interest must be an object or a category id: %w", err)
	}
	*s = InterestSelection(p)
	return nil
}

// MaxInterests is how many selections the UI allows. The API does not enforce it.
const MaxInterests = 3

// LengthMode selects the target duration of a story.
type LengthMode string

// Length modes.
const (
	LengthShort  LengthMode = "short"
	LengthMedium LengthMode = "medium"
	LengthLong   LengthMode = "long"
)

// WebSearchMode is the web-search directive of a story request.
type WebSearchMode string

// Web-search directives.
const (
	WebSearchOn   WebSearchMode = "on"
	WebSearchOff  WebSearchMode = "off"
	WebSearchAuto WebSearchMode = "auto"
)

// StoryRequest is the inbound body of the story route.
type StoryRequest struct {
	Trail        Place               `json:"trail"`
	Interests    []InterestSelection `json:"interests"`
	Length       LengthMode          `json:"length,omitempty"`
	UseWebSearch WebSearchMode       `json:"useWebSearch,omitempty"`
}
