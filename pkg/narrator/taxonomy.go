package narrator

import "naturenarrated/pkg/model"

// CategoryInfo is the display and prompt data of an interest category.
type CategoryInfo struct {
	ID            model.Category    `json:"id"`
	Label         string            `json:"label"`
	Icon          string            `json:"icon"`
	Description   string            `json:"-"`
	Subcategories []SubcategoryInfo `json:"subcategories"`
}

// SubcategoryInfo is the display and prompt data of a subcategory.
type SubcategoryInfo struct {
	ID       model.Subcategory `json:"id"`
	Label    string            `json:"label"`
	Modifier string            `json:"-"`
}

// catalogOrder is the order categories are offered to the listener.
var catalogOrder = []model.Category{
	model.CategoryBirds,
	model.CategoryWildlife,
	model.CategoryIndigenous,
	model.CategoryGeology,
	model.CategoryPlants,
	model.CategoryHistory,
}

// subcategoriesOf lists the subcategories of a category, overview first.
func subcategoriesOf(c model.Category) []model.Subcategory {
	switch c {
	case model.CategoryBirds:
		return []model.Subcategory{model.SubcategoryOverview, model.SubBirdsNearby, model.SubSongsHear, model.SubMigration, model.SubSpotThem}
	case model.CategoryWildlife:
		return []model.Subcategory{model.SubcategoryOverview, model.SubAnimalsNearby, model.SubSignsTrail, model.SubWhereLive, model.SubPredatorsHere}
	case model.CategoryIndigenous:
		return []model.Subcategory{model.SubcategoryOverview, model.SubWhoLived, model.SubPracticesRegion, model.SubPlaceNames, model.SubCommunitiesNow}
	case model.CategoryGeology:
		return []model.Subcategory{model.SubcategoryOverview, model.SubRocksSee, model.SubHowFormed, model.SubShapingLandscape, model.SubAncientLife}
	case model.CategoryPlants, model.CategoryNature:
		return []model.Subcategory{model.SubcategoryOverview, model.SubTreesTrail, model.SubPlantsSee, model.SubConnectHere, model.SubSeasonsTrail}
	case model.CategoryHistory:
		return []model.Subcategory{model.SubcategoryOverview, model.SubSettlersExploration, model.SubWarsConflicts, model.SubConservation, model.SubTrailStory}
	default:
		return nil
	}
}

// LookupCategory resolves a category. Unknown ids fall back to the raw id as
// label and description, and ok is false.
func LookupCategory(c model.Category) (info CategoryInfo, ok bool) {
	info = CategoryInfo{ID: c}
	ok = true

	switch c {
	case model.CategoryBirds:
		info.Label, info.Icon = "Birds", "🦅"
		info.Description = "the winged lives here—their songs, behaviors, seasonal journeys, and the role they play in this ecosystem"
	case model.CategoryWildlife:
		info.Label, info.Icon = "Wildlife", "🦌"
		info.Description = "the mammals, reptiles, amphibians, and diverse wildlife that inhabit this ecosystem—their behaviors, habitats, and ecological roles"
	case model.CategoryIndigenous:
		info.Label, info.Icon = "Indigenous History", "🪶"
		info.Description = "the Indigenous peoples who have stewarded this land, their deep relationship with place, and the cultural wisdom embedded in this landscape—approached with respect and care"
	case model.CategoryGeology:
		info.Label, info.Icon = "Geology", "🪨"
		info.Description = "the deep time written in stone—how tectonic forces, water, ice, and wind sculpted this terrain over millions of years"
	case model.CategoryPlants, model.CategoryNature:
		info.Label, info.Icon = "Plants & Ecology", "🌲"
		info.Description = "the plant communities, forests, and living systems that call this place home, and how they shift with the seasons"
	case model.CategoryHistory:
		info.Label, info.Icon = "Historical Events", "📜"
		info.Description = "historical events and trail-specific stories—how this place was explored, settled, conserved, and celebrated"
	default:
		info.Label = string(c)
		info.Description = string(c)
		ok = false
	}

	for _, s := range subcategoriesOf(c) {
		sub, _ := LookupSubcategory(s)
		info.Subcategories = append(info.Subcategories, sub)
	}
	return info, ok
}

// LookupSubcategory resolves a subcategory. Overview and unknown ids have an
// empty modifier; unknown ids use the raw id as label and report ok false.
func LookupSubcategory(s model.Subcategory) (info SubcategoryInfo, ok bool) {
	info = SubcategoryInfo{ID: s}
	ok = true

	switch s {
	case model.SubcategoryOverview:
		info.Label = "Overview"

	case model.SubBirdsNearby:
		info.Label = "Birds nearby"
		info.Modifier = ", focusing on the bird species you are most likely to see or hear right here on this trail—the accessible, observable avian neighbors of this place"
	case model.SubSongsHear:
		info.Label = "Songs you'll hear"
		info.Modifier = ", with emphasis on the birdsongs and calls you'll actually hear as you walk—the soundtrack of this trail"
	case model.SubMigration:
		info.Label = "Migration patterns"
		info.Modifier = ", exploring seasonal migration patterns, timing, arrival and departure dates, and the incredible journeys these birds undertake"
	case model.SubSpotThem:
		info.Label = "How to spot them"
		info.Modifier = ", focusing on how to identify and spot birds you encounter—field marks, behaviors, habitats, and recognition tips"

	case model.SubAnimalsNearby:
		info.Label = "Animals nearby"
		info.Modifier = ", focusing on the wildlife you are most likely to see or encounter on this trail—the accessible, observable animals of this area"
	case model.SubSignsTrail:
		info.Label = "Signs on this trail"
		info.Modifier = ", highlighting the specific animal signs you might notice on this trail—tracks, scat, scratch marks, trails, and evidence of wildlife presence"
	case model.SubWhereLive:
		info.Label = "Where they live here"
		info.Modifier = ", examining where wildlife lives in this specific landscape—their habitats, dens, territories, and how they use this terrain"
	case model.SubPredatorsHere:
		info.Label = "Predators & prey here"
		info.Modifier = ", exploring the predator-prey relationships specific to this ecosystem—who hunts whom, food webs, and ecological roles on this trail"

	case model.SubWhoLived:
		info.Label = "Who lived here"
		info.Modifier = ", with focus on which Indigenous peoples lived in this specific region—their names, territories, and deep connection to this land"
	case model.SubPracticesRegion:
		info.Label = "Practices in this region"
		info.Modifier = ", exploring the cultural practices, seasonal rounds, and traditional knowledge systems developed in this specific region over thousands of years"
	case model.SubPlaceNames:
		info.Label = "Indigenous place names"
		info.Modifier = ", focusing on Indigenous names for this place and nearby landmarks—their meanings, stories, and what they reveal about relationship with land"
	case model.SubCommunitiesNow:
		info.Label = "Communities today"
		info.Modifier = ", honoring the contemporary Indigenous communities connected to this land today—their ongoing stewardship, living traditions, and present-day relationship with this place"

	case model.SubRocksSee:
		info.Label = "Rocks you'll see"
		info.Modifier = ", focusing on the specific rocks, minerals, and geological features you'll actually see along this trail—the accessible geology beneath your feet"
	case model.SubHowFormed:
		info.Label = "How this formed"
		info.Modifier = ", exploring how this specific landscape was formed—the tectonic forces, volcanic activity, glaciation, or ancient seas that created this terrain"
	case model.SubShapingLandscape:
		info.Label = "Shaping this landscape"
		info.Modifier = ", examining the erosion, weathering, and ongoing geological processes that are actively shaping this landscape right now"
	case model.SubAncientLife:
		info.Label = "Ancient life here"
		info.Modifier = ", focusing on fossils and traces of ancient life found in this region—what paleontology reveals about this area's deep past"

	case model.SubTreesTrail:
		info.Label = "Trees along the trail"
		info.Modifier = ", with emphasis on the specific tree species you'll encounter along this trail—their characteristics, ecology, and role in this forest"
	case model.SubPlantsSee:
		info.Label = "Plants you'll see"
		info.Modifier = ", focusing on the understory plants, wildflowers, shrubs, and ground cover you'll actually see as you walk this trail"
	case model.SubConnectHere:
		info.Label = "How things connect here"
		info.Modifier = ", examining the specific ecological relationships, symbiosis, and connections between plants and animals in this ecosystem"
	case model.SubSeasonsTrail:
		info.Label = "Seasons on this trail"
		info.Modifier = ", exploring how this trail changes through the seasons—bloom times, fall colors, winter transformations, and the phenological calendar of this place"

	case model.SubSettlersExploration:
		info.Label = "Early settlers & exploration"
		info.Modifier = ", focusing on early European exploration and settlement of this specific region—first encounters, pioneers, and how this land was claimed and colonized"
	case model.SubWarsConflicts:
		info.Label = "Wars & conflicts"
		info.Modifier = ", examining wars, conflicts, and struggles that occurred in or near this region—battles, territorial disputes, and their impact on this landscape"
	case model.SubConservation:
		info.Label = "Conservation history"
		info.Modifier = ", exploring the conservation history of this area—how it was protected, who fought to preserve it, and the movements that saved this land"
	case model.SubTrailStory:
		info.Label = "This trail's story"
		info.Modifier = ", focusing on the specific story of this trail—who built it, when, why, and how it has evolved over time"

	default:
		info.Label = string(s)
		ok = false
	}
	return info, ok
}

// Catalog returns every known category with its subcategories, in display order.
func Catalog() []CategoryInfo {
	out := make([]CategoryInfo, 0, len(catalogOrder))
	for _, c := range catalogOrder {
		info, _ := LookupCategory(c)
		out = append(out, info)
	}
	return out
}
