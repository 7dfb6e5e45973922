package api

import (
	"net/http"
	"strconv"

	"naturenarrated/pkg/geo"
	"naturenarrated/pkg/model"
	"naturenarrated/pkg/narrator"
)

// ExampleSource is the part of examples.Catalog the route needs.
type ExampleSource interface {
	All() []model.ExampleStory
	Get(id string) (model.ExampleStory, bool)
	Nearest(from model.Coordinates) []model.ExampleStory
}

// CatalogHandler serves the static interest catalog and the example stories.
type CatalogHandler struct {
	examples ExampleSource
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(ex ExampleSource) *CatalogHandler {
	return &CatalogHandler{examples: ex}
}

// HandleInterests returns the selectable categories and their subcategories.
func (h *CatalogHandler) HandleInterests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories":   narrator.Catalog(),
		"maxInterests": model.MaxInterests,
	})
}

// HandleExamples returns the example stories, nearest first when lat and lng are given.
func (h *CatalogHandler) HandleExamples(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("lat") == "" && q.Get("lng") == "" {
		writeJSON(w, http.StatusOK, map[string]any{"examples": h.examples.All()})
		return
	}

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng must both be numbers")
		return
	}
	from := model.Coordinates{Lat: lat, Lng: lng}
	if err := geo.Validate(from); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"examples": h.examples.Nearest(from)})
}

// HandleExample returns a single example story by id.
func (h *CatalogHandler) HandleExample(w http.ResponseWriter, r *http.Request) {
	story, ok := h.examples.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Example not found")
		return
	}
	writeJSON(w, http.StatusOK, story)
}
