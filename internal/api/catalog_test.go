package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/examples"
	"naturenarrated/pkg/model"
)

func getCatalog(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	ex, err := examples.Load()
	require.NoError(t, err)

	router := NewRouter(Handlers{Catalog: NewCatalogHandler(ex)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
	return w
}

func TestInterests(t *testing.T) {
	w := getCatalog(t, "/api/interests")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Categories []struct {
			ID            string `json:"id"`
			Label         string `json:"label"`
			Icon          string `json:"icon"`
			Description   string `json:"description"`
			Subcategories []struct {
				ID    string `json:"id"`
				Label string `json:"label"`
			} `json:"subcategories"`
		} `json:"categories"`
		MaxInterests int `json:"maxInterests"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	require.Len(t, body.Categories, 6)
	assert.Equal(t, "birds", body.Categories[0].ID)
	assert.NotEmpty(t, body.Categories[0].Icon)
	assert.Empty(t, body.Categories[0].Description, "prompt text stays server-side")
	assert.Len(t, body.Categories[0].Subcategories, 5)
	assert.Equal(t, model.MaxInterests, body.MaxInterests)
}

func TestExamples(t *testing.T) {
	w := getCatalog(t, "/api/examples")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Examples []model.ExampleStory `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Examples, 3)
	assert.Equal(t, "john-muir-trail", body.Examples[0].ID)
	assert.Nil(t, body.Examples[0].DistanceKm)
}

func TestExamples_Nearest(t *testing.T) {
	// Monterey, CA
	w := getCatalog(t, "/api/examples?lat=36.60&lng=-121.89")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Examples []model.ExampleStory `json:"examples"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Examples, 3)
	assert.Equal(t, "natural-bridges-monarch", body.Examples[0].ID)
	assert.Equal(t, "rock-creek-trail", body.Examples[2].ID)
	require.NotNil(t, body.Examples[0].DistanceKm)
}

func TestExamples_BadCoordinates(t *testing.T) {
	for _, target := range []string{
		"/api/examples?lat=abc&lng=1",
		"/api/examples?lat=10",
		"/api/examples?lat=95&lng=0",
	} {
		w := getCatalog(t, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
	}
}

func TestExampleByID(t *testing.T) {
	w := getCatalog(t, "/api/examples/rock-creek-trail")
	require.Equal(t, http.StatusOK, w.Code)

	var story model.ExampleStory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &story))
	assert.Equal(t, "rock-creek-trail", story.ID)
	assert.NotEmpty(t, story.Story)

	w = getCatalog(t, "/api/examples/mount-nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Example not found"}`, w.Body.String())
}
