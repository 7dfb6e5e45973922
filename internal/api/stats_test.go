package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"naturenarrated/pkg/budget"
	"naturenarrated/pkg/tracker"
)

func TestStats(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	tr := tracker.New()
	tr.TrackAPISuccess("anthropic")
	tr.TrackTokens("anthropic", 1200, 300)
	tr.TrackRejected("anthropic")

	gate := budget.NewWindow(25000, time.Minute, budget.WithClock(clock))
	gate.Track(1200)
	now = now.Add(20*time.Second + 500*time.Millisecond)

	h := NewStatsHandler(tr, gate)
	h.now = clock

	router := NewRouter(Handlers{Stats: h})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)

	var body StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	anthropic := body.Providers["anthropic"]
	assert.Equal(t, int64(1), anthropic.APISuccess)
	assert.Equal(t, int64(1200), anthropic.InputTokens)
	assert.Equal(t, int64(300), anthropic.OutputTokens)
	assert.Equal(t, int64(1), anthropic.Rejected)

	require.NotNil(t, body.Budget)
	assert.Equal(t, 1200, body.Budget.Used)
	assert.Equal(t, 25000, body.Budget.Ceiling)
	assert.Equal(t, 40, body.Budget.ResetsInSeconds)
}

func TestStats_NoBudget(t *testing.T) {
	h := NewStatsHandler(tracker.New(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"providers":{}}`, w.Body.String())
}
