package api

import (
	"net/http"
	"time"

	"naturenarrated/pkg/budget"
	"naturenarrated/pkg/tracker"
)

// BudgetSnapshotter exposes the gate's current window.
type BudgetSnapshotter interface {
	Snapshot() budget.State
}

// StatsHandler serves GET /api/stats.
type StatsHandler struct {
	tracker *tracker.Tracker
	budget  BudgetSnapshotter
	now     func() time.Time
}

// NewStatsHandler creates a new StatsHandler. b may be nil.
func NewStatsHandler(t *tracker.Tracker, b BudgetSnapshotter) *StatsHandler {
	return &StatsHandler{tracker: t, budget: b, now: time.Now}
}

// BudgetDTO is the budget window as shown to operators.
type BudgetDTO struct {
	Used            int `json:"used"`
	Ceiling         int `json:"ceiling"`
	ResetsInSeconds int `json:"resetsInSeconds"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Providers map[string]tracker.ProviderStats `json:"providers"`
	Budget    *BudgetDTO                       `json:"budget,omitempty"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Providers: h.tracker.Snapshot()}

	if h.budget != nil {
		st := h.budget.Snapshot()
		dto := &BudgetDTO{Used: st.Used, Ceiling: st.Ceiling}
		if remaining := st.ResetAt.Sub(h.now()); remaining > 0 {
			dto.ResetsInSeconds = int((remaining.Milliseconds() + 999) / 1000)
		}
		resp.Budget = dto
	}

	writeJSON(w, http.StatusOK, resp)
}
