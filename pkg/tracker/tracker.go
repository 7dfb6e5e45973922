package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks usage statistics per provider.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	APISuccess   int64 `json:"api_success"`
	APIFailures  int64 `json:"api_failures"`
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	Rejected     int64 `json:"rejected"` // turned away before any call (budget, throttle)
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

// getStats returns the stats object for a provider, creating it if needed.
func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// Double check
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

func (t *Tracker) TrackAPISuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).APISuccess, 1)
}

func (t *Tracker) TrackAPIFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).APIFailures, 1)
}

func (t *Tracker) TrackRejected(provider string) {
	atomic.AddInt64(&t.getStats(provider).Rejected, 1)
}

// TrackTokens adds reported token usage for a provider.
func (t *Tracker) TrackTokens(provider string, input, output int) {
	s := t.getStats(provider)
	atomic.AddInt64(&s.InputTokens, int64(input))
	atomic.AddInt64(&s.OutputTokens, int64(output))
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats, len(t.stats))
	for k, v := range t.stats {
		result[k] = ProviderStats{
			APISuccess:   atomic.LoadInt64(&v.APISuccess),
			APIFailures:  atomic.LoadInt64(&v.APIFailures),
			InputTokens:  atomic.LoadInt64(&v.InputTokens),
			OutputTokens: atomic.LoadInt64(&v.OutputTokens),
			Rejected:     atomic.LoadInt64(&v.Rejected),
		}
	}
	return result
}

// Reset zeroes all counters but keeps known providers listed.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.stats {
		t.stats[k] = &ProviderStats{}
	}
}
