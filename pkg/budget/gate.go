// Package budget implements the process-local token budget gate that keeps model
// usage under a per-window ceiling.
package budget

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrBudgetExceeded is matched by every *RejectedError via errors.Is.
var ErrBudgetExceeded = errors.New("token budget exceeded")

// Gate decides whether a model call may start and accounts for what calls really used.
// Implementations may be process-local (Window) or backed by a shared store.
type Gate interface {
	// CheckAndReserve admits or rejects a call estimated to cost the given tokens.
	// Admission does not add the estimate to the counter; only Track does that.
	CheckAndReserve(estimated int) error
	// Track adds tokens actually reported by a completed call.
	Track(inputTokens int)
}

// RejectedError is returned by CheckAndReserve when the estimate does not fit.
type RejectedError struct {
	RetryAfter time.Duration
	Used       int
	Requested  int
	Ceiling    int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("token budget exceeded: %d used + %d requested > %d (retry in %ds)",
		e.Used, e.Requested, e.Ceiling, e.RetryAfterSeconds())
}

// Is reports ErrBudgetExceeded as a match.
func (e *RejectedError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// RetryAfterSeconds is RetryAfter in whole seconds, rounded up.
func (e *RejectedError) RetryAfterSeconds() int {
	ms := e.RetryAfter.Milliseconds()
	if ms <= 0 {
		return 0
	}
	return int((ms + 999) / 1000)
}

// State is a point-in-time view of a window, for stats.
type State struct {
	Used    int       `json:"used"`
	Ceiling int       `json:"ceiling"`
	ResetAt time.Time `json:"reset_at"`
}

// Window is a fixed-length, lazily rolled token window guarded by a mutex.
// The window only rolls over when a call arrives after the reset time; there is no timer.
type Window struct {
	mu      sync.Mutex
	ceiling int
	length  time.Duration
	used    int
	resetAt time.Time
	now     func() time.Time
}

// Option configures a Window.
type Option func(*Window)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(w *Window) {
		w.now = now
	}
}

// NewWindow creates a gate admitting up to ceiling tokens per window length.
// The first window starts now.
func NewWindow(ceiling int, length time.Duration, opts ...Option) *Window {
	w := &Window{
		ceiling: ceiling,
		length:  length,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.resetAt = w.now().Add(length)
	return w
}

// CheckAndReserve implements Gate.
func (w *Window) CheckAndReserve(estimated int) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	w.rollLocked(now)

	if w.used+estimated > w.ceiling {
		return &RejectedError{
			RetryAfter: w.resetAt.Sub(now),
			Used:       w.used,
			Requested:  estimated,
			Ceiling:    w.ceiling,
		}
	}
	return nil
}

// Track implements Gate. Non-positive counts are ignored.
func (w *Window) Track(inputTokens int) {
	if inputTokens <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.used += inputTokens
}

// Snapshot returns the current window state. An expired window reads as empty
// but is not rolled; only CheckAndReserve rolls windows.
func (w *Window) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := w.now()
	if now.After(w.resetAt) {
		return State{Used: 0, Ceiling: w.ceiling, ResetAt: now.Add(w.length)}
	}
	return State{Used: w.used, Ceiling: w.ceiling, ResetAt: w.resetAt}
}

func (w *Window) rollLocked(now time.Time) {
	if now.After(w.resetAt) {
		w.used = 0
		w.resetAt = now.Add(w.length)
	}
}
