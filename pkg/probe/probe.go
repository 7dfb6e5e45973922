package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// DefaultTimeout bounds a single check when the caller sets none.
const DefaultTimeout = 5 * time.Second

// CheckFunc performs a health check and returns nil when it passes.
type CheckFunc func(ctx context.Context) error

// Probe represents a single startup check.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool // a failure here should prevent startup
}

// Result holds the outcome of a single probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// HealthChecker is satisfied by the text providers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ModelValidator is satisfied by providers that can confirm their model exists upstream.
type ModelValidator interface {
	ValidateModel(ctx context.Context) error
}

// Configurable is satisfied by the speech providers.
type Configurable interface {
	Configured() error
}

// Startup builds the service's probe list. Nothing is critical: a server without
// keys still answers the catalog and examples routes and reports config errors per request.
// llm and speech may be nil.
func Startup(llm HealthChecker, speech Configurable) []Probe {
	var probes []Probe
	if llm != nil {
		probes = append(probes, Probe{Name: "LLM Provider", Check: llm.HealthCheck})
		if mv, ok := llm.(ModelValidator); ok {
			probes = append(probes, Probe{Name: "LLM Model", Check: mv.ValidateModel})
		}
	}
	if speech != nil {
		probes = append(probes, Probe{
			Name:  "TTS Engine",
			Check: func(context.Context) error { return speech.Configured() },
		})
	}
	return probes
}

// Run executes the probes in order, each under its own timeout.
func Run(ctx context.Context, probes []Probe) []Result {
	results := make([]Result, len(probes))

	for i, p := range probes {
		start := time.Now()

		checkCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
		err := p.Check(checkCtx)
		cancel()

		results[i] = Result{
			Probe:    p,
			Error:    err,
			Duration: time.Since(start),
		}
	}

	return results
}

// AnalyzeResults logs a PASS/FAIL summary and joins the errors of failed critical probes.
func AnalyzeResults(results []Result) error {
	var criticalErrors []error

	slog.Info("Startup Checks Summary")

	for _, r := range results {
		status := "PASS"
		if r.Error != nil {
			status = "FAIL"
		}

		msg := fmt.Sprintf("[%s] %-20s (%v)", status, r.Probe.Name, r.Duration.Round(time.Millisecond))

		if r.Error == nil {
			slog.Info(msg)
			continue
		}
		if r.Probe.Critical {
			slog.Error(msg, "error", r.Error)
			criticalErrors = append(criticalErrors, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		} else {
			slog.Warn(msg, "error", r.Error)
		}
	}

	return errors.Join(criticalErrors...)
}
