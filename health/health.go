package health

import (
	"context"
	"fmt"
	"os"
	"time"
)

// DefaultTimeout bounds a single check when the Check sets none.
const DefaultTimeout = 5 * time.Second

// Pinger is implemented by every remote client the inventory talks to.
type Pinger interface {
	Health(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Health implements Pinger.
func (f PingFunc) Health(ctx context.Context) error { return f(ctx) }

// Check is one named dependency probe. A failing optional check degrades the
// report instead of making it unhealthy.
type Check struct {
	Name     string
	Target   Pinger
	Optional bool
	Timeout  time.Duration
}

// Report is the outcome of Run.
type Report struct {
	Overall Status            `json:"overall"`
	Checks  map[string]Status `json:"checks"`
}

// Run executes the checks one after another and combines them.
func Run(ctx context.Context, checks ...Check) Report {
	report := Report{Checks: make(map[string]Status, len(checks))}
	named := make([]Status, 0, len(checks))

	for _, c := range checks {
		st := probe(ctx, c)
		report.Checks[c.Name] = st
		st.Message = c.Name + ": " + st.Message
		named = append(named, st)
	}

	report.Overall = Combine(named...)
	return report
}

func probe(ctx context.Context, c Check) Status {
	if c.Target == nil {
		return Unhealthy("not configured", nil)
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := c.Target.Health(ctx)
	elapsed := time.Since(start)
	if err == nil {
		return Status{
			Status:  StatusHealthy,
			Message: "reachable",
			Details: map[string]any{"latency_ms": elapsed.Milliseconds()},
		}
	}

	details := map[string]any{"error": err.Error()}
	if c.Optional {
		return Degraded("unreachable", details)
	}
	return Unhealthy("unreachable", details)
}

// FileCheck verifies that a file exists, such as a knowledge-base file.
func FileCheck(path string) Status {
	if path == "" {
		return Unhealthy("path cannot be empty", nil)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Unhealthy(fmt.Sprintf("path '%s' does not exist", path), map[string]any{"path": path})
		}
		return Unhealthy(
			fmt.Sprintf("failed to stat path '%s'", path),
			map[string]any{"path": path, "error": err.Error()},
		)
	}
	if info.IsDir() {
		return Unhealthy(fmt.Sprintf("path '%s' is a directory", path), map[string]any{"path": path})
	}
	return Healthy(fmt.Sprintf("file '%s' exists", path))
}

// Combine aggregates statuses into one. Any unhealthy status makes the result
// unhealthy; otherwise any degraded status makes it degraded.
func Combine(checks ...Status) Status {
	if len(checks) == 0 {
		return Healthy("no checks provided")
	}

	var unhealthy, degraded []string
	var healthyCount int

	for _, check := range checks {
		msg := check.Message
		if msg == "" {
			msg = "unnamed check"
		}
		switch check.Status {
		case StatusUnhealthy:
			unhealthy = append(unhealthy, msg)
		case StatusDegraded:
			degraded = append(degraded, msg)
		case StatusHealthy:
			healthyCount++
		}
	}

	if len(unhealthy) > 0 {
		return Unhealthy(
			fmt.Sprintf("%d check(s) failed", len(unhealthy)),
			map[string]any{
				"total":         len(checks),
				"unhealthy":     len(unhealthy),
				"degraded":      len(degraded),
				"healthy":       healthyCount,
				"failed_checks": unhealthy,
			},
		)
	}

	if len(degraded) > 0 {
		return Degraded(
			fmt.Sprintf("%d check(s) degraded", len(degraded)),
			map[string]any{
				"total":           len(checks),
				"degraded":        len(degraded),
				"healthy":         healthyCount,
				"degraded_checks": degraded,
			},
		)
	}

	return Healthy(fmt.Sprintf("all %d check(s) passed", len(checks)))
}
