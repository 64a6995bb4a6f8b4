package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func TestRun_AllHealthy(t *testing.T) {
	report := Run(context.Background(),
		Check{Name: "graph", Target: PingFunc(ok)},
		Check{Name: "katalogus", Target: PingFunc(ok)},
	)

	assert.True(t, report.Overall.IsHealthy())
	assert.Equal(t, "all 2 check(s) passed", report.Overall.Message)
	require.Len(t, report.Checks, 2)
	assert.Contains(t, report.Checks["graph"].Details, "latency_ms")
}

func TestRun_RequiredFailureIsUnhealthy(t *testing.T) {
	report := Run(context.Background(),
		Check{Name: "graph", Target: PingFunc(func(context.Context) error {
			return errors.New("connection refused")
		})},
		Check{Name: "katalogus", Target: PingFunc(ok)},
	)

	assert.True(t, report.Overall.IsUnhealthy())
	assert.Equal(t, []string{"graph: unreachable"}, report.Overall.Details["failed_checks"])
	assert.Equal(t, "connection refused", report.Checks["graph"].Details["error"])
	assert.True(t, report.Checks["katalogus"].IsHealthy())
}

func TestRun_OptionalFailureDegrades(t *testing.T) {
	report := Run(context.Background(),
		Check{Name: "graph", Target: PingFunc(ok)},
		Check{Name: "knowledge-cache", Optional: true, Target: PingFunc(func(context.Context) error {
			return errors.New("redis down")
		})},
	)

	assert.True(t, report.Overall.IsDegraded())
	assert.True(t, report.Checks["knowledge-cache"].IsDegraded())
}

func TestRun_Timeout(t *testing.T) {
	report := Run(context.Background(), Check{
		Name:    "objectstore",
		Timeout: 10 * time.Millisecond,
		Target: PingFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}),
	})

	assert.True(t, report.Overall.IsUnhealthy())
	assert.Equal(t, context.DeadlineExceeded.Error(), report.Checks["objectstore"].Details["error"])
}

func TestRun_MissingTarget(t *testing.T) {
	report := Run(context.Background(), Check{Name: "graph"})
	assert.True(t, report.Checks["graph"].IsUnhealthy())
	assert.Equal(t, "not configured", report.Checks["graph"].Message)
}

func TestFileCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "kb.yaml")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0o600))

	assert.True(t, FileCheck(file).IsHealthy())
	assert.True(t, FileCheck(dir).IsUnhealthy())
	assert.True(t, FileCheck(filepath.Join(dir, "missing.yaml")).IsUnhealthy())
	assert.True(t, FileCheck("").IsUnhealthy())
}

func TestCombine(t *testing.T) {
	tests := []struct {
		name   string
		checks []Status
		want   string
	}{
		{"empty", nil, StatusHealthy},
		{"healthy", []Status{Healthy("a"), Healthy("b")}, StatusHealthy},
		{"degraded", []Status{Healthy("a"), Degraded("b", nil)}, StatusDegraded},
		{"unhealthy wins", []Status{Degraded("a", nil), Unhealthy("b", nil), Healthy("c")}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Combine(tt.checks...).Status)
		})
	}

	got := Combine(Unhealthy("", nil))
	assert.Equal(t, []string{"unnamed check"}, got.Details["failed_checks"])
}
