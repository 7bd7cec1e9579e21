// Package monitoring evaluates readiness probes for the HTTP health endpoint.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultProbeTimeout = 2 * time.Second

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// HealthReport aggregates probe results. Status is the worst of its checks.
type HealthReport struct {
	Success bool          `json:"success"`
	Status  ProbeStatus   `json:"status"`
	Checks  []ProbeResult `json:"checks"`
}

// Check is a named dependency probe. Run returns nil when the dependency answers.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// HealthManager runs readiness checks concurrently, each under its own timeout.
type HealthManager struct {
	checks  []Check
	timeout time.Duration
}

// NewHealthManager constructs a manager; a non-positive timeout uses 2s.
func NewHealthManager(timeout time.Duration, checks ...Check) *HealthManager {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	m := &HealthManager{timeout: timeout}
	for _, check := range checks {
		m.Register(check)
	}
	return m
}

// Register appends a readiness check. Unnamed checks are ignored.
func (m *HealthManager) Register(check Check) {
	if check.Name == "" || check.Run == nil {
		return
	}
	m.checks = append(m.checks, check)
}

// EvaluateReadiness executes every registered check and folds the results.
func (m *HealthManager) EvaluateReadiness(ctx context.Context) HealthReport {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]ProbeResult, len(m.checks))
	var g errgroup.Group
	for i, check := range m.checks {
		g.Go(func() error {
			results[i] = m.run(ctx, check)
			return nil
		})
	}
	_ = g.Wait()

	report := HealthReport{Success: true, Status: StatusUp, Checks: results}
	for _, r := range results {
		switch r.Status {
		case StatusDown:
			report.Success = false
			report.Status = StatusDown
		case StatusDegraded:
			report.Success = false
			if report.Status != StatusDown {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func (m *HealthManager) run(ctx context.Context, check Check) (result ProbeResult) {
	start := time.Now()
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			result = ResultFromError(check.Name, fmt.Errorf("panic: %v", rec), time.Since(start))
		}
	}()

	return ResultFromError(check.Name, check.Run(probeCtx), time.Since(start))
}

// ResultFromError converts a probe error into a ProbeResult. Timeouts count
// as degraded rather than down.
func ResultFromError(component string, err error, duration time.Duration) ProbeResult {
	if duration < 0 {
		duration = 0
	}
	if err == nil {
		return ProbeResult{Component: component, Status: StatusUp, Duration: duration}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return ProbeResult{Component: component, Status: status, Details: err.Error(), Duration: duration}
}
