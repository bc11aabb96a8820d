package newsrec

import (
	"context"

	healthuc "github.com/kailas-cloud/newsrec/internal/usecase/health"
)

// HealthStatus is the outcome of Client.Health.
type HealthStatus struct {
	Status string            // "ok" or "degraded"
	Checks map[string]string // "database": ok|error, "engine": ok|pending
}

// Health pings the store and reports whether the engine snapshot is built.
//
// The engine check is "pending" until the first query or Rebuild loads the
// corpus. Queries still work while it is pending: the first one pays for the
// build. Status stays "ok" in that case, so a fresh client is not reported as
// degraded. Call Rebuild at startup to move the engine to "ok" ahead of traffic.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// healthUseCase is the internal interface for health checks.
type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
