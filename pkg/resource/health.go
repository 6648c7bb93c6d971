// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"
)

// HealthCheck reports the manager's resource usage to a health checker.
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck creates a health check for manager.
func NewHealthCheck(manager *Manager) *HealthCheck {
	return &HealthCheck{manager: manager}
}

// Name returns the name of this health check.
func (h *HealthCheck) Name() string {
	return "resource"
}

// Check fails on excess memory, on 80% of the task slots in use, or after
// a task has failed.
func (h *HealthCheck) Check(ctx context.Context) error {
	stats := h.manager.Stats()

	if stats.MemoryUsageMB > stats.MaxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB",
			stats.MemoryUsageMB, stats.MaxMemoryMB)
	}

	threshold := int64(float64(stats.MaxTasks) * 0.8)
	if stats.TaskCount > threshold {
		return fmt.Errorf("task count %d exceeds 80%% threshold (%d/%d)",
			stats.TaskCount, threshold, stats.MaxTasks)
	}

	if err := h.manager.Err(); err != nil {
		return err
	}
	return nil
}
