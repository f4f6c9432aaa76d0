package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// HealthService provides liveness and readiness checks for the web
// server.
type HealthService struct {
	version   string
	startTime time.Time
	analytics *AnalyticsService
	logger    *slog.Logger
}

// HealthStatus is the health check payload.
type HealthStatus struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	Uptime        string    `json:"uptime"`
	Goroutines    int       `json:"goroutines"`
	DatasetLoaded bool      `json:"dataset_loaded"`
	DatasetAge    string    `json:"dataset_age,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`
}

// NewHealthService creates a health service bound to the analytics
// service whose snapshot readiness it reports.
func NewHealthService(version string, analytics *AnalyticsService, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		startTime: time.Now(),
		analytics: analytics,
		logger:    logger,
	}
}

// HealthCheck reports liveness. The process is healthy as long as it can
// answer; snapshot state is informational here.
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := hs.baseStatus()
	status.Status = "healthy"
	return status
}

// ReadinessCheck reports whether the service can serve analytics reads.
// Not ready until the first snapshot has been derived.
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := hs.baseStatus()
	if status.DatasetLoaded {
		status.Status = "ready"
	} else {
		status.Status = "not_ready"
		hs.logger.DebugContext(ctx, "readiness check failed: no snapshot loaded")
	}
	return status
}

func (hs *HealthService) baseStatus() HealthStatus {
	now := time.Now()
	status := HealthStatus{
		Version:    hs.version,
		Uptime:     now.Sub(hs.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
		CheckedAt:  now,
	}

	if hs.analytics != nil {
		if loadedAt := hs.analytics.LoadedAt(); !loadedAt.IsZero() {
			status.DatasetLoaded = true
			status.DatasetAge = now.Sub(loadedAt).Round(time.Second).String()
		}
	}
	return status
}
