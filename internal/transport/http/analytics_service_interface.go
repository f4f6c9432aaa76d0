package http

import (
	"context"

	"climbingpill/internal/dataprocessing"
	"climbingpill/internal/services"
)

// AnalyticsServiceInterface defines the analytics operations the handlers
// depend on. Satisfied by *services.AnalyticsService; mocked in tests.
type AnalyticsServiceInterface interface {
	Refresh(ctx context.Context) error
	Overview(ctx context.Context) (services.Overview, error)
	MonthlyActivity(ctx context.Context) (dataprocessing.ActivitySummary, error)
	TopLocations(ctx context.Context, limit int) ([]dataprocessing.LocationSessions, error)
	Growth(ctx context.Context) ([]dataprocessing.GrowthPoint, error)
	Engagement(ctx context.Context) ([]dataprocessing.EngagementPoint, error)
	Utilization(ctx context.Context) ([]dataprocessing.LocationUtilization, error)
	UserSummaries(ctx context.Context, risk string) ([]dataprocessing.UserMetricsSummary, error)
	ScopedAnalytics(ctx context.Context, query services.ScopedQuery) (services.ScopedReport, error)
	UserSummary(ctx context.Context, email string) (dataprocessing.UserMetricsSummary, error)
	UserCohort(ctx context.Context, email string) (services.CohortReport, error)
	CoachRoster(ctx context.Context) ([]services.CoachRosterEntry, error)
}
