package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climbingpill/internal/assessment"
	"climbingpill/internal/dataprocessing"
	"climbingpill/internal/engagement"
)

type stubLoader struct {
	tables *RawTables
	err    error
}

func (l *stubLoader) Load(ctx context.Context) (*RawTables, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.tables, nil
}

func (l *stubLoader) Name() string { return "stub" }

func fixtureTables() *RawTables {
	return &RawTables{
		Users: dataprocessing.RowsFromValues([][]string{
			{"Email", "First Name", "Last Name"},
			{"alex@example.com", "Alex", "Honnold"},
			{"blair@example.com", "Blair", "Lee"},
		}),
		Trainings: [][]dataprocessing.Row{
			dataprocessing.RowsFromValues([][]string{
				{"Email", "Date", "Where", "Done"},
				{"alex@example.com", "2024-04-10", "GymX", "true"},
				{"alex@example.com", "2024-03-20", "GymX", "true"},
				{"alex@example.com", "2024-02-15", "GymY", "false"},
			}),
			dataprocessing.RowsFromValues([][]string{
				{"Email", "Date", "Where", "Done"},
				{"blair@example.com", "2024-01-05", "GymY", "true"},
			}),
		},
		Assessments: dataprocessing.RowsFromValues([][]string{
			{"Email", "Date", "Added Weight", "Body Weight", "Height", "Pull Ups", "Push Ups", "Toe To Bar", "Leg Spread"},
			{"alex@example.com", "2024-04-01", "20", "70", "175", "15", "30", "10", "150"},
			{"blair@example.com", "2024-03-01", "0", "65", "168", "5", "12", "4", "120"},
		}),
		Coaches: dataprocessing.RowsFromValues([][]string{
			{"Email", "First Name", "Last Name", "Specialties", "Athletes"},
			{"coach@example.com", "Casey", "Gray", "finger strength; power", "alex@example.com, blair@example.com, ghost@example.com"},
		}),
		Plans: dataprocessing.RowsFromValues([][]string{
			{"Email", "Start Date", "End Date", "Type", "Status"},
			{"alex@example.com", "2024-04-01", "2024-04-29", "strength", "active"},
		}),
	}
}

func newTestService(t *testing.T, loader SourceLoader) *AnalyticsService {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	scorer, err := assessment.NewScorer(assessment.DefaultWeights(), logger)
	require.NoError(t, err)

	parser := dataprocessing.NewParser(scorer, logger)
	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig()).
		WithClock(func() time.Time { return time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC) })

	return NewAnalyticsService(loader, parser, summarizer, logger)
}

func TestAnalyticsServiceNotLoaded(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})

	_, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = svc.UserSummary(context.Background(), "alex@example.com")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestAnalyticsServiceRefreshAndOverview(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, overview.TotalUsers)
	assert.Equal(t, 4, overview.TotalSessions)
	assert.Equal(t, 2, overview.TotalAssessments)
	assert.Equal(t, 1, overview.TotalCoaches)
	assert.Equal(t, "stub", overview.Source)
	assert.False(t, overview.LoadedAt.IsZero())

	total := 0
	for _, n := range overview.ChurnBreakdown {
		total += n
	}
	assert.Equal(t, 2, total)
}

func TestAnalyticsServiceRefreshFailureKeepsSnapshot(t *testing.T) {
	loader := &stubLoader{tables: fixtureTables()}
	svc := newTestService(t, loader)
	require.NoError(t, svc.Refresh(context.Background()))

	loader.err = errors.New("source gone")
	require.Error(t, svc.Refresh(context.Background()))

	// Previous snapshot still serves reads.
	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, overview.TotalUsers)
}

func TestAnalyticsServiceUserSummary(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	// Lookup is canonicalized.
	sum, err := svc.UserSummary(context.Background(), "  Alex@Example.COM ")
	require.NoError(t, err)

	assert.Equal(t, "alex@example.com", sum.Email)
	assert.Equal(t, "Alex Honnold", sum.Name)
	assert.Equal(t, 3, sum.TotalSessions)
	assert.Equal(t, "2024-04-10", sum.LastTrainingDate)
	// Trained 5 days ago but only 3 sessions in the rolling window.
	assert.Equal(t, engagement.RiskMedium, sum.ChurnRisk.Level)
	assert.NotEmpty(t, sum.CurrentGrade)

	_, err = svc.UserSummary(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAnalyticsServiceUserSummariesRiskFilter(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	all, err := svc.UserSummaries(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "alex@example.com", all[0].Email)
	assert.Equal(t, "blair@example.com", all[1].Email)

	// Blair last trained in January: idle for months.
	high, err := svc.UserSummaries(context.Background(), "high")
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, "blair@example.com", high[0].Email)
}

func TestAnalyticsServiceScopedAnalytics(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	report, err := svc.ScopedAnalytics(context.Background(), ScopedQuery{
		Emails: []string{"alex@example.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.VisibleUsers)
	require.Len(t, report.Summaries, 1)
	assert.Equal(t, "alex@example.com", report.Summaries[0].Email)

	// Blair's January session at GymY is outside the scope.
	require.Len(t, report.Activity.MonthlySessions, 3)
	assert.Equal(t, "2024-02", report.Activity.MonthlySessions[0].Month)
	require.Len(t, report.Activity.TopLocations, 2)
	assert.Equal(t, "GymX", report.Activity.TopLocations[0].Location)
	assert.Equal(t, 2, report.Activity.TopLocations[0].Sessions)

	// Risk filtering applies within the scope.
	scoped, err := svc.ScopedAnalytics(context.Background(), ScopedQuery{
		Emails: []string{"alex@example.com", "blair@example.com"},
		Risk:   "high",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, scoped.VisibleUsers)
	require.Len(t, scoped.Summaries, 1)
	assert.Equal(t, "blair@example.com", scoped.Summaries[0].Email)
}

func TestAnalyticsServiceScopedAnalyticsNotLoaded(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})

	_, err := svc.ScopedAnalytics(context.Background(), ScopedQuery{})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestChurnLevelCounts(t *testing.T) {
	summaries := []dataprocessing.UserMetricsSummary{
		{ChurnRisk: engagement.ChurnRisk{Level: engagement.RiskLow}},
		{ChurnRisk: engagement.ChurnRisk{Level: engagement.RiskLow}},
		{ChurnRisk: engagement.ChurnRisk{Level: engagement.RiskHigh}},
	}

	counts := churnLevelCounts(summaries)
	assert.Equal(t, map[string]int{"low": 2, "high": 1}, counts)
	assert.Empty(t, churnLevelCounts(nil))
}

func TestAnalyticsServiceTopLocations(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	locations, err := svc.TopLocations(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, locations, 2)

	// Tied at two sessions each; name breaks the tie.
	limited, err := svc.TopLocations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "GymX", limited[0].Location)
	assert.Equal(t, 2, limited[0].Sessions)
}

func TestAnalyticsServiceUserCohort(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	report, err := svc.UserCohort(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alex@example.com", report.Email)
	assert.NotEmpty(t, report.Grade)
	assert.Len(t, report.Percentiles, len(assessment.Metrics()))

	_, err = svc.UserCohort(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAnalyticsServiceCoachRoster(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	roster, err := svc.CoachRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 1)

	entry := roster[0]
	assert.Equal(t, "coach@example.com", entry.Coach.Email)
	assert.Len(t, entry.Athletes, 2)
	assert.Equal(t, 1, entry.Unresolved)
}

func TestAnalyticsServiceGrowthAndEngagement(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	require.NoError(t, svc.Refresh(context.Background()))

	growth, err := svc.Growth(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, growth)

	engagementSeries, err := svc.Engagement(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, engagementSeries)

	utilization, err := svc.Utilization(context.Background())
	require.NoError(t, err)
	require.Len(t, utilization, 2)

	var share float64
	for _, u := range utilization {
		share += u.UtilizationRate
	}
	assert.InDelta(t, 100.0, share, 0.001)
}

func TestHealthServiceReadiness(t *testing.T) {
	svc := newTestService(t, &stubLoader{tables: fixtureTables()})
	hs := NewHealthService("test", svc, slog.New(slog.NewTextHandler(io.Discard, nil)))

	status := hs.ReadinessCheck(context.Background())
	assert.Equal(t, "not_ready", status.Status)
	assert.False(t, status.DatasetLoaded)

	require.NoError(t, svc.Refresh(context.Background()))

	status = hs.ReadinessCheck(context.Background())
	assert.Equal(t, "ready", status.Status)
	assert.True(t, status.DatasetLoaded)

	live := hs.HealthCheck(context.Background())
	assert.Equal(t, "healthy", live.Status)
	assert.Equal(t, "test", live.Version)
}
