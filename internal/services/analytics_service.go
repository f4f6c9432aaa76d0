package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"climbingpill/internal/assessment"
	"climbingpill/internal/dataprocessing"
	"climbingpill/internal/engagement"
	"climbingpill/internal/infrastructure"
	"climbingpill/pkg/contracts/domain"
)

// summaryWorkers bounds the per-user summary fan-out during a refresh.
const summaryWorkers = 8

// Snapshot is one immutable derivation of the full analytics state. A
// refresh builds a complete new snapshot and swaps it in atomically;
// readers never observe partially derived data.
type Snapshot struct {
	Dataset     *dataprocessing.Dataset
	Activity    dataprocessing.ActivitySummary
	Growth      []dataprocessing.GrowthPoint
	Engagement  []dataprocessing.EngagementPoint
	Utilization []dataprocessing.LocationUtilization
	Summaries   []dataprocessing.UserMetricsSummary

	summariesByEmail map[string]dataprocessing.UserMetricsSummary
	LoadedAt         time.Time
	Source           string
}

// Overview is the top-level analytics payload.
type Overview struct {
	TotalUsers         int                     `json:"total_users"`
	TotalSessions      int                     `json:"total_sessions"`
	TotalAssessments   int                     `json:"total_assessments"`
	TotalCoaches       int                     `json:"total_coaches"`
	AvgSessionsPerUser float64                 `json:"avg_sessions_per_user"`
	ChurnBreakdown     map[engagement.RiskLevel]int `json:"churn_breakdown"`
	Source             string                  `json:"source"`
	LoadedAt           time.Time               `json:"loaded_at"`
}

// CohortReport compares one user's current assessment against the
// grade-matched cohort.
type CohortReport struct {
	Email           string                                       `json:"email"`
	Grade           assessment.Grade                             `json:"grade"`
	CohortSize      int                                          `json:"cohort_size"`
	Percentiles     map[assessment.Metric]int                    `json:"percentiles"`
	Stats           map[assessment.Metric]assessment.CohortStats `json:"stats"`
	ScorePercentile int                                          `json:"score_percentile"`
}

// CoachRosterEntry pairs a coach with the summaries of the athletes the
// roster could resolve.
type CoachRosterEntry struct {
	Coach      domain.Coach                         `json:"coach"`
	Athletes   []dataprocessing.UserMetricsSummary  `json:"athletes"`
	Unresolved int                                  `json:"unresolved"`
}

// AnalyticsService owns the analytics snapshot lifecycle: loading raw
// rows from the configured source, deriving all metrics, and serving
// reads.
type AnalyticsService struct {
	loader     SourceLoader
	parser     *dataprocessing.Parser
	summarizer *dataprocessing.Summarizer
	logger     *slog.Logger
	metrics    *infrastructure.AnalyticsMetrics

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewAnalyticsService creates the analytics service.
func NewAnalyticsService(loader SourceLoader, parser *dataprocessing.Parser, summarizer *dataprocessing.Summarizer, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyticsService{
		loader:     loader,
		parser:     parser,
		summarizer: summarizer,
		logger:     logger,
	}
}

// WithMetrics attaches the observability instruments. Optional.
func (s *AnalyticsService) WithMetrics(metrics *infrastructure.AnalyticsMetrics) *AnalyticsService {
	s.metrics = metrics
	return s
}

// Refresh loads every entity table from the source and derives a new
// snapshot. On failure the previous snapshot stays in place.
func (s *AnalyticsService) Refresh(ctx context.Context) error {
	start := time.Now()

	tables, err := s.loader.Load(ctx)
	if err != nil {
		infrastructure.RecordRefreshMetrics(ctx, s.metrics, s.loader.Name(), 0, time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "source load failed",
			slog.String("source", s.loader.Name()),
			slog.String("error", err.Error()))
		return fmt.Errorf("load source: %w", err)
	}

	users := s.parser.Users(tables.Users)
	trainings := s.parser.Trainings(tables.Trainings...)
	assessments := s.parser.Assessments(tables.Assessments)
	coaches := s.parser.Coaches(tables.Coaches)
	plans := s.parser.Plans(tables.Plans)

	dataset := dataprocessing.NewDataset(users, trainings, assessments, coaches, plans)
	activity := dataprocessing.AggregateActivity(trainings)

	summaries, err := s.summarizeConcurrently(ctx, dataset)
	if err != nil {
		infrastructure.RecordRefreshMetrics(ctx, s.metrics, s.loader.Name(), int64(tables.RowCount()), time.Since(start), err)
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("summarize users: %w", err)
	}

	engagementSeries := dataprocessing.EngagementSeries(activity)

	snap := &Snapshot{
		Dataset:          dataset,
		Activity:         activity,
		Growth:           dataprocessing.GrowthTrends(activity),
		Engagement:       engagementSeries,
		Utilization:      dataprocessing.UtilizationRates(activity.TopLocations),
		Summaries:        summaries,
		summariesByEmail: make(map[string]dataprocessing.UserMetricsSummary, len(summaries)),
		LoadedAt:         time.Now(),
		Source:           s.loader.Name(),
	}
	for _, sum := range summaries {
		snap.summariesByEmail[sum.Email] = sum
	}

	s.mu.Lock()
	previous := s.snapshot
	s.snapshot = snap
	s.mu.Unlock()

	var previousChurn map[string]int
	if previous != nil {
		previousChurn = churnLevelCounts(previous.Summaries)
	}
	infrastructure.RecordChurnRiskUsers(ctx, s.metrics, previousChurn, churnLevelCounts(summaries))

	infrastructure.RecordRefreshMetrics(ctx, s.metrics, s.loader.Name(), int64(tables.RowCount()), time.Since(start), nil)
	infrastructure.AddSpanEvent(ctx, "snapshot.swapped", map[string]interface{}{
		"source":    s.loader.Name(),
		"users":     len(users),
		"summaries": len(summaries),
	})
	s.logger.InfoContext(ctx, "analytics snapshot refreshed",
		slog.String("source", s.loader.Name()),
		slog.Int("users", len(users)),
		slog.Int("trainings", len(trainings)),
		slog.Int("assessments", len(assessments)),
		slog.Int("summaries", len(summaries)),
		slog.Duration("duration", time.Since(start)))

	return nil
}

// summarizeConcurrently fans the per-user summary derivation across a
// bounded worker group. Summaries are pure per-user computations over the
// immutable dataset, so they parallelize without coordination.
func (s *AnalyticsService) summarizeConcurrently(ctx context.Context, dataset *dataprocessing.Dataset) ([]dataprocessing.UserMetricsSummary, error) {
	summaries := make([]dataprocessing.UserMetricsSummary, len(dataset.Users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(summaryWorkers)

	for i, u := range dataset.Users {
		i, email := i, u.Email
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			summaries[i] = s.summarizer.SummarizeUser(gctx, dataset, email)
			infrastructure.RecordSummaryMetrics(gctx, s.metrics, string(summaries[i].ChurnRisk.Level), time.Since(start))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Email < summaries[j].Email
	})
	return summaries, nil
}

// churnLevelCounts counts summaries per churn risk level, keyed by the
// level's wire name.
func churnLevelCounts(summaries []dataprocessing.UserMetricsSummary) map[string]int {
	counts := make(map[string]int, 3)
	for _, sum := range summaries {
		counts[string(sum.ChurnRisk.Level)]++
	}
	return counts
}

// current returns the active snapshot or ErrNotLoaded.
func (s *AnalyticsService) current() (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return nil, ErrNotLoaded
	}
	return s.snapshot, nil
}

// Overview returns the top-level analytics payload.
func (s *AnalyticsService) Overview(ctx context.Context) (Overview, error) {
	snap, err := s.current()
	if err != nil {
		return Overview{}, err
	}

	breakdown := map[engagement.RiskLevel]int{
		engagement.RiskLow:    0,
		engagement.RiskMedium: 0,
		engagement.RiskHigh:   0,
	}
	for _, sum := range snap.Summaries {
		breakdown[sum.ChurnRisk.Level]++
	}

	return Overview{
		TotalUsers:         len(snap.Dataset.Users),
		TotalSessions:      len(snap.Dataset.Trainings),
		TotalAssessments:   len(snap.Dataset.Assessments),
		TotalCoaches:       len(snap.Dataset.Coaches),
		AvgSessionsPerUser: dataprocessing.AverageSessionsPerUser(snap.Engagement),
		ChurnBreakdown:     breakdown,
		Source:             snap.Source,
		LoadedAt:           snap.LoadedAt,
	}, nil
}

// MonthlyActivity returns sessions and active users per month bucket.
func (s *AnalyticsService) MonthlyActivity(ctx context.Context) (dataprocessing.ActivitySummary, error) {
	snap, err := s.current()
	if err != nil {
		return dataprocessing.ActivitySummary{}, err
	}
	return snap.Activity, nil
}

// TopLocations returns the busiest training locations, capped at limit.
func (s *AnalyticsService) TopLocations(ctx context.Context, limit int) ([]dataprocessing.LocationSessions, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	locations := snap.Activity.TopLocations
	if limit > 0 && limit < len(locations) {
		locations = locations[:limit]
	}
	return locations, nil
}

// Growth returns the month-over-month growth trend series.
func (s *AnalyticsService) Growth(ctx context.Context) ([]dataprocessing.GrowthPoint, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.Growth, nil
}

// Engagement returns the sessions-per-user engagement series.
func (s *AnalyticsService) Engagement(ctx context.Context) ([]dataprocessing.EngagementPoint, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.Engagement, nil
}

// Utilization returns location utilization shares.
func (s *AnalyticsService) Utilization(ctx context.Context) ([]dataprocessing.LocationUtilization, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	return snap.Utilization, nil
}

// UserSummaries returns all per-user summaries, optionally filtered by
// churn risk level.
func (s *AnalyticsService) UserSummaries(ctx context.Context, risk string) ([]dataprocessing.UserMetricsSummary, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}
	if risk == "" {
		return snap.Summaries, nil
	}

	filtered := make([]dataprocessing.UserMetricsSummary, 0, len(snap.Summaries))
	for _, sum := range snap.Summaries {
		if string(sum.ChurnRisk.Level) == risk {
			filtered = append(filtered, sum)
		}
	}
	return filtered, nil
}

// ScopedQuery restricts an analytics read to the users visible to the
// caller. An empty email list means the full population.
type ScopedQuery struct {
	Emails []string `json:"emails" validate:"omitempty,dive,email"`
	Risk   string   `json:"risk" validate:"omitempty,oneof=low medium high"`
}

// ScopedReport is a full re-derivation over the visible subset. Cohort
// percentiles inside the summaries are relative to the scoped
// population, not the full snapshot.
type ScopedReport struct {
	VisibleUsers int                                 `json:"visible_users"`
	Activity     dataprocessing.ActivitySummary      `json:"activity"`
	Summaries    []dataprocessing.UserMetricsSummary `json:"summaries"`
}

// ScopedAnalytics re-derives activity and per-user summaries over the
// subset of users named in the query.
func (s *AnalyticsService) ScopedAnalytics(ctx context.Context, query ScopedQuery) (ScopedReport, error) {
	snap, err := s.current()
	if err != nil {
		return ScopedReport{}, err
	}

	scoped := snap.Dataset.Scoped(query.Emails)
	summaries, err := s.summarizeConcurrently(ctx, scoped)
	if err != nil {
		return ScopedReport{}, err
	}

	if query.Risk != "" {
		filtered := make([]dataprocessing.UserMetricsSummary, 0, len(summaries))
		for _, sum := range summaries {
			if string(sum.ChurnRisk.Level) == query.Risk {
				filtered = append(filtered, sum)
			}
		}
		summaries = filtered
	}

	return ScopedReport{
		VisibleUsers: len(scoped.Users),
		Activity:     dataprocessing.AggregateActivity(scoped.Trainings),
		Summaries:    summaries,
	}, nil
}

// UserSummary returns the derived summary for one user.
func (s *AnalyticsService) UserSummary(ctx context.Context, email string) (dataprocessing.UserMetricsSummary, error) {
	snap, err := s.current()
	if err != nil {
		return dataprocessing.UserMetricsSummary{}, err
	}

	sum, ok := snap.summariesByEmail[domain.CanonicalEmail(email)]
	if !ok {
		return dataprocessing.UserMetricsSummary{}, ErrUserNotFound
	}
	return sum, nil
}

// UserCohort compares one user's current assessment against the
// grade-matched peer cohort.
func (s *AnalyticsService) UserCohort(ctx context.Context, email string) (CohortReport, error) {
	snap, err := s.current()
	if err != nil {
		return CohortReport{}, err
	}

	email = domain.CanonicalEmail(email)
	current, ok := snap.Dataset.CurrentAssessment(email)
	if !ok {
		return CohortReport{}, ErrUserNotFound
	}

	cohort := assessment.NewCohort(current, snap.Dataset.Assessments)
	report := CohortReport{
		Email:           email,
		Grade:           current.Grade,
		Percentiles:     make(map[assessment.Metric]int),
		Stats:           make(map[assessment.Metric]assessment.CohortStats),
		ScorePercentile: cohort.ScorePercentile(current.CompositeScore),
	}

	for _, metric := range assessment.Metrics() {
		stats := cohort.Stats(metric)
		report.Stats[metric] = stats
		report.Percentiles[metric] = cohort.Percentile(metric, current.Metrics.Value(metric))
		if stats.Count > report.CohortSize {
			report.CohortSize = stats.Count
		}
	}

	return report, nil
}

// CoachRoster resolves every coach's athlete list against the summaries.
func (s *AnalyticsService) CoachRoster(ctx context.Context) ([]CoachRosterEntry, error) {
	snap, err := s.current()
	if err != nil {
		return nil, err
	}

	roster := make([]CoachRosterEntry, 0, len(snap.Dataset.Coaches))
	for _, coach := range snap.Dataset.Coaches {
		resolved, unresolved := snap.Dataset.ResolveAthletes(coach)

		entry := CoachRosterEntry{
			Coach:      coach,
			Unresolved: unresolved,
			Athletes:   make([]dataprocessing.UserMetricsSummary, 0, len(resolved)),
		}
		for _, athlete := range resolved {
			if sum, ok := snap.summariesByEmail[domain.CanonicalEmail(athlete.Email)]; ok {
				entry.Athletes = append(entry.Athletes, sum)
			}
		}
		roster = append(roster, entry)
	}

	return roster, nil
}

// LoadedAt reports when the current snapshot was derived. Zero when no
// snapshot is loaded.
func (s *AnalyticsService) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot == nil {
		return time.Time{}
	}
	return s.snapshot.LoadedAt
}
