package dataprocessing

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"climbingpill/internal/assessment"
	"climbingpill/internal/engagement"
	"climbingpill/pkg/contracts/domain"
)

// UserMetricsSummary is the derived per-user analytics record consumed by
// presentation layers. Transient: rebuilt in full on every derivation.
type UserMetricsSummary struct {
	Email                 string                        `json:"email"`
	Name                  string                        `json:"name"`
	CurrentGrade          assessment.Grade              `json:"current_grade,omitempty"`
	TotalSessions         int                           `json:"total_sessions"`
	MonthlyTrainingCounts []MonthSessions               `json:"monthly_training_counts,omitempty"`
	LastTrainingDate      string                        `json:"last_training_date,omitempty"`
	AdherenceRate         float64                       `json:"adherence_rate"`
	ProgressRate          float64                       `json:"progress_rate"`
	ChurnRisk             engagement.ChurnRisk          `json:"churn_risk"`
	CohortPercentiles     map[assessment.Metric]int     `json:"cohort_percentiles,omitempty"`
	CohortStats           map[assessment.Metric]assessment.CohortStats `json:"cohort_stats,omitempty"`
	ScorePercentile       int                           `json:"score_percentile"`
	Plans                 engagement.PlanMetrics        `json:"plans"`
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	DateFormat    string // format for date strings in output
	IncludeCohort bool   // include cohort stats and percentiles
}

// DefaultSummarizerConfig returns the configuration used by the dashboards.
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		DateFormat:    "2006-01-02",
		IncludeCohort: true,
	}
}

// Summarizer derives UserMetricsSummary records from a dataset. The clock
// is injectable so the recency-sensitive metrics are testable.
type Summarizer struct {
	logger *slog.Logger
	config SummarizerConfig
	now    func() time.Time
}

// NewSummarizer creates a summarizer with the given configuration.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.DateFormat == "" {
		config.DateFormat = "2006-01-02"
	}
	return &Summarizer{
		logger: logger,
		config: config,
		now:    time.Now,
	}
}

// WithClock overrides the wall clock. Test hook.
func (s *Summarizer) WithClock(now func() time.Time) *Summarizer {
	s.now = now
	return s
}

// SummarizeUser derives the full metrics summary for one user from the
// dataset. Pure with respect to the dataset: only reads, fresh output.
func (s *Summarizer) SummarizeUser(ctx context.Context, d *Dataset, email string) UserMetricsSummary {
	email = domain.CanonicalEmail(email)
	now := s.now()

	trainings := d.TrainingsFor(email)
	assessments := d.AssessmentsFor(email)

	summary := UserMetricsSummary{
		Email:         email,
		TotalSessions: len(trainings),
	}
	if user, ok := d.UserByEmail(email); ok {
		summary.Name = user.FullName()
	} else {
		summary.Name = email
	}

	summary.MonthlyTrainingCounts = AggregateActivity(trainings).MonthlySessions
	if len(trainings) > 0 && trainings[0].HasDate() {
		summary.LastTrainingDate = trainings[0].Date.Format(s.config.DateFormat)
	}

	summary.AdherenceRate = engagement.RollingAdherence(trainings, now)
	summary.ProgressRate = engagement.ProgressRate(scoresDesc(assessments))
	summary.ChurnRisk = engagement.ClassifyChurn(trainings, summary.AdherenceRate, summary.ProgressRate, now)
	summary.Plans = engagement.AnalyzePlans(d.PlansFor(email), trainings, assessments, now)

	if current, ok := d.CurrentAssessment(email); ok {
		summary.CurrentGrade = current.Grade
		if s.config.IncludeCohort {
			s.attachCohort(&summary, current, d.Assessments)
		}
	}

	s.logger.DebugContext(ctx, "summarized user",
		slog.String("email", email),
		slog.String("grade", string(summary.CurrentGrade)),
		slog.String("churn_risk", string(summary.ChurnRisk.Level)))

	return summary
}

// SummarizeAll derives summaries for every known user, sorted by email for
// deterministic output.
func (s *Summarizer) SummarizeAll(ctx context.Context, d *Dataset) []UserMetricsSummary {
	summaries := make([]UserMetricsSummary, 0, len(d.Users))
	for _, u := range d.Users {
		summaries = append(summaries, s.SummarizeUser(ctx, d, u.Email))
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Email < summaries[j].Email
	})
	return summaries
}

// attachCohort computes the grade-matched cohort comparison for the user's
// current assessment. Rebuilt per call: cohort membership shifts whenever
// the assessment set changes, so nothing is cached.
func (s *Summarizer) attachCohort(summary *UserMetricsSummary, current assessment.Assessment, all []assessment.Assessment) {
	cohort := assessment.NewCohort(current, all)

	summary.CohortPercentiles = make(map[assessment.Metric]int, 5)
	summary.CohortStats = make(map[assessment.Metric]assessment.CohortStats, 5)
	for _, m := range assessment.Metrics() {
		summary.CohortPercentiles[m] = cohort.Percentile(m, current.Metrics.Value(m))
		summary.CohortStats[m] = cohort.Stats(m)
	}
	summary.ScorePercentile = cohort.ScorePercentile(current.CompositeScore)
}

// scoresDesc extracts composite scores from an assessment history that is
// already sorted most recent first.
func scoresDesc(assessments []assessment.Assessment) []float64 {
	scores := make([]float64, 0, len(assessments))
	for _, a := range assessments {
		scores = append(scores, a.CompositeScore)
	}
	return scores
}
