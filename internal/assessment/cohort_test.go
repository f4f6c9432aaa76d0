package assessment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAssessment(email string, grade Grade, finger float64) Assessment {
	return Assessment{
		Email: email,
		Date:  time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Grade: grade,
		Metrics: NormalizedMetrics{
			FingerStrength: finger,
			PullUps:        finger / 2,
			PushUps:        finger / 3,
			ToeToBar:       finger / 4,
			LegSpread:      finger / 2,
		},
		CompositeScore: finger * 0.7,
	}
}

func TestNewCohortMembership(t *testing.T) {
	target := makeAssessment("target@example.com", GradeV6, 0.9)

	peers := []Assessment{
		makeAssessment("a@example.com", GradeV6, 0.8),
		makeAssessment("b@example.com", GradeV6, 1.0),
		makeAssessment("TARGET@example.com", GradeV6, 1.2), // same user, case-insensitive
		makeAssessment("c@example.com", GradeV8, 1.4),      // different grade
		{Email: "d@example.com", Grade: GradeV6},           // no date
	}

	cohort := NewCohort(target, peers)
	stats := cohort.Stats(MetricFingerStrength)

	assert.Equal(t, GradeV6, cohort.Grade())
	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 0.9, stats.Average, 1e-9)
	assert.InDelta(t, 1.0, stats.Max, 1e-9)
}

func TestCohortEmpty(t *testing.T) {
	target := makeAssessment("target@example.com", GradeV6, 0.9)
	cohort := NewCohort(target, nil)

	for _, m := range Metrics() {
		stats := cohort.Stats(m)
		assert.Equal(t, 0, stats.Count)
		assert.Zero(t, stats.Average)
		assert.Zero(t, stats.Median)
		assert.Zero(t, stats.Max)

		for _, v := range []float64{0, 0.5, 1.0, 100} {
			assert.Equal(t, 0, cohort.Percentile(m, v))
		}
	}
	assert.Equal(t, 0, cohort.ScorePercentile(1.0))
}

func TestCohortMedianUpperMiddle(t *testing.T) {
	target := makeAssessment("target@example.com", GradeV6, 0.9)
	peers := []Assessment{
		makeAssessment("a@example.com", GradeV6, 0.4),
		makeAssessment("b@example.com", GradeV6, 0.6),
		makeAssessment("c@example.com", GradeV6, 0.8),
		makeAssessment("d@example.com", GradeV6, 1.0),
	}

	cohort := NewCohort(target, peers)
	stats := cohort.Stats(MetricFingerStrength)

	// Even-length cohorts take the upper-middle element, not an
	// interpolated midpoint.
	require.Equal(t, 4, stats.Count)
	assert.InDelta(t, 0.8, stats.Median, 1e-9)
}

func TestCohortPercentile(t *testing.T) {
	target := makeAssessment("target@example.com", GradeV6, 0.9)
	peers := []Assessment{
		makeAssessment("a@example.com", GradeV6, 0.5),
		makeAssessment("b@example.com", GradeV6, 0.7),
		makeAssessment("c@example.com", GradeV6, 0.9),
		makeAssessment("d@example.com", GradeV6, 1.1),
	}
	cohort := NewCohort(target, peers)

	tests := []struct {
		value    float64
		expected int
	}{
		{0, 0},      // non-positive values rank at zero
		{-1, 0},
		{0.4, 0},    // below everyone
		{0.5, 25},   // ties count as at-or-below
		{0.8, 50},
		{1.1, 100},
		{2.0, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, cohort.Percentile(MetricFingerStrength, tt.value),
			"value %.2f", tt.value)
	}
}

func TestCohortPercentileMonotonic(t *testing.T) {
	target := makeAssessment("target@example.com", GradeV7, 1.0)
	peers := make([]Assessment, 0, 9)
	for i, v := range []float64{0.3, 0.45, 0.6, 0.7, 0.85, 0.9, 1.05, 1.2, 1.35} {
		email := string(rune('a'+i)) + "@example.com"
		peers = append(peers, makeAssessment(email, GradeV7, v))
	}
	cohort := NewCohort(target, peers)

	prev := 0
	for v := 0.01; v < 2.0; v += 0.01 {
		p := cohort.Percentile(MetricFingerStrength, v)
		assert.GreaterOrEqual(t, p, prev, "value %.2f", v)
		assert.LessOrEqual(t, p, 100)
		prev = p
	}
}
