package assessment

import (
	"time"

	"climbingpill/pkg/contracts/domain"
)

// Metric identifies one of the normalized physical metrics.
type Metric string

const (
	MetricFingerStrength Metric = "finger_strength"
	MetricPullUps        Metric = "pull_ups"
	MetricPushUps        Metric = "push_ups"
	MetricToeToBar       Metric = "toe_to_bar"
	MetricLegSpread      Metric = "leg_spread"
)

// Metrics returns all metric names in composite-weight order.
func Metrics() []Metric {
	return []Metric{
		MetricFingerStrength,
		MetricPullUps,
		MetricPushUps,
		MetricToeToBar,
		MetricLegSpread,
	}
}

// NormalizedMetrics holds the five body-relative, dimensionless ratios
// derived from one set of raw measurements.
type NormalizedMetrics struct {
	FingerStrength float64 `json:"finger_strength"`
	PullUps        float64 `json:"pull_ups"`
	PushUps        float64 `json:"push_ups"`
	ToeToBar       float64 `json:"toe_to_bar"`
	LegSpread      float64 `json:"leg_spread"`
}

// Value returns the normalized value for the given metric.
func (m NormalizedMetrics) Value(metric Metric) float64 {
	switch metric {
	case MetricFingerStrength:
		return m.FingerStrength
	case MetricPullUps:
		return m.PullUps
	case MetricPushUps:
		return m.PushUps
	case MetricToeToBar:
		return m.ToeToBar
	case MetricLegSpread:
		return m.LegSpread
	default:
		return 0
	}
}

// ComponentWeights holds the weights applied to each normalized metric
// when computing the composite score. The weights must sum to exactly 1.0.
type ComponentWeights struct {
	FingerStrength float64 `json:"finger_strength"`
	PullUps        float64 `json:"pull_ups"`
	PushUps        float64 `json:"push_ups"`
	ToeToBar       float64 `json:"toe_to_bar"`
	LegSpread      float64 `json:"leg_spread"`
}

// DefaultWeights returns the production component weights.
func DefaultWeights() ComponentWeights {
	return ComponentWeights{
		FingerStrength: 0.45,
		PullUps:        0.20,
		PushUps:        0.10,
		ToeToBar:       0.15,
		LegSpread:      0.10,
	}
}

// Sum returns the total of all component weights.
func (w ComponentWeights) Sum() float64 {
	return w.FingerStrength + w.PullUps + w.PushUps + w.ToeToBar + w.LegSpread
}

// IsValid reports whether the weights sum to 1.0 within floating point
// tolerance.
func (w ComponentWeights) IsValid() bool {
	const tolerance = 1e-9
	diff := w.Sum() - 1.0
	return diff < tolerance && diff > -tolerance
}

// Grade is the discrete skill-level label derived from a composite score.
type Grade string

const (
	GradeV4  Grade = "V4"
	GradeV5  Grade = "V5"
	GradeV6  Grade = "V6"
	GradeV7  Grade = "V7"
	GradeV8  Grade = "V8"
	GradeV9  Grade = "V9"
	GradeV10 Grade = "V10"
	GradeV11 Grade = "V11"
	GradeV12 Grade = "V12"
)

// gradeThreshold is one rung of the strictly descending ladder: a score
// strictly above Score classifies as Grade.
type gradeThreshold struct {
	Score float64
	Grade Grade
}

// gradeLadder is ordered descending; the first match wins and scores at or
// below the last rung classify as GradeV4.
var gradeLadder = []gradeThreshold{
	{1.45, GradeV12},
	{1.30, GradeV11},
	{1.15, GradeV10},
	{1.05, GradeV9},
	{0.95, GradeV8},
	{0.85, GradeV7},
	{0.75, GradeV6},
	{0.65, GradeV5},
}

// GradeForScore maps a composite score to a grade via the threshold ladder.
func GradeForScore(score float64) Grade {
	for _, rung := range gradeLadder {
		if score > rung.Score {
			return rung.Grade
		}
	}
	return GradeV4
}

// Assessment is a scored physical assessment. Created once at ingestion
// time and immutable afterward; a later assessment for the same user
// supersedes it, it is never edited.
type Assessment struct {
	Email          string                 `json:"email"`
	Date           time.Time              `json:"date"`
	Raw            domain.RawMeasurements `json:"raw"`
	Metrics        NormalizedMetrics      `json:"metrics"`
	Weights        ComponentWeights       `json:"weights"`
	CompositeScore float64                `json:"composite_score"`
	Grade          Grade                  `json:"grade"`
	Notes          string                 `json:"notes,omitempty"`
}

// HasDate reports whether the assessment carries a usable calendar date.
func (a Assessment) HasDate() bool {
	return !a.Date.IsZero()
}
