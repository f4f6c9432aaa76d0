package assessment

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"climbingpill/pkg/contracts/domain"
)

// Fallbacks used when a measurement is absent or non-positive. They keep
// every normalization denominator strictly positive.
const (
	DefaultBodyWeight = 70.0  // kilograms-equivalent
	DefaultHeight     = 170.0 // centimeters-equivalent
)

// Floors applied to the normalized ratios.
const (
	floorPullUps   = 0.01
	floorPushUps   = 0.02
	floorToeToBar  = 0.01
	floorLegSpread = 0.3

	// Finger strength with no added weight scores a fixed baseline rather
	// than the 1.0 a bare bodyweight hang would produce.
	baselineFingerStrength = 0.5
)

// Weakness thresholds: a normalized metric below its threshold is flagged
// in the assessment notes. Diagnostic text only, never consumed by
// downstream numeric logic.
var weaknessThresholds = []struct {
	metric    Metric
	threshold float64
	label     string
}{
	{MetricFingerStrength, 0.8, "finger strength"},
	{MetricPullUps, 0.4, "pull-up endurance"},
	{MetricToeToBar, 0.3, "core tension"},
	{MetricLegSpread, 0.5, "hip flexibility"},
}

// Scorer converts raw physical measurements into normalized metrics, a
// weighted composite score and a grade. It is pure: every call reads only
// its input and allocates a fresh Assessment.
type Scorer struct {
	weights ComponentWeights
	logger  *slog.Logger
}

// NewScorer creates a scorer with the given component weights.
func NewScorer(weights ComponentWeights, logger *slog.Logger) (*Scorer, error) {
	if !weights.IsValid() {
		return nil, fmt.Errorf("component weights must sum to 1.0, got %.6f", weights.Sum())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scorer{weights: weights, logger: logger}, nil
}

// Score derives a full Assessment from one raw measurement row. Missing or
// unparseable numeric fields arrive as zero and are handled structurally;
// this method never fails.
func (s *Scorer) Score(email string, date time.Time, raw domain.RawMeasurements) Assessment {
	metrics := Normalize(raw)
	score := s.composite(metrics)
	grade := GradeForScore(score)

	a := Assessment{
		Email:          domain.CanonicalEmail(email),
		Date:           date,
		Raw:            raw,
		Metrics:        metrics,
		Weights:        s.weights,
		CompositeScore: score,
		Grade:          grade,
		Notes:          buildNotes(grade, score, metrics),
	}

	s.logger.Debug("scored assessment",
		slog.String("email", a.Email),
		slog.Float64("composite_score", score),
		slog.String("grade", string(grade)))

	return a
}

// Normalize converts raw measurements into dimensionless body-relative
// ratios. Body weight and height fall back to their defaults when
// non-positive, so no ratio ever divides by zero.
func Normalize(raw domain.RawMeasurements) NormalizedMetrics {
	bodyWeight := raw.BodyWeight
	if bodyWeight <= 0 {
		bodyWeight = DefaultBodyWeight
	}
	height := raw.Height
	if height <= 0 {
		height = DefaultHeight
	}

	fingerStrength := baselineFingerStrength
	if raw.FingerStrengthAddedWeight != 0 {
		fingerStrength = (raw.FingerStrengthAddedWeight + bodyWeight) / bodyWeight
	}

	return NormalizedMetrics{
		FingerStrength: fingerStrength,
		PullUps:        floorAt(raw.PullUps/bodyWeight, floorPullUps),
		PushUps:        floorAt(raw.PushUps/bodyWeight, floorPushUps),
		ToeToBar:       floorAt(raw.ToeToBar/bodyWeight, floorToeToBar),
		LegSpread:      floorAt(raw.LegSpread/height, floorLegSpread),
	}
}

func floorAt(v, floor float64) float64 {
	if v < floor {
		return floor
	}
	return v
}

// composite computes the weighted sum of the normalized metrics.
func (s *Scorer) composite(m NormalizedMetrics) float64 {
	return s.weights.FingerStrength*m.FingerStrength +
		s.weights.PullUps*m.PullUps +
		s.weights.PushUps*m.PushUps +
		s.weights.ToeToBar*m.ToeToBar +
		s.weights.LegSpread*m.LegSpread
}

// buildNotes assembles the free-text assessment notes: grade, score and any
// flagged weaknesses.
func buildNotes(grade Grade, score float64, metrics NormalizedMetrics) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Grade %s (score %.3f).", grade, score)

	var weak []string
	for _, w := range weaknessThresholds {
		if metrics.Value(w.metric) < w.threshold {
			weak = append(weak, w.label)
		}
	}
	if len(weak) > 0 {
		fmt.Fprintf(&b, " Focus areas: %s.", strings.Join(weak, ", "))
	}
	return b.String()
}
