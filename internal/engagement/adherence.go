package engagement

import (
	"time"

	"climbingpill/pkg/contracts/domain"
)

// Training cadence targets. The ideal athlete trains three times a week,
// which the monthly dashboards treat as twelve sessions per month.
const (
	IdealSessionsPerWeek  = 3
	IdealSessionsPerMonth = 12
	rollingWindowMonths   = 3
)

// RollingAdherence computes the dashboard adherence rate: sessions in the
// last three calendar months (the current month and the two before it)
// against the ideal cadence, as a percentage.
//
// The result is deliberately NOT capped at 100 so that over-training is
// visible; display layers clamp as they see fit. The bounded-plan variant
// PlanAdherence IS capped, and the two must not be conflated.
func RollingAdherence(trainings []domain.Training, now time.Time) float64 {
	windowStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(rollingWindowMonths - 1), 0)

	actual := 0
	for _, t := range trainings {
		if !t.HasDate() {
			continue
		}
		if !t.Date.Before(windowStart) && !t.Date.After(now) {
			actual++
		}
	}

	ideal := float64(rollingWindowMonths * IdealSessionsPerMonth)
	return float64(actual) / ideal * 100
}

// PlanAdherence computes the adherence rate for a bounded training plan:
// actual sessions inside [start, end] against floor(durationDays/7) * 3
// expected sessions, capped at 100.
func PlanAdherence(trainings []domain.Training, plan domain.Plan) float64 {
	expected := plan.DurationDays() / 7 * IdealSessionsPerWeek
	if expected <= 0 {
		return 0
	}

	email := domain.CanonicalEmail(plan.Email)
	actual := 0
	for _, t := range trainings {
		if !t.HasDate() || domain.CanonicalEmail(t.Email) != email {
			continue
		}
		if plan.Contains(t.Date) {
			actual++
		}
	}

	rate := float64(actual) / float64(expected) * 100
	if rate > 100 {
		rate = 100
	}
	return rate
}

// ProgressRate computes the relative score change between a user's oldest
// and most recent assessment scores, as a percentage. Scores must be
// supplied sorted descending by date (most recent first); fewer than two
// scores or a non-positive baseline yield zero.
func ProgressRate(scoresDesc []float64) float64 {
	if len(scoresDesc) < 2 {
		return 0
	}
	newest := scoresDesc[0]
	oldest := scoresDesc[len(scoresDesc)-1]
	if oldest <= 0 {
		return 0
	}
	return (newest - oldest) / oldest * 100
}

// SuccessRate maps a plan improvement percentage to a coarse success
// score for display.
func SuccessRate(improvement float64) float64 {
	switch {
	case improvement >= 20:
		return 100
	case improvement >= 10:
		return 75
	case improvement >= 5:
		return 50
	case improvement >= 0:
		return 25
	default:
		return 0
	}
}
