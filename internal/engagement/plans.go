package engagement

import (
	"sort"
	"time"

	"climbingpill/internal/assessment"
	"climbingpill/pkg/contracts/domain"
)

// AssessmentProgress captures a user's composite scores immediately before
// and after their most recent completed plan.
type AssessmentProgress struct {
	BeforePlan  float64 `json:"before_plan"`
	AfterPlan   float64 `json:"after_plan"`
	Improvement float64 `json:"improvement"`
}

// PlanMetrics summarizes a user's training plans: the currently active
// plan, completed plans, and derived adherence/success rates.
type PlanMetrics struct {
	ActivePlan     *domain.Plan       `json:"active_plan,omitempty"`
	CompletedPlans []domain.Plan      `json:"completed_plans,omitempty"`
	AdherenceRate  float64            `json:"adherence_rate"`
	SuccessRate    float64            `json:"success_rate"`
	Progress       AssessmentProgress `json:"assessment_progress"`
}

// AnalyzePlans derives the per-user plan metrics from that user's plans,
// trainings and scored assessments. A plan is active when its end date is
// still ahead of now; among several active plans the one with the latest
// start date wins. Completed plans are those whose end date has passed.
func AnalyzePlans(plans []domain.Plan, trainings []domain.Training, assessments []assessment.Assessment, now time.Time) PlanMetrics {
	var metrics PlanMetrics

	for _, plan := range plans {
		if plan.StartDate.IsZero() || plan.EndDate.IsZero() {
			continue
		}
		if plan.EndDate.After(now) {
			if metrics.ActivePlan == nil || plan.StartDate.After(metrics.ActivePlan.StartDate) {
				p := plan
				metrics.ActivePlan = &p
			}
		} else {
			metrics.CompletedPlans = append(metrics.CompletedPlans, plan)
		}
	}

	if len(metrics.CompletedPlans) == 0 {
		return metrics
	}

	sort.Slice(metrics.CompletedPlans, func(i, j int) bool {
		return metrics.CompletedPlans[i].EndDate.Before(metrics.CompletedPlans[j].EndDate)
	})
	lastPlan := metrics.CompletedPlans[len(metrics.CompletedPlans)-1]

	metrics.AdherenceRate = PlanAdherence(trainings, lastPlan)
	metrics.Progress = planProgress(lastPlan, assessments)
	metrics.SuccessRate = SuccessRate(metrics.Progress.Improvement)

	return metrics
}

// planProgress finds the last composite score before the plan started and
// the first one after it ended, and the relative improvement between them.
func planProgress(plan domain.Plan, assessments []assessment.Assessment) AssessmentProgress {
	var progress AssessmentProgress
	var beforeDate, afterDate time.Time

	for _, a := range assessments {
		if !a.HasDate() {
			continue
		}
		switch {
		case a.Date.Before(plan.StartDate):
			if beforeDate.IsZero() || a.Date.After(beforeDate) {
				beforeDate = a.Date
				progress.BeforePlan = a.CompositeScore
			}
		case a.Date.After(plan.EndDate):
			if afterDate.IsZero() || a.Date.Before(afterDate) {
				afterDate = a.Date
				progress.AfterPlan = a.CompositeScore
			}
		}
	}

	if progress.BeforePlan > 0 && progress.AfterPlan > 0 {
		progress.Improvement = (progress.AfterPlan - progress.BeforePlan) / progress.BeforePlan * 100
	}
	return progress
}
