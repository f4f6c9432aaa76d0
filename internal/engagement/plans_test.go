package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climbingpill/internal/assessment"
	"climbingpill/pkg/contracts/domain"
)

func TestAnalyzePlans(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	completed := domain.Plan{
		Email:     "a@b.com",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC),
		Type:      "strength",
	}
	active := domain.Plan{
		Email:     "a@b.com",
		StartDate: time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 7, 20, 0, 0, 0, 0, time.UTC),
		Type:      "endurance",
	}

	t.Run("splits active and completed plans", func(t *testing.T) {
		metrics := AnalyzePlans([]domain.Plan{completed, active}, nil, nil, now)
		require.NotNil(t, metrics.ActivePlan)
		assert.Equal(t, "endurance", metrics.ActivePlan.Type)
		require.Len(t, metrics.CompletedPlans, 1)
		assert.Equal(t, "strength", metrics.CompletedPlans[0].Type)
	})

	t.Run("latest start date wins among active plans", func(t *testing.T) {
		earlierActive := active
		earlierActive.StartDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		earlierActive.Type = "technique"

		metrics := AnalyzePlans([]domain.Plan{earlierActive, active}, nil, nil, now)
		require.NotNil(t, metrics.ActivePlan)
		assert.Equal(t, "endurance", metrics.ActivePlan.Type)
	})

	t.Run("plan progress and success rate from surrounding assessments", func(t *testing.T) {
		assessments := []assessment.Assessment{
			{Email: "a@b.com", Date: time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC), CompositeScore: 0.8},
			{Email: "a@b.com", Date: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), CompositeScore: 1.0},
		}
		var trainings []domain.Training
		for i := 0; i < 6; i++ {
			trainings = append(trainings, training("a@b.com", completed.StartDate.AddDate(0, 0, i*4)))
		}

		metrics := AnalyzePlans([]domain.Plan{completed}, trainings, assessments, now)

		assert.InDelta(t, 0.8, metrics.Progress.BeforePlan, 1e-9)
		assert.InDelta(t, 1.0, metrics.Progress.AfterPlan, 1e-9)
		assert.InDelta(t, 25, metrics.Progress.Improvement, 1e-9)
		assert.Equal(t, 100.0, metrics.SuccessRate)
		assert.InDelta(t, 50, metrics.AdherenceRate, 1e-9)
	})

	t.Run("plans without dates are dropped", func(t *testing.T) {
		metrics := AnalyzePlans([]domain.Plan{{Email: "a@b.com"}}, nil, nil, now)
		assert.Nil(t, metrics.ActivePlan)
		assert.Empty(t, metrics.CompletedPlans)
	})
}
