package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"climbingpill/pkg/contracts/domain"
)

func training(email, location string, date time.Time) domain.Training {
	return domain.Training{Email: email, Location: location, Date: date}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateActivity(t *testing.T) {
	t.Run("reference scenario", func(t *testing.T) {
		trainings := []domain.Training{
			training("a@b.com", "GymX", day(2024, 1, 5)),
			training("a@b.com", "GymX", day(2024, 1, 20)),
			training("a@b.com", "GymY", day(2024, 2, 1)),
		}

		summary := AggregateActivity(trainings)

		assert.Equal(t, []MonthSessions{
			{Month: "2024-01", Sessions: 2},
			{Month: "2024-02", Sessions: 1},
		}, summary.MonthlySessions)

		assert.Equal(t, []LocationSessions{
			{Location: "GymX", Sessions: 2},
			{Location: "GymY", Sessions: 1},
		}, summary.TopLocations)

		assert.Equal(t, []MonthUsers{
			{Month: "2024-01", Users: 1},
			{Month: "2024-02", Users: 1},
		}, summary.MonthlyActiveUsers)
	})

	t.Run("distinct users are case insensitive", func(t *testing.T) {
		trainings := []domain.Training{
			training("a@b.com", "", day(2024, 1, 5)),
			training("A@B.COM", "", day(2024, 1, 6)),
			training("c@d.com", "", day(2024, 1, 7)),
		}
		summary := AggregateActivity(trainings)
		require.Len(t, summary.MonthlyActiveUsers, 1)
		assert.Equal(t, 2, summary.MonthlyActiveUsers[0].Users)
	})

	t.Run("month keys sort chronologically across year boundary", func(t *testing.T) {
		trainings := []domain.Training{
			training("a@b.com", "", day(2024, 1, 10)),
			training("a@b.com", "", day(2023, 12, 10)),
			training("a@b.com", "", day(2023, 2, 10)),
		}
		summary := AggregateActivity(trainings)
		months := make([]string, 0, len(summary.MonthlySessions))
		for _, m := range summary.MonthlySessions {
			months = append(months, m.Month)
		}
		assert.Equal(t, []string{"2023-02", "2023-12", "2024-01"}, months)
	})

	t.Run("undated trainings are skipped", func(t *testing.T) {
		trainings := []domain.Training{
			{Email: "a@b.com", Location: "GymX"},
			training("a@b.com", "GymX", day(2024, 1, 5)),
		}
		summary := AggregateActivity(trainings)
		assert.Equal(t, 1, summary.MonthlySessions[0].Sessions)
		assert.Equal(t, 1, summary.TopLocations[0].Sessions)
	})

	t.Run("empty input yields empty series", func(t *testing.T) {
		summary := AggregateActivity(nil)
		assert.Empty(t, summary.MonthlySessions)
		assert.Empty(t, summary.MonthlyActiveUsers)
		assert.Empty(t, summary.TopLocations)
	})

	t.Run("location ties break by name", func(t *testing.T) {
		trainings := []domain.Training{
			training("a@b.com", "Beta", day(2024, 1, 5)),
			training("a@b.com", "Alpha", day(2024, 1, 6)),
		}
		summary := AggregateActivity(trainings)
		assert.Equal(t, "Alpha", summary.TopLocations[0].Location)
	})
}

func TestFilterTrainings(t *testing.T) {
	trainings := []domain.Training{
		training("a@b.com", "GymX", day(2024, 1, 5)),
		training("c@d.com", "GymY", day(2024, 1, 6)),
	}

	t.Run("nil predicate keeps everything", func(t *testing.T) {
		assert.Len(t, FilterTrainings(trainings, nil), 2)
	})

	t.Run("predicate filters", func(t *testing.T) {
		got := FilterTrainings(trainings, func(tr domain.Training) bool {
			return tr.Email == "a@b.com"
		})
		require.Len(t, got, 1)
		assert.Equal(t, "GymX", got[0].Location)
	})
}

func TestGrowthTrends(t *testing.T) {
	summary := ActivitySummary{
		MonthlySessions: []MonthSessions{
			{Month: "2024-01", Sessions: 10},
			{Month: "2024-02", Sessions: 15},
			{Month: "2024-03", Sessions: 12},
		},
		MonthlyActiveUsers: []MonthUsers{
			{Month: "2024-01", Users: 5},
			{Month: "2024-02", Users: 10},
			{Month: "2024-03", Users: 10},
		},
	}

	trends := GrowthTrends(summary)
	require.Len(t, trends, 2)

	assert.Equal(t, "2024-02", trends[0].Month)
	assert.InDelta(t, 50, trends[0].SessionGrowth, 1e-9)
	assert.InDelta(t, 100, trends[0].UserGrowth, 1e-9)

	assert.Equal(t, "2024-03", trends[1].Month)
	assert.InDelta(t, -20, trends[1].SessionGrowth, 1e-9)
	assert.InDelta(t, 0, trends[1].UserGrowth, 1e-9)
}

func TestGrowthTrendsSingleMonth(t *testing.T) {
	summary := ActivitySummary{
		MonthlySessions: []MonthSessions{{Month: "2024-01", Sessions: 10}},
	}
	assert.Nil(t, GrowthTrends(summary))
}

func TestEngagementSeries(t *testing.T) {
	summary := ActivitySummary{
		MonthlySessions: []MonthSessions{
			{Month: "2024-01", Sessions: 20},
			{Month: "2024-02", Sessions: 8},
		},
		MonthlyActiveUsers: []MonthUsers{
			{Month: "2024-01", Users: 5},
			{Month: "2024-02", Users: 0},
		},
	}

	points := EngagementSeries(summary)
	require.Len(t, points, 2)
	assert.InDelta(t, 4, points[0].SessionsPerUser, 1e-9)
	assert.Zero(t, points[1].SessionsPerUser) // no users, no blowup

	assert.InDelta(t, 2, AverageSessionsPerUser(points), 1e-9)
	assert.Zero(t, AverageSessionsPerUser(nil))
}

func TestUtilizationRates(t *testing.T) {
	locations := []LocationSessions{
		{Location: "GymX", Sessions: 3},
		{Location: "GymY", Sessions: 1},
	}

	rates := UtilizationRates(locations)
	require.Len(t, rates, 2)
	assert.InDelta(t, 75, rates[0].UtilizationRate, 1e-9)
	assert.InDelta(t, 25, rates[1].UtilizationRate, 1e-9)

	assert.Nil(t, UtilizationRates(nil))
}
