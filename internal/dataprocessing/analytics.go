package dataprocessing

// GrowthPoint is the month-over-month growth of the session and active
// user counts, in percent. The series starts at the second month of the
// activity summary.
type GrowthPoint struct {
	Month         string  `json:"month"`
	SessionGrowth float64 `json:"session_growth"`
	UserGrowth    float64 `json:"user_growth"`
}

// EngagementPoint relates total sessions to active users for one month.
type EngagementPoint struct {
	Month           string  `json:"month"`
	SessionsPerUser float64 `json:"sessions_per_user"`
	TotalSessions   int     `json:"total_sessions"`
	ActiveUsers     int     `json:"active_users"`
}

// LocationUtilization is one location's share of all sessions, in percent.
type LocationUtilization struct {
	Location        string  `json:"location"`
	Sessions        int     `json:"sessions"`
	UtilizationRate float64 `json:"utilization_rate"`
}

// GrowthTrends derives month-over-month growth rates from the activity
// summary. Months with a zero previous value report zero growth rather
// than a division blowup. Requires the summary's month series to be
// aligned, which AggregateActivity guarantees.
func GrowthTrends(summary ActivitySummary) []GrowthPoint {
	sessions := summary.MonthlySessions
	users := usersByMonthKey(summary.MonthlyActiveUsers)

	if len(sessions) < 2 {
		return nil
	}

	trends := make([]GrowthPoint, 0, len(sessions)-1)
	for i := 1; i < len(sessions); i++ {
		point := GrowthPoint{Month: sessions[i].Month}

		if prev := sessions[i-1].Sessions; prev > 0 {
			point.SessionGrowth = float64(sessions[i].Sessions-prev) / float64(prev) * 100
		}
		if prevUsers := users[sessions[i-1].Month]; prevUsers > 0 {
			point.UserGrowth = float64(users[sessions[i].Month]-prevUsers) / float64(prevUsers) * 100
		}
		trends = append(trends, point)
	}
	return trends
}

// EngagementSeries computes per-month sessions-per-user engagement.
func EngagementSeries(summary ActivitySummary) []EngagementPoint {
	users := usersByMonthKey(summary.MonthlyActiveUsers)

	points := make([]EngagementPoint, 0, len(summary.MonthlySessions))
	for _, m := range summary.MonthlySessions {
		point := EngagementPoint{
			Month:         m.Month,
			TotalSessions: m.Sessions,
			ActiveUsers:   users[m.Month],
		}
		if point.ActiveUsers > 0 {
			point.SessionsPerUser = float64(point.TotalSessions) / float64(point.ActiveUsers)
		}
		points = append(points, point)
	}
	return points
}

// AverageSessionsPerUser averages the sessions-per-user ratio across all
// months of the series.
func AverageSessionsPerUser(points []EngagementPoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range points {
		sum += p.SessionsPerUser
	}
	return sum / float64(len(points))
}

// UtilizationRates computes each location's share of all sessions. The
// input order (descending by sessions) is preserved.
func UtilizationRates(locations []LocationSessions) []LocationUtilization {
	total := 0
	for _, l := range locations {
		total += l.Sessions
	}
	if total == 0 {
		return nil
	}

	out := make([]LocationUtilization, 0, len(locations))
	for _, l := range locations {
		out = append(out, LocationUtilization{
			Location:        l.Location,
			Sessions:        l.Sessions,
			UtilizationRate: float64(l.Sessions) / float64(total) * 100,
		})
	}
	return out
}

func usersByMonthKey(series []MonthUsers) map[string]int {
	m := make(map[string]int, len(series))
	for _, p := range series {
		m[p.Month] = p.Users
	}
	return m
}
