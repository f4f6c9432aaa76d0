package dataprocessing

import (
	"sort"

	"climbingpill/pkg/contracts/domain"
)

// MonthSessions is one point of the monthly session-count series.
type MonthSessions struct {
	Month    string `json:"month"`
	Sessions int    `json:"sessions"`
}

// MonthUsers is one point of the monthly distinct-active-user series.
type MonthUsers struct {
	Month string `json:"month"`
	Users int    `json:"users"`
}

// LocationSessions is one entry of the global location-frequency series.
type LocationSessions struct {
	Location string `json:"location"`
	Sessions int    `json:"sessions"`
}

// ActivitySummary bundles the three training activity series.
// MonthlySessions and MonthlyActiveUsers are ascending by month key
// (zero-padded YYYY-MM, so lexicographic order is chronological);
// TopLocations is descending by session count.
type ActivitySummary struct {
	MonthlySessions    []MonthSessions    `json:"monthly_sessions"`
	MonthlyActiveUsers []MonthUsers       `json:"monthly_active_users"`
	TopLocations       []LocationSessions `json:"top_locations"`
}

// AggregateActivity buckets trainings into calendar months and counts
// location frequency. Trainings without a usable date are skipped
// silently. Filtering by user, date range or location is the caller's
// concern; pass a pre-filtered slice or use FilterTrainings.
//
// The aggregation is a pure fold over its input: it reads immutable
// records and allocates a fresh summary, so concurrent invocations need no
// coordination. Zero matching trainings yield empty series, not an error.
func AggregateActivity(trainings []domain.Training) ActivitySummary {
	sessionsByMonth := make(map[string]int)
	usersByMonth := make(map[string]map[string]struct{})
	sessionsByLocation := make(map[string]int)

	for _, t := range trainings {
		if !t.HasDate() {
			continue
		}
		month := t.MonthKey()
		sessionsByMonth[month]++

		if usersByMonth[month] == nil {
			usersByMonth[month] = make(map[string]struct{})
		}
		usersByMonth[month][domain.CanonicalEmail(t.Email)] = struct{}{}

		if t.Location != "" {
			sessionsByLocation[t.Location]++
		}
	}

	summary := ActivitySummary{
		MonthlySessions:    make([]MonthSessions, 0, len(sessionsByMonth)),
		MonthlyActiveUsers: make([]MonthUsers, 0, len(usersByMonth)),
		TopLocations:       make([]LocationSessions, 0, len(sessionsByLocation)),
	}

	for month, count := range sessionsByMonth {
		summary.MonthlySessions = append(summary.MonthlySessions, MonthSessions{Month: month, Sessions: count})
	}
	sort.Slice(summary.MonthlySessions, func(i, j int) bool {
		return summary.MonthlySessions[i].Month < summary.MonthlySessions[j].Month
	})

	for month, users := range usersByMonth {
		summary.MonthlyActiveUsers = append(summary.MonthlyActiveUsers, MonthUsers{Month: month, Users: len(users)})
	}
	sort.Slice(summary.MonthlyActiveUsers, func(i, j int) bool {
		return summary.MonthlyActiveUsers[i].Month < summary.MonthlyActiveUsers[j].Month
	})

	for location, count := range sessionsByLocation {
		summary.TopLocations = append(summary.TopLocations, LocationSessions{Location: location, Sessions: count})
	}
	sort.Slice(summary.TopLocations, func(i, j int) bool {
		if summary.TopLocations[i].Sessions != summary.TopLocations[j].Sessions {
			return summary.TopLocations[i].Sessions > summary.TopLocations[j].Sessions
		}
		return summary.TopLocations[i].Location < summary.TopLocations[j].Location
	})

	return summary
}

// FilterTrainings returns the trainings matching the predicate. A nil
// predicate keeps everything.
func FilterTrainings(trainings []domain.Training, keep func(domain.Training) bool) []domain.Training {
	if keep == nil {
		return trainings
	}
	out := make([]domain.Training, 0, len(trainings))
	for _, t := range trainings {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
