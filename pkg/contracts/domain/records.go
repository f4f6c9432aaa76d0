package domain

import (
	"strings"
	"time"
)

// CanonicalEmail normalizes an email so it can serve as the join key across
// all record types. Two records differing only in case or surrounding
// whitespace of the email refer to the same user.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User represents an athlete loaded from the users source range.
// Immutable once loaded.
type User struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// FullName returns the display name for the user, falling back to the
// email when no name fields were present in the source.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Training represents a single training session. One record per session;
// sessions are never merged.
type Training struct {
	Email    string    `json:"email" validate:"required,email"`
	Date     time.Time `json:"date"`
	Location string    `json:"location,omitempty"`
	Complete bool      `json:"complete"`
}

// HasDate reports whether the training carries a usable calendar date.
// Records without one are excluded from every aggregate.
func (t Training) HasDate() bool {
	return !t.Date.IsZero()
}

// MonthKey returns the zero-padded YYYY-MM bucket key for the session.
// Lexicographic ordering of keys equals chronological ordering.
func (t Training) MonthKey() string {
	return t.Date.Format("2006-01")
}

// RawMeasurements holds the measured quantities from one assessment row
// before normalization. Unparseable numeric cells arrive here as zero.
type RawMeasurements struct {
	FingerStrengthAddedWeight float64 `json:"finger_strength_added_weight"`
	BodyWeight                float64 `json:"body_weight"`
	Height                    float64 `json:"height"`
	PullUps                   float64 `json:"pull_ups"`
	PushUps                   float64 `json:"push_ups"`
	ToeToBar                  float64 `json:"toe_to_bar"`
	LegSpread                 float64 `json:"leg_spread"`
}

// Coach represents a coaching profile. The athlete list is a weak
// reference list of email strings, not owning relationships.
type Coach struct {
	Email       string   `json:"email" validate:"required,email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	Specialties []string `json:"specialties,omitempty"`
	Athletes    []string `json:"athletes,omitempty"`
}

// PlanStatus represents the lifecycle state of a training plan.
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "active"
	PlanStatusCompleted PlanStatus = "completed"
)

// Plan represents a bounded training plan with explicit start and end dates.
type Plan struct {
	Email     string     `json:"email" validate:"required,email"`
	StartDate time.Time  `json:"start_date"`
	EndDate   time.Time  `json:"end_date"`
	Type      string     `json:"type,omitempty"`
	Status    PlanStatus `json:"status,omitempty"`
}

// DurationDays returns the plan length in whole days.
func (p Plan) DurationDays() int {
	return int(p.EndDate.Sub(p.StartDate).Hours() / 24)
}

// Contains reports whether the given date falls within [start, end].
func (p Plan) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}
