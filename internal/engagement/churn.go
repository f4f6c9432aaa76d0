package engagement

import (
	"fmt"
	"time"

	"climbingpill/pkg/contracts/domain"
)

// RiskLevel is the categorical churn-risk prediction.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// ChurnRisk is the classification for one user, with the reason that the
// matching rule produced.
type ChurnRisk struct {
	Level  RiskLevel `json:"level"`
	Reason string    `json:"reason"`
}

// Recency threshold for the first churn rule.
const maxIdleDays = 14

// ClassifyChurn applies the churn rules in order; the first match wins:
//
//  1. more than 14 days since the last training -> high
//  2. rolling adherence below 50 -> medium
//  3. negative progress rate -> medium
//  4. otherwise -> low
//
// A user with zero dated trainings has unbounded recency and always
// triggers rule 1.
func ClassifyChurn(trainings []domain.Training, adherenceRate, progressRate float64, now time.Time) ChurnRisk {
	last, ok := lastTrainingDate(trainings)
	if !ok {
		return ChurnRisk{Level: RiskHigh, Reason: "No training sessions recorded"}
	}

	days := int(now.Sub(last).Hours() / 24)
	if days > maxIdleDays {
		return ChurnRisk{Level: RiskHigh, Reason: fmt.Sprintf("No training in %d days", days)}
	}
	if adherenceRate < 50 {
		return ChurnRisk{Level: RiskMedium, Reason: "Low training adherence"}
	}
	if progressRate < 0 {
		return ChurnRisk{Level: RiskMedium, Reason: "Negative progress trend"}
	}
	return ChurnRisk{Level: RiskLow, Reason: "Regular training pattern"}
}

// lastTrainingDate returns the most recent dated training, if any.
func lastTrainingDate(trainings []domain.Training) (time.Time, bool) {
	var last time.Time
	found := false
	for _, t := range trainings {
		if !t.HasDate() {
			continue
		}
		if !found || t.Date.After(last) {
			last = t.Date
			found = true
		}
	}
	return last, found
}
