package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"climbingpill/pkg/contracts/domain"
)

func TestClassifyChurn(t *testing.T) {
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		trainings []domain.Training
		adherence float64
		progress  float64
		level     RiskLevel
		reason    string
	}{
		{
			name:      "recent training with good adherence and progress",
			trainings: []domain.Training{training("a@b.com", now.AddDate(0, 0, -3))},
			adherence: 80,
			progress:  5,
			level:     RiskLow,
			reason:    "Regular training pattern",
		},
		{
			name:      "stale training is high risk",
			trainings: []domain.Training{training("a@b.com", now.AddDate(0, 0, -20))},
			adherence: 80,
			progress:  5,
			level:     RiskHigh,
			reason:    "No training in 20 days",
		},
		{
			name:      "recency rule precedes adherence rule",
			trainings: []domain.Training{training("a@b.com", now.AddDate(0, 0, -20))},
			adherence: 30,
			progress:  5,
			level:     RiskHigh,
			reason:    "No training in 20 days",
		},
		{
			name:      "low adherence is medium risk",
			trainings: []domain.Training{training("a@b.com", now.AddDate(0, 0, -2))},
			adherence: 30,
			progress:  5,
			level:     RiskMedium,
			reason:    "Low training adherence",
		},
		{
			name:      "negative progress is medium risk",
			trainings: []domain.Training{training("a@b.com", now.AddDate(0, 0, -2))},
			adherence: 80,
			progress:  -4,
			level:     RiskMedium,
			reason:    "Negative progress trend",
		},
		{
			name:      "exactly fourteen days is not yet stale",
			trainings: []domain.Training{training("a@b.com", now.AddDate(0, 0, -14))},
			adherence: 80,
			progress:  0,
			level:     RiskLow,
			reason:    "Regular training pattern",
		},
		{
			name:      "no trainings always triggers the recency rule",
			trainings: nil,
			adherence: 100,
			progress:  50,
			level:     RiskHigh,
			reason:    "No training sessions recorded",
		},
		{
			name:      "only undated trainings count as none",
			trainings: []domain.Training{{Email: "a@b.com"}},
			adherence: 100,
			progress:  50,
			level:     RiskHigh,
			reason:    "No training sessions recorded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			risk := ClassifyChurn(tt.trainings, tt.adherence, tt.progress, now)
			assert.Equal(t, tt.level, risk.Level)
			assert.Equal(t, tt.reason, risk.Reason)
		})
	}
}
