package analytics

import (
	"time"

	"studytrack-backend/internal/models"
)

type Trend struct {
	CurrentTotal  float64 `json:"currentTotal"`
	PreviousTotal float64 `json:"previousTotal"`
}

// CompareTrend sums study minutes for the 7 days ending today and for the 7
// days before that. The previous window is the first half of a 14-day window
// ending today.
func CompareTrend(sessions []models.StudySession, now time.Time) Trend {
	current := DailyBuckets(sessions, WeekDays, now)
	fortnight := DailyBuckets(sessions, 2*WeekDays, now)

	return Trend{
		CurrentTotal:  sumBuckets(current),
		PreviousTotal: sumBuckets(fortnight[:WeekDays]),
	}
}
