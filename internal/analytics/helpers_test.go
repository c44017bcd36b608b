package analytics

import (
	"time"

	"studytrack-backend/internal/models"
)

// Tests run in a zone that is never UTC so local-date handling is exercised.
var testZone = time.FixedZone("UTC+5", 5*60*60)

// Wednesday afternoon.
var testNow = time.Date(2026, 3, 11, 15, 0, 0, 0, testZone)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func session(subject string, minutes float64, status models.StudyStatus, at time.Time) models.StudySession {
	return models.StudySession{
		ID:              subject + at.Format(time.RFC3339Nano),
		OwnerID:         "owner",
		Title:           subject + " session",
		Subject:         subject,
		DurationMinutes: minutes,
		Status:          status,
		OccurredAt:      at,
		CreatedAt:       at,
	}
}

// scenarioB is Math 90 minutes over 3 completed sessions plus one pending Art session.
func scenarioB() []models.StudySession {
	return []models.StudySession{
		session("Math", 30, models.StatusCompleted, daysAgo(1)),
		session("Art", 10, models.StatusPending, daysAgo(1)),
		session("Math", 30, models.StatusCompleted, daysAgo(2)),
		session("Math", 30, models.StatusCompleted, daysAgo(3)),
	}
}
