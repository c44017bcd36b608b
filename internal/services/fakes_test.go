package services

import (
	"context"
	"time"

	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

var testZone = time.FixedZone("UTC+5", 5*60*60)

// Wednesday afternoon.
var testNow = time.Date(2026, 3, 11, 15, 0, 0, 0, testZone)

func fixedClock() time.Time { return testNow }

type fakeSessions struct {
	byOwner map[string][]models.StudySession
	err     error
	calls   int
}

func (f *fakeSessions) FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byOwner[ownerID], nil
}

type fakeUsers struct {
	users []models.User
	err   error
}

func (f *fakeUsers) ListAll(ctx context.Context) ([]models.User, error) {
	return f.users, f.err
}

func studyAt(owner, subject string, minutes float64, status models.StudyStatus, daysAgo int) models.StudySession {
	at := testNow.AddDate(0, 0, -daysAgo)
	return models.StudySession{
		ID:              repository.NewVolatileIDGenerator().Next(),
		OwnerID:         owner,
		Title:           subject,
		Subject:         subject,
		DurationMinutes: minutes,
		Status:          status,
		OccurredAt:      at,
		CreatedAt:       at,
	}
}
