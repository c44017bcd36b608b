package models

import "time"

type StudyStatus string

const (
	StatusPending    StudyStatus = "Pending"
	StatusInProgress StudyStatus = "In Progress"
	StatusCompleted  StudyStatus = "Completed"
)

func (s StudyStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type StudySession struct {
	ID              string      `json:"id"`
	OwnerID         string      `json:"ownerId"`
	Title           string      `json:"title"`
	Subject         string      `json:"subject"`
	Description     string      `json:"description,omitempty"`
	DurationMinutes float64     `json:"duration"`
	Status          StudyStatus `json:"status"`
	OccurredAt      time.Time   `json:"date"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// Day is the moment used for calendar bucketing: OccurredAt, or CreatedAt
// when the session carries no activity date.
func (s StudySession) Day() time.Time {
	if s.OccurredAt.IsZero() {
		return s.CreatedAt
	}
	return s.OccurredAt
}

// StudySessionInput is the raw create/update body. Duration stays untyped so
// numeric strings from older clients are accepted and validated explicitly.
type StudySessionInput struct {
	Title       *string `json:"title"`
	Subject     *string `json:"subject"`
	Description *string `json:"description"`
	Duration    any     `json:"duration"`
	Status      *string `json:"status"`
	Date        *string `json:"date"`
}

// StudySessionPatch is a validated partial update. Nil fields are left as is.
type StudySessionPatch struct {
	Title           *string
	Subject         *string
	Description     *string
	DurationMinutes *float64
	Status          *StudyStatus
	OccurredAt      *time.Time
}

func (p StudySessionPatch) Apply(s *StudySession) {
	if p.Title != nil {
		s.Title = *p.Title
	}
	if p.Subject != nil {
		s.Subject = *p.Subject
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.DurationMinutes != nil {
		s.DurationMinutes = *p.DurationMinutes
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.OccurredAt != nil {
		s.OccurredAt = *p.OccurredAt
	}
}
