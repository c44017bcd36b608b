package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/models"
	"studytrack-backend/internal/repository"
)

// SessionRepository is the owner-scoped session store the service writes through.
type SessionRepository interface {
	FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error)
	FindAll(ctx context.Context) ([]models.StudySession, error)
	Create(ctx context.Context, s models.StudySession) (*models.StudySession, error)
	Update(ctx context.Context, id, ownerID string, patch models.StudySessionPatch) (*models.StudySession, error)
	Delete(ctx context.Context, id, ownerID string) (bool, error)
	DeleteAny(ctx context.Context, id string) (bool, error)
}

type StudyService struct {
	sessions SessionRepository
	users    UserLister
	log      logging.Logger
	now      func() time.Time
}

func NewStudyService(sessions SessionRepository, users UserLister, log logging.Logger) *StudyService {
	return &StudyService{
		sessions: sessions,
		users:    users,
		log:      log.With("component", "study_service"),
		now:      time.Now,
	}
}

const dateOnlyLayout = "2006-01-02"

var errSessionNotFound = &NotFoundError{Message: "Study session not found"}

func (s *StudyService) List(ctx context.Context, user models.CurrentUser) ([]models.StudySession, error) {
	return s.sessions.FindByOwner(ctx, user.ID)
}

func (s *StudyService) Create(ctx context.Context, user models.CurrentUser, in models.StudySessionInput) (*models.StudySession, error) {
	patch, err := s.validate(in, true)
	if err != nil {
		return nil, err
	}

	session := models.StudySession{OwnerID: user.ID, Status: models.StatusPending}
	patch.Apply(&session)
	if session.OccurredAt.IsZero() {
		session.OccurredAt = s.now()
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		s.log.Error(ctx, "failed to create study session", "owner_id", user.ID, "error", err)
		return nil, err
	}
	return created, nil
}

func (s *StudyService) Update(ctx context.Context, user models.CurrentUser, id string, in models.StudySessionInput) (*models.StudySession, error) {
	patch, err := s.validate(in, false)
	if err != nil {
		return nil, err
	}

	updated, err := s.sessions.Update(ctx, id, user.ID, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errSessionNotFound
	}
	if err != nil {
		s.log.Error(ctx, "failed to update study session", "id", id, "error", err)
		return nil, err
	}
	return updated, nil
}

func (s *StudyService) Delete(ctx context.Context, user models.CurrentUser, id string) error {
	found, err := s.sessions.Delete(ctx, id, user.ID)
	if err != nil {
		s.log.Error(ctx, "failed to delete study session", "id", id, "error", err)
		return err
	}
	if !found {
		return errSessionNotFound
	}
	return nil
}

func (s *StudyService) ListAll(ctx context.Context) ([]models.StudySession, error) {
	return s.sessions.FindAll(ctx)
}

func (s *StudyService) DeleteAny(ctx context.Context, id string) error {
	found, err := s.sessions.DeleteAny(ctx, id)
	if err != nil {
		s.log.Error(ctx, "failed to delete study session", "id", id, "admin", true, "error", err)
		return err
	}
	if !found {
		return errSessionNotFound
	}
	return nil
}

func (s *StudyService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.ListAll(ctx)
}

// validate turns raw input into a patch. On create, title, subject and
// duration are required; on update only present fields are checked.
func (s *StudyService) validate(in models.StudySessionInput, create bool) (models.StudySessionPatch, error) {
	var patch models.StudySessionPatch
	fields := make(map[string]string)

	requiredText := func(name string, v *string, dst **string) {
		if v == nil {
			if create {
				fields[name] = "Please add a " + name
			}
			return
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			fields[name] = "Please add a " + name
			return
		}
		*dst = &trimmed
	}
	requiredText("title", in.Title, &patch.Title)
	requiredText("subject", in.Subject, &patch.Subject)

	if in.Description != nil {
		d := strings.TrimSpace(*in.Description)
		patch.Description = &d
	}

	if in.Duration != nil {
		minutes, ok := parseDuration(in.Duration)
		if !ok {
			fields["duration"] = "Duration must be a non-negative number of minutes"
		} else {
			patch.DurationMinutes = &minutes
		}
	} else if create {
		fields["duration"] = "Please add duration"
	}

	if in.Status != nil {
		status := models.StudyStatus(strings.TrimSpace(*in.Status))
		if !status.Valid() {
			fields["status"] = "Status must be Pending, In Progress or Completed"
		} else {
			patch.Status = &status
		}
	}

	if in.Date != nil && strings.TrimSpace(*in.Date) != "" {
		at, err := s.parseDate(strings.TrimSpace(*in.Date))
		if err != nil {
			fields["date"] = "Date must be YYYY-MM-DD or an RFC 3339 timestamp"
		} else {
			patch.OccurredAt = &at
		}
	}

	if len(fields) > 0 {
		return patch, &ValidationError{Fields: fields}
	}
	return patch, nil
}

// parseDuration accepts a JSON number or a numeric string.
func parseDuration(v any) (float64, bool) {
	var f float64
	switch d := v.(type) {
	case float64:
		f = d
	case json.Number:
		n, err := d.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// parseDate reads a bare calendar date as local midnight in the service clock's zone.
func (s *StudyService) parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.ParseInLocation(dateOnlyLayout, v, s.now().Location())
}
