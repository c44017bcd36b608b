package repository

import (
	"context"
	"errors"

	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/models"
)

// SessionRepository routes every session operation to the durable or the
// volatile store:
//
//  1. ids in the durable domain go to the durable store first;
//  2. a durable failure or miss falls back to the volatile store only when the
//     id could have been issued by it;
//  3. any other id goes straight to the volatile store;
//  4. creates try the durable store only for durable owners and land in
//     exactly one store.
type SessionRepository struct {
	durable  SessionStore // nil when no database is configured
	volatile SessionStore
	log      logging.Logger
}

func NewSessionRepository(durable, volatile SessionStore, log logging.Logger) *SessionRepository {
	return &SessionRepository{
		durable:  durable,
		volatile: volatile,
		log:      log.With("component", "session_repository"),
	}
}

func (r *SessionRepository) useDurable(id string) bool {
	return r.durable != nil && IsDurableID(id)
}

// FindByOwner returns the owner's sessions, newest first. Durable owners also
// see sessions that were created in the volatile store while the database
// was unreachable.
func (r *SessionRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error) {
	if !r.useDurable(ownerID) {
		return r.volatile.FindByOwner(ctx, ownerID)
	}

	durable, err := r.durable.FindByOwner(ctx, ownerID)
	if err != nil {
		r.log.Warn(ctx, "durable store failed, reading volatile store", "op", "find_by_owner", "owner_id", ownerID, "error", err)
		return r.volatile.FindByOwner(ctx, ownerID)
	}

	volatile, err := r.volatile.FindByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return mergeNewestFirst(durable, volatile), nil
}

// FindAll lists every session in both stores. A failing durable store is
// skipped rather than failing the listing.
func (r *SessionRepository) FindAll(ctx context.Context) ([]models.StudySession, error) {
	var durable []models.StudySession
	if r.durable != nil {
		var err error
		durable, err = r.durable.FindAll(ctx)
		if err != nil {
			r.log.Warn(ctx, "durable store failed, listing volatile store only", "op", "find_all", "error", err)
			durable = nil
		}
	}

	volatile, err := r.volatile.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mergeNewestFirst(durable, volatile), nil
}

func (r *SessionRepository) Create(ctx context.Context, s models.StudySession) (*models.StudySession, error) {
	if r.useDurable(s.OwnerID) {
		created := s
		err := r.durable.Create(ctx, &created)
		if err == nil {
			return &created, nil
		}
		r.log.Warn(ctx, "durable store failed, creating in volatile store", "op", "create", "owner_id", s.OwnerID, "error", err)
	}

	created := s
	created.ID = ""
	if err := r.volatile.Create(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *SessionRepository) Update(ctx context.Context, id, ownerID string, patch models.StudySessionPatch) (*models.StudySession, error) {
	return resolveByID(ctx, r, "update", id, func(store SessionStore) (*models.StudySession, error) {
		return store.Update(ctx, id, ownerID, patch)
	})
}

// Delete reports false when no session with id belongs to ownerID.
func (r *SessionRepository) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	_, err := resolveByID(ctx, r, "delete", id, func(store SessionStore) (struct{}, error) {
		return struct{}{}, store.Delete(ctx, id, ownerID)
	})
	return found(err)
}

// DeleteAny removes a session regardless of its owner.
func (r *SessionRepository) DeleteAny(ctx context.Context, id string) (bool, error) {
	_, err := resolveByID(ctx, r, "delete_any", id, func(store SessionStore) (struct{}, error) {
		return struct{}{}, store.DeleteAny(ctx, id)
	})
	return found(err)
}

func resolveByID[T any](ctx context.Context, r *SessionRepository, op, id string, call func(SessionStore) (T, error)) (T, error) {
	if r.useDurable(id) {
		out, err := call(r.durable)
		if err == nil || !PlausiblyVolatile(id) {
			return out, err
		}
		r.log.Warn(ctx, "durable store missed, trying volatile store", "op", op, "id", id, "error", err)
	}
	return call(r.volatile)
}

func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

func mergeNewestFirst(a, b []models.StudySession) []models.StudySession {
	out := make([]models.StudySession, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	if len(a) > 0 && len(b) > 0 {
		sortNewestFirst(out)
	}
	return out
}
