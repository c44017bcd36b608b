package repository

import (
	"context"
	"errors"

	"studytrack-backend/internal/logging"
	"studytrack-backend/internal/models"
)

// UserDirectory applies the same durable/volatile policy as
// SessionRepository to user accounts.
type UserDirectory struct {
	durable  UserStore // nil when no database is configured
	volatile UserStore
	log      logging.Logger
}

func NewUserDirectory(durable, volatile UserStore, log logging.Logger) *UserDirectory {
	return &UserDirectory{
		durable:  durable,
		volatile: volatile,
		log:      log.With("component", "user_directory"),
	}
}

// Create stores the user durably when possible. A duplicate email is final
// and never retried against the volatile store.
func (d *UserDirectory) Create(ctx context.Context, u models.User) (*models.User, error) {
	if d.durable != nil {
		created := u
		err := d.durable.Create(ctx, &created)
		if err == nil {
			return &created, nil
		}
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, err
		}
		d.log.Warn(ctx, "durable store failed, registering in volatile store", "error", err)
	}

	created := u
	created.ID = ""
	if err := d.volatile.Create(ctx, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (d *UserDirectory) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if d.durable != nil {
		u, err := d.durable.GetByEmail(ctx, email)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, ErrNotFound) {
			d.log.Warn(ctx, "durable store failed, reading volatile store", "op", "get_by_email", "error", err)
		}
	}
	return d.volatile.GetByEmail(ctx, email)
}

func (d *UserDirectory) GetByID(ctx context.Context, id string) (*models.User, error) {
	if d.durable != nil && IsDurableID(id) {
		u, err := d.durable.GetByID(ctx, id)
		if err == nil || !PlausiblyVolatile(id) {
			return u, err
		}
	}
	return d.volatile.GetByID(ctx, id)
}

// ListAll returns durable users followed by volatile ones. A failing durable
// store contributes nobody.
func (d *UserDirectory) ListAll(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if d.durable != nil {
		durable, err := d.durable.ListAll(ctx)
		if err != nil {
			d.log.Warn(ctx, "durable store failed, listing volatile users only", "error", err)
		} else {
			users = durable
		}
	}

	volatile, err := d.volatile.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return append(append(make([]models.User, 0, len(users)+len(volatile)), users...), volatile...), nil
}
