package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"studytrack-backend/internal/models"
)

// DBTX is the subset of pgx used by the Postgres stores.
// *pgxpool.Pool, *pgxpool.Conn and pgx.Tx all satisfy it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// SessionStore is implemented by each backing store. Update, Delete and
// DeleteAny return ErrNotFound when nothing matched.
type SessionStore interface {
	FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error)
	FindAll(ctx context.Context) ([]models.StudySession, error)
	Create(ctx context.Context, s *models.StudySession) error
	Update(ctx context.Context, id, ownerID string, patch models.StudySessionPatch) (*models.StudySession, error)
	Delete(ctx context.Context, id, ownerID string) error
	DeleteAny(ctx context.Context, id string) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
}
