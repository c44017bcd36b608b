package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studytrack-backend/internal/models"
)

// StudySessionRepo is the durable session store.
type StudySessionRepo struct {
	db DBTX
}

func NewStudySessionRepo(db DBTX) *StudySessionRepo {
	return &StudySessionRepo{db: db}
}

const studySessionColumns = `id, owner_id, title, subject, description, duration_minutes, status, occurred_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudySession(row rowScanner) (models.StudySession, error) {
	var (
		s       models.StudySession
		id      uuid.UUID
		ownerID uuid.UUID
		status  string
	)
	err := row.Scan(&id, &ownerID, &s.Title, &s.Subject, &s.Description, &s.DurationMinutes,
		&status, &s.OccurredAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.ID = FormatDurableID(id)
	s.OwnerID = FormatDurableID(ownerID)
	s.Status = models.StudyStatus(status)
	return s, nil
}

func (r *StudySessionRepo) collect(ctx context.Context, op, query string, args ...any) ([]models.StudySession, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	sessions := make([]models.StudySession, 0)
	for rows.Next() {
		s, err := scanStudySession(rows)
		if err != nil {
			return nil, storeErr(op, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}
	return sessions, nil
}

func (r *StudySessionRepo) FindByOwner(ctx context.Context, ownerID string) ([]models.StudySession, error) {
	owner, err := parseDurableID(ownerID)
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, "find study sessions", `
		SELECT `+studySessionColumns+`
		FROM study_sessions
		WHERE owner_id = $1
		ORDER BY occurred_at DESC
	`, owner)
}

func (r *StudySessionRepo) FindAll(ctx context.Context) ([]models.StudySession, error) {
	return r.collect(ctx, "find all study sessions", `
		SELECT `+studySessionColumns+`
		FROM study_sessions
		ORDER BY occurred_at DESC
	`)
}

func (r *StudySessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	owner, err := parseDurableID(s.OwnerID)
	if err != nil {
		return err
	}

	id := uuid.New()
	query := `
		INSERT INTO study_sessions (id, owner_id, title, subject, description, duration_minutes, status, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`
	err = r.db.QueryRow(ctx, query,
		id, owner, s.Title, s.Subject, s.Description, s.DurationMinutes, string(s.Status), s.OccurredAt,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return storeErr("create study session", err)
	}

	s.ID = FormatDurableID(id)
	return nil
}

func (r *StudySessionRepo) Update(ctx context.Context, id, ownerID string, patch models.StudySessionPatch) (*models.StudySession, error) {
	sessionID, err := parseDurableID(id)
	if err != nil {
		return nil, err
	}
	owner, err := parseDurableID(ownerID)
	if err != nil {
		return nil, err
	}

	var status *string
	if patch.Status != nil {
		v := string(*patch.Status)
		status = &v
	}

	row := r.db.QueryRow(ctx, `
		UPDATE study_sessions
		SET title = COALESCE($3::text, title),
			subject = COALESCE($4::text, subject),
			description = COALESCE($5::text, description),
			duration_minutes = COALESCE($6::double precision, duration_minutes),
			status = COALESCE($7::text, status),
			occurred_at = COALESCE($8::timestamptz, occurred_at),
			updated_at = NOW()
		WHERE id = $1
		  AND owner_id = $2
		RETURNING `+studySessionColumns,
		sessionID, owner, patch.Title, patch.Subject, patch.Description, patch.DurationMinutes, status, patch.OccurredAt,
	)

	s, err := scanStudySession(row)
	if err != nil {
		return nil, storeErr("update study session", err)
	}
	return &s, nil
}

func (r *StudySessionRepo) Delete(ctx context.Context, id, ownerID string) error {
	sessionID, err := parseDurableID(id)
	if err != nil {
		return err
	}
	owner, err := parseDurableID(ownerID)
	if err != nil {
		return err
	}
	return r.exec(ctx, "delete study session", "DELETE FROM study_sessions WHERE id = $1 AND owner_id = $2", sessionID, owner)
}

func (r *StudySessionRepo) DeleteAny(ctx context.Context, id string) error {
	sessionID, err := parseDurableID(id)
	if err != nil {
		return err
	}
	return r.exec(ctx, "delete any study session", "DELETE FROM study_sessions WHERE id = $1", sessionID)
}

func (r *StudySessionRepo) exec(ctx context.Context, op, query string, args ...any) error {
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return storeErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return storeErr(op, pgx.ErrNoRows)
	}
	return nil
}
