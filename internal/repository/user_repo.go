package repository

import (
	"context"

	"github.com/google/uuid"

	"studytrack-backend/internal/models"
)

// UserRepo is the durable user store.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, name, email, role, password_hash, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u    models.User
		id   uuid.UUID
		role string
	)
	if err := row.Scan(&id, &u.Name, &u.Email, &role, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = FormatDurableID(id)
	u.Role = models.Role(role)
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, name, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	id := uuid.New()
	if user.Role == "" {
		user.Role = models.RoleUser
	}

	err := r.db.QueryRow(ctx, query,
		id, user.Name, user.Email, string(user.Role), user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		return storeErr("create user", err)
	}

	user.ID = FormatDurableID(id)
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, storeErr("get user by email", err)
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := parseDurableID(id)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return nil, storeErr("get user by id", err)
	}
	return user, nil
}

func (r *UserRepo) ListAll(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, storeErr("list users", err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storeErr("list users", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list users", err)
	}
	return users, nil
}
