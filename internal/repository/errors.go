package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means no record matched the id (and owner, where scoped).
	ErrNotFound = errors.New("not found")

	// ErrUnavailable wraps any durable store fault: connection, timeout or query failure.
	ErrUnavailable = errors.New("store unavailable")

	ErrDuplicateEmail = errors.New("email already registered")
)

const uniqueViolation = "23505"

// storeErr classifies a pgx error for the resolvers.
func storeErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
