package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrUniqueViolation is returned by repositories when a write collides with a unique constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

const uniqueViolationCode = "23505"

// MapError converts a Postgres unique violation into ErrUniqueViolation (wrapped with the
// constraint name). Other errors pass through unchanged.
func MapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	}
	return err
}
