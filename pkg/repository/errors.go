package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the helpers react to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgNotNullViolation     = "23502"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// ErrConstraint wraps check, foreign key, and not-null violations. The
// wrapped message names the violated constraint.
var ErrConstraint = errors.New("constraint violation")

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr, unique violations to duplicateErr,
// and other integrity violations to ErrConstraint. Other errors are
// returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return duplicateErr
	case pgCheckViolation, pgForeignKeyViolation, pgNotNullViolation:
		name := pgErr.ConstraintName
		if name == "" {
			name = pgErr.ColumnName
		}
		return fmt.Errorf("%w: %s", ErrConstraint, name)
	}

	return err
}

// Retryable reports whether err is a transient transaction conflict that
// succeeds when the whole transaction is run again.
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
}
