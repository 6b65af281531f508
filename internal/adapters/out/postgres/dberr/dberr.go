// Package dberr translates driver errors into the error taxonomy of the core.
package dberr

import (
	"errors"

	"dronedispatch/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	dependency      = "postgres"
	uniqueViolation = "23505"
)

// IsUniqueViolation reports whether err is a unique constraint violation from
// pgx, lib/pq or sqlite.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	return false
}

// Map wraps a failed write of entity id. Unique violations become a
// StateConflictError, anything else an ExternalDependencyError.
func Map(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if IsUniqueViolation(err) {
		return errs.NewStateConflictErrorWithCause(entity, id, entity+" already exists", err)
	}
	return Wrap(err)
}

// Wrap marks err as a storage failure unless it already belongs to the taxonomy.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrStateConflict) || errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrValidation) || errors.Is(err, errs.ErrExternalDependency) {
		return err
	}
	return errs.NewExternalDependencyError(dependency, err)
}
