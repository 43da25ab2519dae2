package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	numericOutOfRangeCode   = "22003"
)

// isUniqueViolation reports whether err is a postgres unique_violation,
// optionally restricted to the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	return hasPgCode(err, uniqueViolationCode, constraint)
}

// isForeignKeyViolation reports whether err is a postgres foreign_key_violation
// on the named constraint.
func isForeignKeyViolation(err error, constraint string) bool {
	return hasPgCode(err, foreignKeyViolationCode, constraint)
}

func hasPgCode(err error, code, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != code {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isOutOfRange reports whether err is a postgres numeric_value_out_of_range
func isOutOfRange(err error) bool {
	return hasPgCode(err, numericOutOfRangeCode, "")
}
