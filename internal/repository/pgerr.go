package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repository translates into domain errors.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeUniqueViolation
}

// isForeignKeyViolation checks if the error is a PostgreSQL foreign key violation.
func isForeignKeyViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeForeignKeyViolation
}

func isCheckViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == codeCheckViolation
}

// violatedColumn reports whether the violated constraint references column.
// Relies on PostgreSQL's default constraint naming (<table>_<column>_fkey).
func violatedColumn(err error, column string) bool {
	pgErr := pgError(err)
	return pgErr != nil && strings.Contains(pgErr.ConstraintName, column)
}
