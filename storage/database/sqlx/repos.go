// Package sqlxrepos implements the core repositories on Postgres via sqlx.
// Each repository converts between its row struct and the core model, the
// same shape an ORM-generated variant would have.
package sqlxrepos

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

// ext resolves the executor for a call: the service-provided override (a
// transaction, usually) or the repository's own pool.
func ext(db *sqlx.DB, exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if e, ok := exec[0].(sqlx.ExtContext); ok {
			return e
		}
	}
	return db
}

// trapNoRowsErr maps psql "no rows" to the given sentinel.
func trapNoRowsErr(err, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation, optionally on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	if !ok {
		return false
	}
	const uniqueViolation = "23505"
	if string(pqErr.Code) != uniqueViolation {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
