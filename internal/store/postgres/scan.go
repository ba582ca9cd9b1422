package postgres

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	codeInvalidText = "22P02"
	codeForeignKey  = "23503"
)

func textOrEmpty(t pgtype.Text) string {
	if t.Valid {
		return t.String
	}
	return ""
}

func timestamptzOrZero(t pgtype.Timestamptz) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time
}

func pgCode(err error) string {
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return ""
}

// isBadID reports a uuid column compared against a malformed id. Callers treat it as not found.
func isBadID(err error) bool {
	return pgCode(err) == codeInvalidText
}

// isMissingRef reports a write that pointed at a row that does not exist.
func isMissingRef(err error) bool {
	code := pgCode(err)
	return code == codeInvalidText || code == codeForeignKey
}

func uuidOrEmpty(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
