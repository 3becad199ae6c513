package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a postgres unique constraint
// violation on the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
	}
	return false
}

func parseUUID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return parsed, nil
}

// setClause accumulates "column = $n" assignments for a partial UPDATE.
type setClause struct {
	assignments []string
	args        []interface{}
}

func (s *setClause) add(column string, value interface{}) {
	s.args = append(s.args, value)
	s.assignments = append(s.assignments, fmt.Sprintf("%s = $%d", column, len(s.args)))
}

func (s *setClause) empty() bool {
	return len(s.assignments) == 0
}

// statement renders the UPDATE with the id bound as the last argument.
func (s *setClause) statement(table string, id uuid.UUID) (string, []interface{}) {
	args := append(s.args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(s.assignments, ", "), len(args))
	return query, args
}
