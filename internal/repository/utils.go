package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"trouvemamission-service/internal/domain"
)

// Общие ошибки репозитория.
var (
	ErrBuildQuery   = errors.New("failed to build SQL query")
	ErrExecuteQuery = errors.New("failed to execute query")
	ErrScanResult   = errors.New("failed to scan result")
	ErrEmptyFilter  = errors.New("refusing to run bulk statement without a filter")
)

// Коды ошибок PostgreSQL, которые означают конфликт параллельных транзакций.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
)

// wrapExecError приводит ошибку драйвера к доменной, если это конфликт, иначе оборачивает в ErrExecuteQuery.
func wrapExecError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgUniqueViolation:
			return fmt.Errorf("%w: %s", domain.ErrConcurrencyConflict, pgErr.Message)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrHasAssignments, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %v", ErrExecuteQuery, err)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func statusStrings(statuses []domain.ProjectStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func lowerAll(values []string) []string {
	set := domain.NewSkillSet(values...)
	out := make([]string, len(set))
	for i, v := range set {
		out[i] = strings.ToLower(v)
	}
	return out
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
