package repository

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
)

// ListSkills собирает справочник навыков из карточек сотрудников и проектов.
func (s *Storage) ListSkills(ctx context.Context) ([]string, error) {
	union := s.sb.Select("unnest(skills) AS name").From("collaborators").
		Suffix("UNION SELECT unnest(skills) AS name FROM projects")
	query, args, err := s.sb.
		Select("DISTINCT ON (lower(name)) name").
		FromSelect(union, "s").
		Where(squirrel.NotEq{"name": ""}).
		OrderBy("lower(name)", "name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query skills", "error", err)
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	skills := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		skills = append(skills, name)
	}
	return skills, rows.Err()
}
