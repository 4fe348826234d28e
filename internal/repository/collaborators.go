package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"trouvemamission-service/internal/domain"
)

var collaboratorColumns = []string{
	"id", "name", "email", "phone", "role", "grade", "status",
	"experience_years", "skills", "active", "created_at", "updated_at",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCollaborator(row scanner) (domain.Collaborator, error) {
	var (
		c      domain.Collaborator
		skills []string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Role, &c.Grade, &c.Status,
		&c.ExperienceYears, &skills, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	c.Skills = domain.NewSkillSet(skills...)
	return c, err
}

// CreateCollaborator сохраняет нового сотрудника.
func (s *Storage) CreateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	now := s.nower.Now()
	query, args, err := s.sb.
		Insert("collaborators").
		Columns("name", "email", "phone", "role", "grade", "status", "experience_years", "skills", "active", "created_at", "updated_at").
		Values(c.Name, c.Email, c.Phone, c.Role, c.Grade, string(c.Status), c.ExperienceYears, c.Skills.Strings(), c.Active, now, now).
		Suffix("RETURNING " + joinColumns(collaboratorColumns)).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build insert collaborator query", "error", err)
		return domain.Collaborator{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	created, err := scanCollaborator(s.conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert collaborator", "error", err)
		return domain.Collaborator{}, wrapExecError(err)
	}
	return created, nil
}

// GetCollaborator возвращает сотрудника по ID.
func (s *Storage) GetCollaborator(ctx context.Context, id int64) (domain.Collaborator, error) {
	return s.getCollaborator(ctx, id, "")
}

// LockCollaborator возвращает сотрудника, блокируя строку на запись.
// Параллельные создания назначений для одного сотрудника выстраиваются в очередь на этой блокировке.
func (s *Storage) LockCollaborator(ctx context.Context, id int64) (domain.Collaborator, error) {
	return s.getCollaborator(ctx, id, "FOR UPDATE")
}

func (s *Storage) getCollaborator(ctx context.Context, id int64, lock string) (domain.Collaborator, error) {
	builder := s.sb.
		Select(collaboratorColumns...).
		From("collaborators").
		Where(squirrel.Eq{"id": id})
	if lock != "" {
		builder = builder.Suffix(lock)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build select collaborator query", "error", err)
		return domain.Collaborator{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	c, err := scanCollaborator(s.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collaborator{}, domain.ErrCollaboratorNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to scan collaborator", "error", err, "collaborator_id", id)
		return domain.Collaborator{}, wrapExecError(err)
	}
	return c, nil
}

// ListCollaborators возвращает сотрудников по фильтру, упорядоченных по имени.
func (s *Storage) ListCollaborators(ctx context.Context, filter domain.CollaboratorFilter) ([]domain.Collaborator, error) {
	builder := s.sb.
		Select(collaboratorColumns...).
		From("collaborators").
		OrderBy("name ASC", "id ASC")
	if filter.Active != nil {
		builder = builder.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if len(filter.Skills) > 0 {
		builder = builder.Where(skillsOverlap("skills", filter.Skills))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build list collaborators query", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query collaborators", "error", err)
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	result := []domain.Collaborator{}
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			slog.ErrorContext(ctx, "failed to scan collaborator", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

// UpdateCollaborator перезаписывает изменяемые поля сотрудника.
func (s *Storage) UpdateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	return s.updateCollaborator(ctx, c.ID, map[string]any{
		"name":             c.Name,
		"email":            c.Email,
		"phone":            c.Phone,
		"role":             c.Role,
		"grade":            c.Grade,
		"status":           string(c.Status),
		"experience_years": c.ExperienceYears,
		"skills":           c.Skills.Strings(),
	})
}

// SetCollaboratorActive меняет флаг мягкого удаления.
func (s *Storage) SetCollaboratorActive(ctx context.Context, id int64, active bool) (domain.Collaborator, error) {
	return s.updateCollaborator(ctx, id, map[string]any{"active": active})
}

func (s *Storage) updateCollaborator(ctx context.Context, id int64, fields map[string]any) (domain.Collaborator, error) {
	fields["updated_at"] = s.nower.Now()
	query, args, err := s.sb.
		Update("collaborators").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(collaboratorColumns)).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build update collaborator query", "error", err)
		return domain.Collaborator{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	c, err := scanCollaborator(s.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Collaborator{}, domain.ErrCollaboratorNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to update collaborator", "error", err, "collaborator_id", id)
		return domain.Collaborator{}, wrapExecError(err)
	}
	return c, nil
}

// SetCollaboratorsStatus переводит сотрудников в статус и возвращает число изменённых строк.
func (s *Storage) SetCollaboratorsStatus(ctx context.Context, ids []int64, status domain.CollaboratorStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := s.sb.
		Update("collaborators").
		Set("status", string(status)).
		Set("updated_at", s.nower.Now()).
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build update status query", "error", err)
		return 0, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update collaborators status", "error", err)
		return 0, wrapExecError(err)
	}
	return tag.RowsAffected(), nil
}

// DeleteCollaborator удаляет сотрудника без назначений.
func (s *Storage) DeleteCollaborator(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Delete("collaborators").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete collaborator", "error", err, "collaborator_id", id)
		return wrapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCollaboratorNotFound
	}
	return nil
}

// skillsOverlap условие "хотя бы один навык из списка", регистр не учитывается.
func skillsOverlap(column string, skills []string) squirrel.Sqlizer {
	return squirrel.Expr("EXISTS (SELECT 1 FROM unnest("+column+") AS s WHERE lower(s) = ANY(?))", lowerAll(skills))
}
