package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"trouvemamission-service/internal/domain"
)

// Живой статус проекта берётся из JOIN, снимок хранится в самой строке назначения.
var assignmentColumns = []string{
	"a.id", "a.collaborator_id", "a.project_id", "a.role", "a.notes", "a.active",
	"a.collaborator_name", "a.collaborator_email", "a.collaborator_role",
	"a.project_name", "a.project_description", "a.project_client", "a.project_status",
	"a.project_start_date", "a.project_end_date",
	"p.status", "a.created_at", "a.updated_at",
}

const assignmentsFrom = "assignments a JOIN projects p ON p.id = a.project_id"

func scanAssignment(row scanner) (domain.Assignment, error) {
	var (
		a          domain.Assignment
		start, end *time.Time
	)
	err := row.Scan(&a.ID, &a.CollaboratorID, &a.ProjectID, &a.Role, &a.Notes, &a.Active,
		&a.Collaborator.Name, &a.Collaborator.Email, &a.Collaborator.Role,
		&a.Project.Name, &a.Project.Description, &a.Project.Client, &a.Project.Status,
		&start, &end,
		&a.ProjectStatus, &a.CreatedAt, &a.UpdatedAt)
	if start != nil {
		a.Project.StartDate = *start
	}
	if end != nil {
		a.Project.EndDate = *end
	}
	a.ProjectOpen = a.ProjectStatus.Open()
	return a, err
}

// assignmentWhere переводит фильтр в условия над a/p.
func assignmentWhere(filter domain.AssignmentFilter) squirrel.And {
	where := squirrel.And{}
	if len(filter.IDs) > 0 {
		where = append(where, squirrel.Eq{"a.id": filter.IDs})
	}
	if len(filter.CollaboratorIDs) > 0 {
		where = append(where, squirrel.Eq{"a.collaborator_id": filter.CollaboratorIDs})
	}
	if filter.ProjectID != 0 {
		where = append(where, squirrel.Eq{"a.project_id": filter.ProjectID})
	}
	if filter.OnlyOpen {
		where = append(where, squirrel.Eq{"p.status": statusStrings(domain.OpenProjectStatuses)})
	}
	return where
}

// CreateAssignment сохраняет назначение вместе со снимком полей сотрудника и проекта.
func (s *Storage) CreateAssignment(ctx context.Context, a domain.Assignment) (domain.Assignment, error) {
	now := s.nower.Now()
	query, args, err := s.sb.
		Insert("assignments").
		Columns("collaborator_id", "project_id", "role", "notes", "active",
			"collaborator_name", "collaborator_email", "collaborator_role",
			"project_name", "project_description", "project_client", "project_status",
			"project_start_date", "project_end_date", "created_at", "updated_at").
		Values(a.CollaboratorID, a.ProjectID, a.Role, a.Notes, a.Active,
			a.Collaborator.Name, a.Collaborator.Email, a.Collaborator.Role,
			a.Project.Name, a.Project.Description, a.Project.Client, string(a.Project.Status),
			a.Project.StartDate, a.Project.EndDate, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build insert assignment query", "error", err)
		return domain.Assignment{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	var id int64
	if err := s.conn(ctx).QueryRow(ctx, query, args...).Scan(&id); err != nil {
		slog.ErrorContext(ctx, "failed to insert assignment", "error", err,
			"collaborator_id", a.CollaboratorID, "project_id", a.ProjectID)
		return domain.Assignment{}, wrapExecError(err)
	}
	return s.GetAssignment(ctx, id)
}

// GetAssignment возвращает назначение по ID.
func (s *Storage) GetAssignment(ctx context.Context, id int64) (domain.Assignment, error) {
	query, args, err := s.sb.
		Select(assignmentColumns...).
		From(assignmentsFrom).
		Where(squirrel.Eq{"a.id": id}).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build select assignment query", "error", err)
		return domain.Assignment{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	a, err := scanAssignment(s.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to scan assignment", "error", err, "assignment_id", id)
		return domain.Assignment{}, wrapExecError(err)
	}
	return a, nil
}

// ListAssignments возвращает назначения по фильтру, новые первыми.
func (s *Storage) ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error) {
	query, args, err := s.sb.
		Select(assignmentColumns...).
		From(assignmentsFrom).
		Where(assignmentWhere(filter)).
		OrderBy("a.created_at DESC", "a.id DESC").
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build list assignments query", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query assignments", "error", err)
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	result := []domain.Assignment{}
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			slog.ErrorContext(ctx, "failed to scan assignment", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// CountAssignments считает назначения по фильтру.
func (s *Storage) CountAssignments(ctx context.Context, filter domain.AssignmentFilter) (int64, error) {
	query, args, err := s.sb.
		Select("COUNT(*)").
		From(assignmentsFrom).
		Where(assignmentWhere(filter)).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	var count int64
	if err := s.conn(ctx).QueryRow(ctx, query, args...).Scan(&count); err != nil {
		slog.ErrorContext(ctx, "failed to count assignments", "error", err)
		return 0, wrapExecError(err)
	}
	return count, nil
}

// UpdateAssignment меняет роль и заметки назначения.
func (s *Storage) UpdateAssignment(ctx context.Context, id int64, role, notes string) (domain.Assignment, error) {
	return s.updateAssignment(ctx, id, map[string]any{"role": role, "notes": notes})
}

// SetAssignmentActive меняет явный флаг активности назначения.
func (s *Storage) SetAssignmentActive(ctx context.Context, id int64, active bool) (domain.Assignment, error) {
	return s.updateAssignment(ctx, id, map[string]any{"active": active})
}

func (s *Storage) updateAssignment(ctx context.Context, id int64, fields map[string]any) (domain.Assignment, error) {
	fields["updated_at"] = s.nower.Now()
	query, args, err := s.sb.
		Update("assignments").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build update assignment query", "error", err)
		return domain.Assignment{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update assignment", "error", err, "assignment_id", id)
		return domain.Assignment{}, wrapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	return s.GetAssignment(ctx, id)
}

// DeleteAssignments удаляет назначения по фильтру одной командой.
func (s *Storage) DeleteAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error) {
	if filter.Empty() {
		return nil, ErrEmptyFilter
	}
	query, args, err := s.sb.
		Delete("assignments a USING projects p").
		Where("p.id = a.project_id").
		Where(assignmentWhere(filter)).
		Suffix("RETURNING a.id, a.collaborator_id, a.project_id, p.status").
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build delete assignments query", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete assignments", "error", err)
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	removed := []domain.Assignment{}
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.CollaboratorID, &a.ProjectID, &a.ProjectStatus); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		a.ProjectOpen = a.ProjectStatus.Open()
		removed = append(removed, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapExecError(err)
	}
	return removed, nil
}
