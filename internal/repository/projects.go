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

var projectColumns = []string{
	"id", "name", "description", "client", "project_manager", "status", "start_date", "end_date",
	"team_size", "progress", "skills", "active", "created_at", "updated_at",
}

func scanProject(row scanner) (domain.Project, error) {
	var (
		p      domain.Project
		skills []string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Client, &p.ProjectManager, &p.Status, &p.StartDate, &p.EndDate,
		&p.TeamSize, &p.Progress, &skills, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	p.Skills = domain.NewSkillSet(skills...)
	return p, err
}

// CreateProject сохраняет новый проект.
func (s *Storage) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	now := s.nower.Now()
	query, args, err := s.sb.
		Insert("projects").
		Columns("name", "description", "client", "project_manager", "status", "start_date", "end_date",
			"team_size", "progress", "skills", "active", "created_at", "updated_at").
		Values(p.Name, p.Description, p.Client, p.ProjectManager, string(p.Status), p.StartDate, p.EndDate,
			p.TeamSize, p.Progress, p.Skills.Strings(), p.Active, now, now).
		Suffix("RETURNING " + joinColumns(projectColumns)).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build insert project query", "error", err)
		return domain.Project{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	created, err := scanProject(s.conn(ctx).QueryRow(ctx, query, args...))
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert project", "error", err)
		return domain.Project{}, wrapExecError(err)
	}
	return created, nil
}

// GetProject возвращает проект по ID.
func (s *Storage) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	return s.getProject(ctx, id, "")
}

// LockProject возвращает проект под блокировкой строки.
func (s *Storage) LockProject(ctx context.Context, id int64, exclusive bool) (domain.Project, error) {
	if exclusive {
		return s.getProject(ctx, id, "FOR UPDATE")
	}
	return s.getProject(ctx, id, "FOR SHARE")
}

func (s *Storage) getProject(ctx context.Context, id int64, lock string) (domain.Project, error) {
	builder := s.sb.
		Select(projectColumns...).
		From("projects").
		Where(squirrel.Eq{"id": id})
	if lock != "" {
		builder = builder.Suffix(lock)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build select project query", "error", err)
		return domain.Project{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	p, err := scanProject(s.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to scan project", "error", err, "project_id", id)
		return domain.Project{}, wrapExecError(err)
	}
	return p, nil
}

// ListProjects возвращает проекты по фильтру, свежие первыми.
func (s *Storage) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	builder := s.sb.
		Select(projectColumns...).
		From("projects").
		OrderBy("start_date DESC", "id DESC")
	if filter.Active != nil {
		builder = builder.Where(squirrel.Eq{"active": *filter.Active})
	}
	if filter.Status != "" {
		builder = builder.Where(squirrel.Eq{"status": string(filter.Status)})
	}
	if filter.Client != "" {
		builder = builder.Where(squirrel.ILike{"client": "%" + filter.Client + "%"})
	}
	if len(filter.Skills) > 0 {
		builder = builder.Where(skillsOverlap("skills", filter.Skills))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build list projects query", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query projects", "error", err)
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	result := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			slog.ErrorContext(ctx, "failed to scan project", "error", err)
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// UpdateProject перезаписывает изменяемые поля проекта.
func (s *Storage) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	return s.updateProject(ctx, p.ID, map[string]any{
		"name":            p.Name,
		"description":     p.Description,
		"client":          p.Client,
		"project_manager": p.ProjectManager,
		"status":          string(p.Status),
		"start_date":      p.StartDate,
		"end_date":        p.EndDate,
		"team_size":       p.TeamSize,
		"progress":        p.Progress,
		"skills":          p.Skills.Strings(),
	})
}

// SetProjectActive меняет флаг мягкого удаления проекта.
func (s *Storage) SetProjectActive(ctx context.Context, id int64, active bool) (domain.Project, error) {
	return s.updateProject(ctx, id, map[string]any{"active": active})
}

func (s *Storage) updateProject(ctx context.Context, id int64, fields map[string]any) (domain.Project, error) {
	fields["updated_at"] = s.nower.Now()
	query, args, err := s.sb.
		Update("projects").
		SetMap(fields).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(projectColumns)).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build update project query", "error", err)
		return domain.Project{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	p, err := scanProject(s.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to update project", "error", err, "project_id", id)
		return domain.Project{}, wrapExecError(err)
	}
	return p, nil
}

// DeleteProject удаляет проект без назначений.
func (s *Storage) DeleteProject(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Delete("projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete project", "error", err, "project_id", id)
		return wrapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}
