package repository

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/Masterminds/squirrel"

	"trouvemamission-service/internal/domain"
)

// Проект считается критичным, если он открыт, заканчивается в окне и прогресс ниже порога.
const criticalProgressThreshold = 50

// FetchProjectStats собирает агрегаты по проектам одним запросом.
func (s *Storage) FetchProjectStats(ctx context.Context, window StatsWindow) (domain.ProjectStats, error) {
	open := statusStrings(domain.OpenProjectStatuses)
	query, args, err := s.sb.
		Select(
			"COUNT(*)",
		).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active AND status = ANY(?))", open)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE status = ?)", string(domain.ProjectFinished))).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active AND status = ANY(?) AND end_date <= ? AND progress < ?)",
			open, window.EndingBefore, criticalProgressThreshold)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active AND status = ANY(?) AND end_date < ?)", open, window.Now)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE updated_at >= ?)", window.RecentSince)).
		Column("COALESCE(AVG(progress) FILTER (WHERE active), 0)::float8").
		From("projects").
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build project stats query", "error", err)
		return domain.ProjectStats{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	var stats domain.ProjectStats
	err = s.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&stats.TotalProjects,
		&stats.ActiveProjects,
		&stats.CompletedProjects,
		&stats.CriticalProjects,
		&stats.OverdueProjects,
		&stats.RecentProjectUpdates,
		&stats.AverageProgress,
	)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch project stats", "error", err)
		return domain.ProjectStats{}, wrapExecError(err)
	}
	return stats, nil
}

// FetchCollaboratorStats собирает агрегаты по сотрудникам и распределение навыков.
// topSkills ограничивает списки самых частых и самых редких навыков, 0 отключает подсчёт навыков.
func (s *Storage) FetchCollaboratorStats(ctx context.Context, topSkills int) (domain.CollaboratorStats, error) {
	query, args, err := s.sb.
		Select("COUNT(*)").
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active)")).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active AND status = ?)", string(domain.CollaboratorOnMission))).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active AND status = ?)", string(domain.CollaboratorAvailable))).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE active AND status = ?)", string(domain.CollaboratorOnLeave))).
		From("collaborators").
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build collaborator stats query", "error", err)
		return domain.CollaboratorStats{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	var stats domain.CollaboratorStats
	if err := s.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&stats.Total, &stats.Active, &stats.OnMission, &stats.Free, &stats.OnLeave,
	); err != nil {
		slog.ErrorContext(ctx, "failed to fetch collaborator stats", "error", err)
		return domain.CollaboratorStats{}, wrapExecError(err)
	}

	stats.TopSkills = []domain.SkillCount{}
	stats.LeastUsedSkills = []domain.SkillCount{}
	stats.Skills = map[string]int64{}
	if topSkills <= 0 {
		return stats, nil
	}
	skillsSQL, skillsArgs, err := s.sb.
		Select("skill", "COUNT(*) AS cnt").
		FromSelect(
			s.sb.Select("unnest(skills) AS skill").From("collaborators").Where(squirrel.Eq{"active": true}),
			"s",
		).
		GroupBy("skill").
		OrderBy("cnt DESC", "skill ASC").
		ToSql()
	if err != nil {
		return domain.CollaboratorStats{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, skillsSQL, skillsArgs...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query skill counts", "error", err)
		return domain.CollaboratorStats{}, wrapExecError(err)
	}
	defer rows.Close()
	var all []domain.SkillCount
	for rows.Next() {
		var sc domain.SkillCount
		if err := rows.Scan(&sc.Name, &sc.Count); err != nil {
			return domain.CollaboratorStats{}, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		all = append(all, sc)
		stats.Skills[sc.Name] = sc.Count
	}
	if err := rows.Err(); err != nil {
		return domain.CollaboratorStats{}, wrapExecError(err)
	}

	stats.TopSkills = append(stats.TopSkills, all[:min(topSkills, len(all))]...)
	least := slices.Clone(all)
	slices.SortStableFunc(least, func(a, b domain.SkillCount) int {
		if a.Count != b.Count {
			return cmp.Compare(a.Count, b.Count)
		}
		return strings.Compare(a.Name, b.Name)
	})
	stats.LeastUsedSkills = append(stats.LeastUsedSkills, least[:min(topSkills, len(least))]...)
	return stats, nil
}

// FetchRemovalStats считает показатели экрана снятия с проектов.
// Активность здесь каноничная: явный флаг и открытый проект.
func (s *Storage) FetchRemovalStats(ctx context.Context, window StatsWindow) (domain.RemovalStats, error) {
	open := statusStrings(domain.OpenProjectStatuses)
	query, args, err := s.sb.
		Select().
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE a.active AND p.status = ANY(?))", open)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE a.active AND p.status = ANY(?) AND p.end_date <= ?)", open, window.EndingBefore)).
		Column(squirrel.Expr("COUNT(DISTINCT a.collaborator_id) FILTER (WHERE a.active AND p.status = ANY(?) AND p.end_date <= ?)", open, window.EndingBefore)).
		Column(squirrel.Expr("COUNT(*) FILTER (WHERE a.created_at >= ?)", window.RecentSince)).
		From(assignmentsFrom).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build removal stats query", "error", err)
		return domain.RemovalStats{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	var stats domain.RemovalStats
	if err := s.conn(ctx).QueryRow(ctx, query, args...).Scan(
		&stats.ActiveAssignments, &stats.EndingSoon, &stats.CollaboratorsToBeReleased, &stats.NewAssignments,
	); err != nil {
		slog.ErrorContext(ctx, "failed to fetch removal stats", "error", err)
		return domain.RemovalStats{}, wrapExecError(err)
	}
	return stats, nil
}
