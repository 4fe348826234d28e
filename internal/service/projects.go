package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/logging"
	"trouvemamission-service/internal/metrics"
)

func normalizeProject(p domain.Project) domain.Project {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.Client = strings.TrimSpace(p.Client)
	p.ProjectManager = strings.TrimSpace(p.ProjectManager)
	p.Skills = domain.NewSkillSet(p.Skills...)
	if p.Status == "" {
		p.Status = domain.ProjectStarting
	}
	return p
}

// CreateProject создаёт активный проект.
func (s *Service) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	p = normalizeProject(p)
	p.Active = true
	if err := ValidateProject(p); err != nil {
		return domain.Project{}, err
	}
	return s.repo.CreateProject(ctx, p)
}

// GetProject возвращает проект.
func (s *Service) GetProject(ctx context.Context, id int64) (domain.Project, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Project{}, err
	}
	return s.repo.GetProject(ctx, id)
}

// ListProjects возвращает проекты по фильтру.
func (s *Service) ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown project status")
	}
	filter.Client = strings.TrimSpace(filter.Client)
	return s.repo.ListProjects(ctx, filter)
}

// UpdateProject обновляет проект.
// Переоткрытие закрытого проекта запрещено, если кто-то из его сотрудников уже занят на другом открытом проекте.
// Закрытие проекта освобождает сотрудников, у которых не осталось открытых назначений.
// Переоткрытие возвращает свободных сотрудников проекта в EN_MISSION.
func (s *Service) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	ctx, cancel := s.longOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", p.ID); err != nil {
		return domain.Project{}, err
	}
	p = normalizeProject(p)
	if err := ValidateProject(p); err != nil {
		return domain.Project{}, err
	}
	ctx = logging.WithLogProjectID(ctx, p.ID)

	var updated domain.Project
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.trMgr.Do(ctx, func(ctx context.Context) error {
			current, err := s.repo.LockProject(ctx, p.ID, true)
			if err != nil {
				return err
			}
			members, err := s.projectMembers(ctx, p.ID)
			if err != nil {
				return err
			}
			reopening := current.Status.Closed() && p.Status.Open()
			var idle []int64
			if reopening {
				if idle, err = s.guardReopen(ctx, p.ID, members); err != nil {
					return err
				}
			}
			updated, err = s.repo.UpdateProject(ctx, p)
			if err != nil {
				return err
			}
			if reopening && len(idle) > 0 {
				changed, err := s.repo.SetCollaboratorsStatus(ctx, idle, domain.CollaboratorOnMission)
				if err != nil {
					return err
				}
				metrics.AddStatusCascades(string(domain.CollaboratorOnMission), changed)
				slog.InfoContext(ctx, "project reopened, collaborators back on mission", "collaborators", idle)
			}
			if current.Status.Open() && updated.Status.Closed() {
				released, err := s.releaseCollaborators(ctx, members)
				if err != nil {
					return err
				}
				if len(released) > 0 {
					slog.InfoContext(ctx, "project closed, collaborators released", "released", released)
				}
			}
			return nil
		})
	})
	if err != nil {
		return domain.Project{}, logging.WrapError(ctx, err)
	}
	return updated, nil
}

// projectMembers возвращает ID сотрудников с назначениями на проект, по возрастанию.
func (s *Service) projectMembers(ctx context.Context, projectID int64) ([]int64, error) {
	assignments, err := s.repo.ListAssignments(ctx, domain.AssignmentFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.CollaboratorID)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// guardReopen проверяет, что переоткрытие не даст сотруднику второе открытое назначение.
// Блокирует строки сотрудников проекта и возвращает тех из них, кто сейчас DISPONIBLE.
func (s *Service) guardReopen(ctx context.Context, projectID int64, members []int64) ([]int64, error) {
	if len(members) == 0 {
		return nil, nil
	}
	var idle []int64
	for _, id := range members {
		c, err := s.repo.LockCollaborator(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.Status == domain.CollaboratorAvailable {
			idle = append(idle, id)
		}
	}
	busy, err := s.repo.ListAssignments(ctx, domain.AssignmentFilter{CollaboratorIDs: members, OnlyOpen: true})
	if err != nil {
		return nil, err
	}
	for _, a := range busy {
		if a.ProjectID != projectID {
			return nil, domain.ErrReopenConflict
		}
	}
	return idle, nil
}

// DeactivateProject мягко удаляет проект. Новые назначения на него невозможны.
func (s *Service) DeactivateProject(ctx context.Context, id int64) (domain.Project, error) {
	return s.setProjectActive(ctx, id, false)
}

// ReactivateProject возвращает проект.
func (s *Service) ReactivateProject(ctx context.Context, id int64) (domain.Project, error) {
	return s.setProjectActive(ctx, id, true)
}

func (s *Service) setProjectActive(ctx context.Context, id int64, active bool) (domain.Project, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Project{}, err
	}
	return s.repo.SetProjectActive(ctx, id, active)
}

// DeleteProject удаляет проект без назначений.
func (s *Service) DeleteProject(ctx context.Context, id int64) error {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return err
	}
	return s.trMgr.Do(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockProject(ctx, id, true); err != nil {
			return err
		}
		count, err := s.repo.CountAssignments(ctx, domain.AssignmentFilter{ProjectID: id})
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrHasAssignments
		}
		return s.repo.DeleteProject(ctx, id)
	})
}

// ProjectStats возвращает агрегаты по проектам.
func (s *Service) ProjectStats(ctx context.Context) (domain.ProjectStats, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	return s.repo.FetchProjectStats(ctx, s.statsWindow())
}
