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

// CreateAssignmentInput описывает запрос на назначение.
type CreateAssignmentInput struct {
	CollaboratorID int64
	ProjectID      int64
	Role           string
	Notes          string
}

// CreateAssignment создаёт назначение, если пара проходит проверку допуска.
// Проверка и вставка выполняются в одной транзакции под блокировкой строки сотрудника,
// поэтому два параллельных вызова для одного сотрудника не могут оба завершиться успешно.
func (s *Service) CreateAssignment(ctx context.Context, in CreateAssignmentInput) (domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateCreateAssignment(in); err != nil {
		return domain.Assignment{}, err
	}
	ctx = logging.WithLogCollaboratorID(ctx, in.CollaboratorID)
	ctx = logging.WithLogProjectID(ctx, in.ProjectID)

	var created domain.Assignment
	err := s.withRetry(ctx, func(ctx context.Context) error {
		return s.trMgr.Do(ctx, func(ctx context.Context) error {
			c, err := s.repo.LockCollaborator(ctx, in.CollaboratorID)
			if err != nil {
				return err
			}
			p, err := s.repo.LockProject(ctx, in.ProjectID, false)
			if err != nil {
				return err
			}
			occupying, err := s.repo.ListAssignments(ctx, domain.AssignmentFilter{
				CollaboratorIDs: []int64{c.ID},
				OnlyOpen:        true,
			})
			if err != nil {
				return err
			}
			if err := evaluateEligibility(c, p, occupying); err != nil {
				return err
			}
			created, err = s.repo.CreateAssignment(ctx, domain.NewAssignment(c, p, in.Role, in.Notes))
			if err != nil {
				return err
			}
			if c.Status != domain.CollaboratorOnMission {
				changed, err := s.repo.SetCollaboratorsStatus(ctx, []int64{c.ID}, domain.CollaboratorOnMission)
				if err != nil {
					return err
				}
				metrics.AddStatusCascades(string(domain.CollaboratorOnMission), changed)
			}
			return nil
		})
	})
	if err != nil {
		recordRejection(ctx, err)
		return domain.Assignment{}, logging.WrapError(ctx, err)
	}
	metrics.IncAssignmentsCreated()
	slog.InfoContext(logging.WithLogAssignmentID(ctx, created.ID), "assignment created")
	return created, nil
}

// UpdateAssignment меняет роль и заметки. Пара сотрудник/проект неизменна.
func (s *Service) UpdateAssignment(ctx context.Context, id int64, role, notes string) (domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Assignment{}, err
	}
	if err := validateAssignmentDetails(role, notes); err != nil {
		return domain.Assignment{}, err
	}
	return s.repo.UpdateAssignment(ctx, id, strings.TrimSpace(role), strings.TrimSpace(notes))
}

// DeactivateAssignment снимает явный флаг активности. Статус сотрудника не меняется.
func (s *Service) DeactivateAssignment(ctx context.Context, id int64) (domain.Assignment, error) {
	return s.setAssignmentActive(ctx, id, false)
}

// ReactivateAssignment возвращает явный флаг активности.
func (s *Service) ReactivateAssignment(ctx context.Context, id int64) (domain.Assignment, error) {
	return s.setAssignmentActive(ctx, id, true)
}

func (s *Service) setAssignmentActive(ctx context.Context, id int64, active bool) (domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Assignment{}, err
	}
	return s.repo.SetAssignmentActive(ctx, id, active)
}

// RemoveAssignment удаляет одно назначение и освобождает сотрудника, если других открытых назначений нет.
func (s *Service) RemoveAssignment(ctx context.Context, id int64) (domain.RemovalResult, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.RemovalResult{}, err
	}
	ctx = logging.WithLogAssignmentID(ctx, id)

	var result domain.RemovalResult
	err := s.trMgr.Do(ctx, func(ctx context.Context) error {
		removed, err := s.repo.DeleteAssignments(ctx, domain.AssignmentFilter{IDs: []int64{id}})
		if err != nil {
			return err
		}
		if len(removed) == 0 {
			return domain.ErrAssignmentNotFound
		}
		result, err = s.releaseAfterRemoval(ctx, removed)
		return err
	})
	if err != nil {
		return domain.RemovalResult{}, logging.WrapError(ctx, err)
	}
	metrics.AddAssignmentsRemoved(result.Removed)
	return result, nil
}

// RemoveCollaboratorFromAllProjects удаляет все назначения сотрудника и переводит его в DISPONIBLE.
// Повторный вызов возвращает Removed = 0.
func (s *Service) RemoveCollaboratorFromAllProjects(ctx context.Context, collaboratorID int64) (domain.RemovalResult, error) {
	ctx, cancel := s.longOperationContext(ctx)
	defer cancel()

	if err := ValidateID("collaboratorId", collaboratorID); err != nil {
		return domain.RemovalResult{}, err
	}
	ctx = logging.WithLogCollaboratorID(ctx, collaboratorID)

	var result domain.RemovalResult
	err := s.trMgr.Do(ctx, func(ctx context.Context) error {
		c, err := s.repo.LockCollaborator(ctx, collaboratorID)
		if err != nil {
			return err
		}
		removed, err := s.repo.DeleteAssignments(ctx, domain.AssignmentFilter{CollaboratorIDs: []int64{collaboratorID}})
		if err != nil {
			return err
		}
		result = domain.RemovalResult{Removed: len(removed), Released: []int64{}}
		if c.Status == domain.CollaboratorAvailable {
			return nil
		}
		changed, err := s.repo.SetCollaboratorsStatus(ctx, []int64{collaboratorID}, domain.CollaboratorAvailable)
		if err != nil {
			return err
		}
		metrics.AddStatusCascades(string(domain.CollaboratorAvailable), changed)
		result.Released = append(result.Released, collaboratorID)
		return nil
	})
	if err != nil {
		return domain.RemovalResult{}, logging.WrapError(ctx, err)
	}
	metrics.AddAssignmentsRemoved(result.Removed)
	slog.InfoContext(ctx, "collaborator removed from all projects", "removed", result.Removed)
	return result, nil
}

// RemoveCollaboratorsFromProject удаляет назначения перечисленных сотрудников на проект.
func (s *Service) RemoveCollaboratorsFromProject(ctx context.Context, projectID int64, collaboratorIDs []int64) (domain.RemovalResult, error) {
	if len(collaboratorIDs) == 0 {
		return domain.RemovalResult{}, domain.NewValidationError("collaboratorIds", "must not be empty")
	}
	for _, id := range collaboratorIDs {
		if err := ValidateID("collaboratorIds", id); err != nil {
			return domain.RemovalResult{}, err
		}
	}
	return s.removeFromProject(ctx, projectID, collaboratorIDs)
}

// RemoveAllCollaboratorsFromProject удаляет все назначения на проект.
func (s *Service) RemoveAllCollaboratorsFromProject(ctx context.Context, projectID int64) (domain.RemovalResult, error) {
	return s.removeFromProject(ctx, projectID, nil)
}

func (s *Service) removeFromProject(ctx context.Context, projectID int64, collaboratorIDs []int64) (domain.RemovalResult, error) {
	ctx, cancel := s.longOperationContext(ctx)
	defer cancel()

	if err := ValidateID("projectId", projectID); err != nil {
		return domain.RemovalResult{}, err
	}
	ctx = logging.WithLogProjectID(ctx, projectID)

	var result domain.RemovalResult
	err := s.trMgr.Do(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetProject(ctx, projectID); err != nil {
			return err
		}
		removed, err := s.repo.DeleteAssignments(ctx, domain.AssignmentFilter{
			ProjectID:       projectID,
			CollaboratorIDs: collaboratorIDs,
		})
		if err != nil {
			return err
		}
		result, err = s.releaseAfterRemoval(ctx, removed)
		return err
	})
	if err != nil {
		return domain.RemovalResult{}, logging.WrapError(ctx, err)
	}
	metrics.AddAssignmentsRemoved(result.Removed)
	slog.InfoContext(ctx, "collaborators removed from project", "removed", result.Removed, "released", len(result.Released))
	return result, nil
}

// releaseAfterRemoval считает удалённые назначения и освобождает сотрудников,
// у которых было удалено открытое назначение и не осталось других.
// Удаление назначения на закрытый проект статус сотрудника не трогает.
func (s *Service) releaseAfterRemoval(ctx context.Context, removed []domain.Assignment) (domain.RemovalResult, error) {
	var candidates []int64
	for _, a := range removed {
		if a.OccupiesCollaborator() {
			candidates = append(candidates, a.CollaboratorID)
		}
	}
	released, err := s.releaseCollaborators(ctx, candidates)
	if err != nil {
		return domain.RemovalResult{}, err
	}
	return domain.RemovalResult{Removed: len(removed), Released: released}, nil
}

// releaseCollaborators переводит в DISPONIBLE тех сотрудников из ids, кто сейчас EN_MISSION
// и не занят ни одним назначением на открытый проект. Должна вызываться внутри транзакции.
// Сначала берутся блокировки строк по возрастанию ID, затем под ними читаются открытые назначения.
func (s *Service) releaseCollaborators(ctx context.Context, ids []int64) ([]int64, error) {
	released := []int64{}
	if len(ids) == 0 {
		return released, nil
	}
	ids = slices.Clone(ids)
	slices.Sort(ids)
	ids = slices.Compact(ids)

	var onMission []int64
	for _, id := range ids {
		c, err := s.repo.LockCollaborator(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.Status == domain.CollaboratorOnMission {
			onMission = append(onMission, id)
		}
	}
	if len(onMission) == 0 {
		return released, nil
	}

	stillBusy, err := s.repo.ListAssignments(ctx, domain.AssignmentFilter{CollaboratorIDs: onMission, OnlyOpen: true})
	if err != nil {
		return nil, err
	}
	busy := make(map[int64]struct{}, len(stillBusy))
	for _, a := range stillBusy {
		busy[a.CollaboratorID] = struct{}{}
	}
	var free []int64
	for _, id := range onMission {
		if _, ok := busy[id]; !ok {
			free = append(free, id)
		}
	}
	if len(free) == 0 {
		return released, nil
	}
	changed, err := s.repo.SetCollaboratorsStatus(ctx, free, domain.CollaboratorAvailable)
	if err != nil {
		return nil, err
	}
	metrics.AddStatusCascades(string(domain.CollaboratorAvailable), changed)
	return append(released, free...), nil
}
