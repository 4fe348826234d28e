package service

import (
	"context"

	"trouvemamission-service/internal/domain"
)

// GetAssignment возвращает назначение по ID.
func (s *Service) GetAssignment(ctx context.Context, id int64) (domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Assignment{}, err
	}
	return s.repo.GetAssignment(ctx, id)
}

// ListAssignments возвращает все назначения.
func (s *Service) ListAssignments(ctx context.Context) ([]domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	return s.repo.ListAssignments(ctx, domain.AssignmentFilter{})
}

// GetActiveAssignments возвращает назначения на проекты в открытом статусе.
func (s *Service) GetActiveAssignments(ctx context.Context) ([]domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	return s.repo.ListAssignments(ctx, domain.AssignmentFilter{OnlyOpen: true})
}

// GetAssignmentsByProject возвращает назначения проекта.
func (s *Service) GetAssignmentsByProject(ctx context.Context, projectID int64) ([]domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("projectId", projectID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.repo.ListAssignments(ctx, domain.AssignmentFilter{ProjectID: projectID})
}

// GetAssignmentsByCollaborator возвращает назначения сотрудника.
func (s *Service) GetAssignmentsByCollaborator(ctx context.Context, collaboratorID int64) ([]domain.Assignment, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("collaboratorId", collaboratorID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCollaborator(ctx, collaboratorID); err != nil {
		return nil, err
	}
	return s.repo.ListAssignments(ctx, domain.AssignmentFilter{CollaboratorIDs: []int64{collaboratorID}})
}

// CanRemoveCollaborator сообщает, есть ли у сотрудника назначения, которые можно снять.
// Для неизвестного сотрудника возвращает ErrCollaboratorNotFound, как и выборка по сотруднику.
func (s *Service) CanRemoveCollaborator(ctx context.Context, collaboratorID int64) (bool, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("collaboratorId", collaboratorID); err != nil {
		return false, err
	}
	if _, err := s.repo.GetCollaborator(ctx, collaboratorID); err != nil {
		return false, err
	}
	count, err := s.repo.CountAssignments(ctx, domain.AssignmentFilter{CollaboratorIDs: []int64{collaboratorID}})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RemovalStats возвращает показатели экрана снятия с проектов.
func (s *Service) RemovalStats(ctx context.Context) (domain.RemovalStats, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	return s.repo.FetchRemovalStats(ctx, s.statsWindow())
}

// ListSkills возвращает справочник навыков для форм и фильтров.
func (s *Service) ListSkills(ctx context.Context) ([]string, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	return s.repo.ListSkills(ctx)
}
