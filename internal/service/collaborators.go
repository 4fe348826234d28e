package service

import (
	"context"
	"strings"

	"trouvemamission-service/internal/domain"
)

func normalizeCollaborator(c domain.Collaborator) domain.Collaborator {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Role = strings.TrimSpace(c.Role)
	c.Grade = strings.TrimSpace(c.Grade)
	c.Skills = domain.NewSkillSet(c.Skills...)
	if c.Status == "" {
		c.Status = domain.CollaboratorAvailable
	}
	return c
}

// CreateCollaborator создаёт активного сотрудника.
func (s *Service) CreateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	c = normalizeCollaborator(c)
	c.Active = true
	if err := ValidateCollaborator(c); err != nil {
		return domain.Collaborator{}, err
	}
	return s.repo.CreateCollaborator(ctx, c)
}

// GetCollaborator возвращает сотрудника.
func (s *Service) GetCollaborator(ctx context.Context, id int64) (domain.Collaborator, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Collaborator{}, err
	}
	return s.repo.GetCollaborator(ctx, id)
}

// ListCollaborators возвращает сотрудников по фильтру.
func (s *Service) ListCollaborators(ctx context.Context, filter domain.CollaboratorFilter) ([]domain.Collaborator, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown collaborator status")
	}
	return s.repo.ListCollaborators(ctx, filter)
}

// UpdateCollaborator обновляет карточку сотрудника. Флаг active меняется отдельными операциями.
func (s *Service) UpdateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", c.ID); err != nil {
		return domain.Collaborator{}, err
	}
	c = normalizeCollaborator(c)
	if err := ValidateCollaborator(c); err != nil {
		return domain.Collaborator{}, err
	}
	return s.repo.UpdateCollaborator(ctx, c)
}

// DeactivateCollaborator мягко удаляет сотрудника. Назначения остаются.
func (s *Service) DeactivateCollaborator(ctx context.Context, id int64) (domain.Collaborator, error) {
	return s.setCollaboratorActive(ctx, id, false)
}

// ReactivateCollaborator возвращает сотрудника в работу.
func (s *Service) ReactivateCollaborator(ctx context.Context, id int64) (domain.Collaborator, error) {
	return s.setCollaboratorActive(ctx, id, true)
}

func (s *Service) setCollaboratorActive(ctx context.Context, id int64, active bool) (domain.Collaborator, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.Collaborator{}, err
	}
	return s.repo.SetCollaboratorActive(ctx, id, active)
}

// DeleteCollaborator удаляет сотрудника, у которого нет назначений.
func (s *Service) DeleteCollaborator(ctx context.Context, id int64) error {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return err
	}
	return s.trMgr.Do(ctx, func(ctx context.Context) error {
		if _, err := s.repo.LockCollaborator(ctx, id); err != nil {
			return err
		}
		count, err := s.repo.CountAssignments(ctx, domain.AssignmentFilter{CollaboratorIDs: []int64{id}})
		if err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrHasAssignments
		}
		return s.repo.DeleteCollaborator(ctx, id)
	})
}

// CollaboratorStats возвращает агрегаты по сотрудникам.
func (s *Service) CollaboratorStats(ctx context.Context) (domain.CollaboratorStats, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	return s.repo.FetchCollaboratorStats(ctx, topSkillsLimit)
}
