package service

import (
	"context"
	"errors"
	"log/slog"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/metrics"
)

// evaluateEligibility применяет правила допуска по порядку, первая нарушенная определяет причину.
// occupying - назначения сотрудника на проекты в открытом статусе.
func evaluateEligibility(c domain.Collaborator, p domain.Project, occupying []domain.Assignment) error {
	reject := func(reason domain.EligibilityReason) *domain.EligibilityError {
		return &domain.EligibilityError{
			Reason:             reason,
			CollaboratorID:     c.ID,
			ProjectID:          p.ID,
			ProjectStatus:      p.Status,
			CollaboratorStatus: c.Status,
		}
	}
	switch {
	case !p.Active:
		return reject(domain.ReasonProjectInactive)
	case p.Status.Closed():
		return reject(domain.ReasonProjectClosed)
	case !c.Active:
		return reject(domain.ReasonCollaboratorInactive)
	case c.Status == domain.CollaboratorOnLeave:
		return reject(domain.ReasonCollaboratorOnLeave)
	}
	for _, a := range occupying {
		if a.CollaboratorID == c.ID && a.OccupiesCollaborator() {
			err := reject(domain.ReasonAlreadyAssigned)
			err.ConflictingAssignmentID = a.ID
			return err
		}
	}
	return nil
}

// CheckEligibility проверяет, можно ли назначить сотрудника на проект. Ничего не меняет.
func (s *Service) CheckEligibility(ctx context.Context, collaboratorID, projectID int64) error {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	if err := ValidateID("collaboratorId", collaboratorID); err != nil {
		return err
	}
	if err := ValidateID("projectId", projectID); err != nil {
		return err
	}
	c, err := s.repo.GetCollaborator(ctx, collaboratorID)
	if err != nil {
		return err
	}
	p, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return err
	}
	occupying, err := s.repo.ListAssignments(ctx, domain.AssignmentFilter{
		CollaboratorIDs: []int64{collaboratorID},
		OnlyOpen:        true,
	})
	if err != nil {
		return err
	}
	err = evaluateEligibility(c, p, occupying)
	recordRejection(ctx, err)
	return err
}

func recordRejection(ctx context.Context, err error) {
	var eligibility *domain.EligibilityError
	if errors.As(err, &eligibility) {
		metrics.IncEligibilityRejections(string(eligibility.Reason))
		slog.InfoContext(ctx, "assignment rejected", "reason", eligibility.Reason, "detail", eligibility.Error())
	}
}
