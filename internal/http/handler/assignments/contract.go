package assignments

import (
	"context"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/service"
)

type UseCase interface {
	CheckEligibility(ctx context.Context, collaboratorID, projectID int64) error
	CreateAssignment(ctx context.Context, in service.CreateAssignmentInput) (domain.Assignment, error)
	GetAssignment(ctx context.Context, id int64) (domain.Assignment, error)
	ListAssignments(ctx context.Context) ([]domain.Assignment, error)
	GetActiveAssignments(ctx context.Context) ([]domain.Assignment, error)
	GetAssignmentsByProject(ctx context.Context, projectID int64) ([]domain.Assignment, error)
	GetAssignmentsByCollaborator(ctx context.Context, collaboratorID int64) ([]domain.Assignment, error)
	CanRemoveCollaborator(ctx context.Context, collaboratorID int64) (bool, error)
	RemovalStats(ctx context.Context) (domain.RemovalStats, error)
	UpdateAssignment(ctx context.Context, id int64, role, notes string) (domain.Assignment, error)
	DeactivateAssignment(ctx context.Context, id int64) (domain.Assignment, error)
	ReactivateAssignment(ctx context.Context, id int64) (domain.Assignment, error)
	RemoveAssignment(ctx context.Context, id int64) (domain.RemovalResult, error)
	RemoveCollaboratorFromAllProjects(ctx context.Context, collaboratorID int64) (domain.RemovalResult, error)
	RemoveCollaboratorsFromProject(ctx context.Context, projectID int64, collaboratorIDs []int64) (domain.RemovalResult, error)
	RemoveAllCollaboratorsFromProject(ctx context.Context, projectID int64) (domain.RemovalResult, error)
}
