package collaborators

import (
	"context"

	"trouvemamission-service/internal/domain"
)

type UseCase interface {
	CreateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error)
	GetCollaborator(ctx context.Context, id int64) (domain.Collaborator, error)
	ListCollaborators(ctx context.Context, filter domain.CollaboratorFilter) ([]domain.Collaborator, error)
	UpdateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error)
	DeactivateCollaborator(ctx context.Context, id int64) (domain.Collaborator, error)
	ReactivateCollaborator(ctx context.Context, id int64) (domain.Collaborator, error)
	DeleteCollaborator(ctx context.Context, id int64) error
	CollaboratorStats(ctx context.Context) (domain.CollaboratorStats, error)
	ListSkills(ctx context.Context) ([]string, error)
}
