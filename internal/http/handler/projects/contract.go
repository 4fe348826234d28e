package projects

import (
	"context"

	"trouvemamission-service/internal/domain"
)

type UseCase interface {
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	GetProject(ctx context.Context, id int64) (domain.Project, error)
	ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error)
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	DeactivateProject(ctx context.Context, id int64) (domain.Project, error)
	ReactivateProject(ctx context.Context, id int64) (domain.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	ProjectStats(ctx context.Context) (domain.ProjectStats, error)
}
