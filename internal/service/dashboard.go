package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"trouvemamission-service/internal/domain"
)

// Dashboard собирает сводку главной страницы. Три агрегата читаются параллельно.
func (s *Service) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()

	window := s.statsWindow()
	var (
		projects      domain.ProjectStats
		collaborators domain.CollaboratorStats
		removal       domain.RemovalStats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = s.repo.FetchProjectStats(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		collaborators, err = s.repo.FetchCollaboratorStats(gctx, 0)
		return err
	})
	g.Go(func() error {
		var err error
		removal, err = s.repo.FetchRemovalStats(gctx, window)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}
	return domain.Dashboard{
		TotalActiveProjects:    projects.ActiveProjects,
		TotalCollaborators:     collaborators.Active,
		ActiveAssignments:      removal.ActiveAssignments,
		OverallProjectProgress: projects.AverageProgress,
		RecentProjectUpdates:   projects.RecentProjectUpdates,
		OverdueProjects:        projects.OverdueProjects,
		NewAssignments:         removal.NewAssignments,
	}, nil
}
