package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"trouvemamission-service/internal/config"
	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/logging"
)

func TestService_CreateAssignment_AvailableCollaborator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Alice", Email: "alice@example.com", Role: "Dev", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Client: "ACME", Active: true})

	svc := newTestService(repo)
	a, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: " Lead ", Notes: "kickoff"})
	require.NoError(t, err)
	require.True(t, a.Active)
	require.True(t, a.IsActive())
	require.Equal(t, "Lead", a.Role)
	require.Equal(t, "Alice", a.Collaborator.Name)
	require.Equal(t, "ACME", a.Project.Client)
	require.Equal(t, domain.CollaboratorOnMission, repo.collaborator(c.ID).Status)

	got, err := svc.GetAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)
	require.Equal(t, c.ID, got.CollaboratorID)
	require.Equal(t, p.ID, got.ProjectID)
	require.Equal(t, "kickoff", got.Notes)
}

func TestService_CreateAssignment_AlreadyAssigned(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Alice", Email: "alice@example.com", Active: true})
	p1 := repo.addProject(domain.Project{Name: "P1", Active: true})
	p2 := repo.addProject(domain.Project{Name: "P2", Active: true})

	svc := newTestService(repo)
	first, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p1.ID, Role: "Dev"})
	require.NoError(t, err)

	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p2.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrAlreadyAssigned)
	var eligibility *domain.EligibilityError
	require.True(t, errors.As(err, &eligibility))
	require.Equal(t, first.ID, eligibility.ConflictingAssignmentID)

	list, err := svc.GetAssignmentsByCollaborator(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestService_CreateAssignment_ProjectClosed(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Bob", Email: "bob@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Done", Status: domain.ProjectFinished, Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrProjectClosed)
	require.Contains(t, err.Error(), "TERMINE")
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)
}

func TestService_CreateAssignment_CollaboratorOnLeave(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Carol", Email: "carol@example.com", Status: domain.CollaboratorOnLeave, Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrCollaboratorOnLeave)
	require.Equal(t, domain.CollaboratorOnLeave, repo.collaborator(c.ID).Status)
}

func TestService_CreateAssignment_ErrorCarriesLogFields(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Cyril", Email: "cyril@example.com", Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: 404, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrProjectNotFound)

	var buf bytes.Buffer
	logger := slog.New(logging.NewLoggerImpl(slog.NewJSONHandler(&buf, nil)))
	logger.ErrorContext(logging.ErrorCtx(context.Background(), err), "request failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.EqualValues(t, c.ID, entry["collaborator_id"])
	require.EqualValues(t, 404, entry["project_id"])
}

func TestService_CreateAssignment_ReportsFirstViolatedRule(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Dan", Email: "dan@example.com", Status: domain.CollaboratorOnLeave, Active: false})
	p := repo.addProject(domain.Project{Name: "Paused", Status: domain.ProjectCancelled, Active: false})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrProjectInactive)
}

func TestService_CreateAssignment_NotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Eve", Email: "eve@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: 999, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrCollaboratorNotFound)

	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: 999, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestService_CreateAssignment_ValidationHappensBeforeRepository(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	svc := newTestService(repo)

	cases := []CreateAssignmentInput{
		{CollaboratorID: 0, ProjectID: 1, Role: "Dev"},
		{CollaboratorID: 1, ProjectID: -1, Role: "Dev"},
		{CollaboratorID: 1, ProjectID: 1, Role: "   "},
	}
	for _, in := range cases {
		_, err := svc.CreateAssignment(context.Background(), in)
		var validation *domain.ValidationError
		require.True(t, errors.As(err, &validation), "%+v", in)
	}
	require.Zero(t, repo.lockCalls.Load())
}

func TestService_CreateAssignment_ConcurrentRequestsForOneCollaborator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Frank", Email: "frank@example.com", Active: true})

	const workers = 16
	projects := make([]domain.Project, workers)
	for i := range projects {
		projects[i] = repo.addProject(domain.Project{Name: fmt.Sprintf("P%d", i), Active: true})
	}

	svc := newTestService(repo)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: projects[i].ID, Role: "Dev"})
		}(i)
	}
	close(start)
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, domain.ErrAlreadyAssigned)
	}
	require.Equal(t, 1, succeeded)

	active, err := svc.GetActiveAssignments(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
}

func TestService_CreateAssignment_RetriesOnConflict(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Gina", Email: "gina@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})
	repo.conflicts.Store(2)

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)
	require.Equal(t, int32(3), repo.createCalls.Load())
}

func TestService_CreateAssignment_GivesUpAfterConfiguredAttempts(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Hugo", Email: "hugo@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})
	repo.conflicts.Store(10)

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(context.Background(), CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	require.Equal(t, int32(3), repo.createCalls.Load())
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)
}

func TestService_DeactivatedAssignmentStillOccupiesCollaborator(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Ivy", Email: "ivy@example.com", Active: true})
	p1 := repo.addProject(domain.Project{Name: "P1", Active: true})
	p2 := repo.addProject(domain.Project{Name: "P2", Active: true})

	svc := newTestService(repo)
	a, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p1.ID, Role: "Dev"})
	require.NoError(t, err)

	deactivated, err := svc.DeactivateAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.False(t, deactivated.IsActive())
	require.Equal(t, domain.CollaboratorOnMission, repo.collaborator(c.ID).Status)

	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p2.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrAlreadyAssigned)

	reactivated, err := svc.ReactivateAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.True(t, reactivated.IsActive())

	_, err = svc.DeactivateAssignment(ctx, 999)
	require.ErrorIs(t, err, domain.ErrAssignmentNotFound)
}

func TestService_UpdateAssignment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Jack", Email: "jack@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	a, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)

	updated, err := svc.UpdateAssignment(ctx, a.ID, " Architect ", " leads design ")
	require.NoError(t, err)
	require.Equal(t, "Architect", updated.Role)
	require.Equal(t, "leads design", updated.Notes)
	require.Equal(t, c.ID, updated.CollaboratorID)

	_, err = svc.UpdateAssignment(ctx, a.ID, "", "")
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))

	_, err = svc.UpdateAssignment(ctx, 999, "Dev", "")
	require.ErrorIs(t, err, domain.ErrAssignmentNotFound)
}

func TestService_RemoveCollaboratorFromAllProjects_FreesForNewAssignment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Kate", Email: "kate@example.com", Active: true})
	p1 := repo.addProject(domain.Project{Name: "P1", Active: true})
	p2 := repo.addProject(domain.Project{Name: "P2", Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p1.ID, Role: "Dev"})
	require.NoError(t, err)

	can, err := svc.CanRemoveCollaborator(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, can)

	result, err := svc.RemoveCollaboratorFromAllProjects(ctx, c.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	require.Equal(t, []int64{c.ID}, result.Released)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)

	again, err := svc.RemoveCollaboratorFromAllProjects(ctx, c.ID)
	require.NoError(t, err)
	require.Zero(t, again.Removed)

	can, err = svc.CanRemoveCollaborator(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, can)

	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p2.ID, Role: "Dev"})
	require.NoError(t, err)

	_, err = svc.RemoveCollaboratorFromAllProjects(ctx, 999)
	require.ErrorIs(t, err, domain.ErrCollaboratorNotFound)

	_, err = svc.CanRemoveCollaborator(ctx, 999)
	require.ErrorIs(t, err, domain.ErrCollaboratorNotFound)
}

func TestService_RemoveAllCollaboratorsFromProject_IsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	alice := repo.addCollaborator(domain.Collaborator{Name: "Alice", Email: "alice@example.com", Active: true})
	bob := repo.addCollaborator(domain.Collaborator{Name: "Bob", Email: "bob@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	for _, id := range []int64{alice.ID, bob.ID} {
		_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: id, ProjectID: p.ID, Role: "Dev"})
		require.NoError(t, err)
	}

	result, err := svc.RemoveAllCollaboratorsFromProject(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Removed)
	require.ElementsMatch(t, []int64{alice.ID, bob.ID}, result.Released)

	again, err := svc.RemoveAllCollaboratorsFromProject(ctx, p.ID)
	require.NoError(t, err)
	require.Zero(t, again.Removed)
	require.Empty(t, again.Released)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(alice.ID).Status)

	_, err = svc.RemoveAllCollaboratorsFromProject(ctx, 999)
	require.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestService_RemoveCollaboratorsFromProject_OnlyListed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	alice := repo.addCollaborator(domain.Collaborator{Name: "Alice", Email: "alice@example.com", Active: true})
	bob := repo.addCollaborator(domain.Collaborator{Name: "Bob", Email: "bob@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	for _, id := range []int64{alice.ID, bob.ID} {
		_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: id, ProjectID: p.ID, Role: "Dev"})
		require.NoError(t, err)
	}

	result, err := svc.RemoveCollaboratorsFromProject(ctx, p.ID, []int64{alice.ID})
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	require.Equal(t, []int64{alice.ID}, result.Released)
	require.Equal(t, domain.CollaboratorOnMission, repo.collaborator(bob.ID).Status)

	left, err := svc.GetAssignmentsByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, bob.ID, left[0].CollaboratorID)

	_, err = svc.RemoveCollaboratorsFromProject(ctx, p.ID, nil)
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestService_RemoveAssignment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Liam", Email: "liam@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	a, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)

	result, err := svc.RemoveAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)

	_, err = svc.RemoveAssignment(ctx, a.ID)
	require.ErrorIs(t, err, domain.ErrAssignmentNotFound)
}

func TestService_UpdateProject_ClosingReleasesCollaborators(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Mia", Email: "mia@example.com", Active: true})
	p1 := repo.addProject(domain.Project{Name: "P1", Active: true})
	p2 := repo.addProject(domain.Project{Name: "P2", Active: true})

	svc := newTestService(repo)
	old, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p1.ID, Role: "Dev"})
	require.NoError(t, err)

	p1.Status = domain.ProjectFinished
	closed, err := svc.UpdateProject(ctx, p1)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectFinished, closed.Status)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)

	stale, err := svc.GetAssignment(ctx, old.ID)
	require.NoError(t, err)
	require.False(t, stale.IsActive())
	require.Equal(t, domain.ProjectFinished, stale.ProjectStatus)

	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p2.ID, Role: "Dev"})
	require.NoError(t, err)

	// Снятие с закрытого проекта не трогает статус занятого сотрудника.
	result, err := svc.RemoveAllCollaboratorsFromProject(ctx, p1.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	require.Empty(t, result.Released)
	require.Equal(t, domain.CollaboratorOnMission, repo.collaborator(c.ID).Status)
}

func TestService_UpdateProject_ReopenGuard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Noah", Email: "noah@example.com", Active: true})
	p1 := repo.addProject(domain.Project{Name: "P1", Active: true})
	p2 := repo.addProject(domain.Project{Name: "P2", Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p1.ID, Role: "Dev"})
	require.NoError(t, err)
	repo.setProjectStatus(p1.ID, domain.ProjectCancelled)

	second, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p2.ID, Role: "Dev"})
	require.NoError(t, err)

	p1.Status = domain.ProjectInProgress
	_, err = svc.UpdateProject(ctx, p1)
	require.ErrorIs(t, err, domain.ErrReopenConflict)
	current, err := svc.GetProject(ctx, p1.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectCancelled, current.Status)

	_, err = svc.RemoveAssignment(ctx, second.ID)
	require.NoError(t, err)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)

	reopened, err := svc.UpdateProject(ctx, p1)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectInProgress, reopened.Status)
	require.Equal(t, domain.CollaboratorOnMission, repo.collaborator(c.ID).Status)

	active, err := svc.GetAssignmentsByCollaborator(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.True(t, active[0].OccupiesCollaborator())
}

func TestService_UpdateProject_CloseThenReopenRestoresStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	busy := repo.addCollaborator(domain.Collaborator{Name: "Pia", Email: "pia@example.com", Active: true})
	onLeave := repo.addCollaborator(domain.Collaborator{Name: "Quentin", Email: "quentin@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	_, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: busy.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)
	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: onLeave.ID, ProjectID: p.ID, Role: "QA"})
	require.NoError(t, err)

	p.Status = domain.ProjectFinished
	_, err = svc.UpdateProject(ctx, p)
	require.NoError(t, err)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(busy.ID).Status)
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(onLeave.ID).Status)

	leave := repo.collaborator(onLeave.ID)
	leave.Status = domain.CollaboratorOnLeave
	_, err = repo.UpdateCollaborator(ctx, leave)
	require.NoError(t, err)

	p.Status = domain.ProjectInProgress
	_, err = svc.UpdateProject(ctx, p)
	require.NoError(t, err)
	require.Equal(t, domain.CollaboratorOnMission, repo.collaborator(busy.ID).Status)
	require.Equal(t, domain.CollaboratorOnLeave, repo.collaborator(onLeave.ID).Status)
}

func TestService_ReleaseLocksBeforeReadingOpenAssignments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Rita", Email: "rita@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	a, err := svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)

	before := len(repo.recorded())
	result, err := svc.RemoveAssignment(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{c.ID}, result.Released)

	require.Equal(t, []string{
		fmt.Sprintf("lock %d", c.ID),
		fmt.Sprintf("open [%d]", c.ID),
	}, repo.recorded()[before:])
}

func TestService_UpdateProject_Validation(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	svc := newTestService(repo)

	_, err := svc.UpdateProject(context.Background(), domain.Project{ID: 999, Name: "Ghost", Client: "ACME", StartDate: testNow, EndDate: testNow})
	require.ErrorIs(t, err, domain.ErrProjectNotFound)

	_, err = svc.UpdateProject(context.Background(), domain.Project{ID: 1, Name: "Bad", Client: "ACME", StartDate: testNow, EndDate: testNow, Status: "WHATEVER"})
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestService_CheckEligibilityDoesNotMutate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	c := repo.addCollaborator(domain.Collaborator{Name: "Olga", Email: "olga@example.com", Active: true})
	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})

	svc := newTestService(repo)
	require.NoError(t, svc.CheckEligibility(ctx, c.ID, p.ID))
	require.Equal(t, domain.CollaboratorAvailable, repo.collaborator(c.ID).Status)

	all, err := svc.ListAssignments(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestService_CollaboratorLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)

	c, err := svc.CreateCollaborator(ctx, domain.Collaborator{
		Name:   " Paul ",
		Email:  "paul@example.com",
		Skills: domain.SkillSet{"Go", "go", " SQL "},
	})
	require.NoError(t, err)
	require.True(t, c.Active)
	require.Equal(t, "Paul", c.Name)
	require.Equal(t, domain.CollaboratorAvailable, c.Status)
	require.Equal(t, domain.SkillSet{"Go", "SQL"}, c.Skills)

	_, err = svc.CreateCollaborator(ctx, domain.Collaborator{Name: "X", Email: "not-an-email"})
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))

	found, err := svc.ListCollaborators(ctx, domain.CollaboratorFilter{Skills: []string{"sql"}})
	require.NoError(t, err)
	require.Len(t, found, 1)

	deactivated, err := svc.DeactivateCollaborator(ctx, c.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	p := repo.addProject(domain.Project{Name: "Apollo", Active: true})
	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrCollaboratorInactive)

	_, err = svc.ReactivateCollaborator(ctx, c.ID)
	require.NoError(t, err)
	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteCollaborator(ctx, c.ID), domain.ErrHasAssignments)
	_, err = svc.RemoveCollaboratorFromAllProjects(ctx, c.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteCollaborator(ctx, c.ID))

	_, err = svc.GetCollaborator(ctx, c.ID)
	require.ErrorIs(t, err, domain.ErrCollaboratorNotFound)
}

func TestService_ProjectLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newMemRepo()
	svc := newTestService(repo)

	p, err := svc.CreateProject(ctx, domain.Project{
		Name:      "Apollo",
		Client:    " ACME ",
		StartDate: testNow,
		EndDate:   testNow.AddDate(0, 3, 0),
	})
	require.NoError(t, err)
	require.True(t, p.Active)
	require.Equal(t, domain.ProjectStarting, p.Status)
	require.Equal(t, "ACME", p.Client)

	deactivated, err := svc.DeactivateProject(ctx, p.ID)
	require.NoError(t, err)
	require.False(t, deactivated.Active)

	c := repo.addCollaborator(domain.Collaborator{Name: "Quinn", Email: "quinn@example.com", Active: true})
	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.ErrorIs(t, err, domain.ErrProjectInactive)

	_, err = svc.ReactivateProject(ctx, p.ID)
	require.NoError(t, err)
	_, err = svc.CreateAssignment(ctx, CreateAssignmentInput{CollaboratorID: c.ID, ProjectID: p.ID, Role: "Dev"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteProject(ctx, p.ID), domain.ErrHasAssignments)
	_, err = svc.RemoveAllCollaboratorsFromProject(ctx, p.ID)
	require.NoError(t, err)
	require.NoError(t, svc.DeleteProject(ctx, p.ID))

	_, err = svc.ListProjects(ctx, domain.ProjectFilter{Status: "NOPE"})
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))
}

func TestService_ListSkillsMergesSources(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.addCollaborator(domain.Collaborator{Name: "A", Skills: domain.SkillSet{"sql", "Go"}})
	repo.addProject(domain.Project{Name: "P", Skills: domain.SkillSet{"go", "Kubernetes"}})

	skills, err := newTestService(repo).ListSkills(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"Go", "Kubernetes", "sql"}, skills)
}

func TestService_DashboardCombinesAggregates(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.projectStats = domain.ProjectStats{ActiveProjects: 4, AverageProgress: 42.5, RecentProjectUpdates: 3, OverdueProjects: 1}
	repo.collaboratorStats = domain.CollaboratorStats{Active: 12}
	repo.removalStats = domain.RemovalStats{ActiveAssignments: 7, NewAssignments: 2}

	svc := newTestService(repo)
	dashboard, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.Dashboard{
		TotalActiveProjects:    4,
		TotalCollaborators:     12,
		ActiveAssignments:      7,
		OverallProjectProgress: 42.5,
		RecentProjectUpdates:   3,
		OverdueProjects:        1,
		NewAssignments:         2,
	}, dashboard)

	now := testNow
	require.Equal(t, now, repo.lastWindow.Now)
	require.Equal(t, now.Add(-7*24*time.Hour), repo.lastWindow.RecentSince)
	require.Equal(t, now.Add(30*24*time.Hour), repo.lastWindow.EndingBefore)
}

func TestService_DashboardPropagatesError(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.statsErr = context.DeadlineExceeded

	svc := newTestService(repo)
	_, err := svc.Dashboard(context.Background())
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestServiceHealthCheckUsesRepo(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	svc := newTestService(repo)
	require.NoError(t, svc.HealthCheck(context.Background()))
	require.True(t, repo.pinged)
}

func TestServiceHealthCheckPropagatesError(t *testing.T) {
	t.Parallel()
	repo := newMemRepo()
	repo.pingErr = context.DeadlineExceeded
	svc := newTestService(repo)
	require.Error(t, svc.HealthCheck(context.Background()))
}

func TestServiceBackoffGrowsExponentially(t *testing.T) {
	t.Parallel()
	svc := newTestService(newMemRepo())
	require.Equal(t, time.Millisecond, svc.backoff(1))
	require.Equal(t, 2*time.Millisecond, svc.backoff(2))
	require.Equal(t, 4*time.Millisecond, svc.backoff(3))
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type stubNower struct{}

func (stubNower) Now() time.Time { return testNow }

func testConfig() config.Config {
	return config.Config{
		Timeouts: config.TimeoutConfig{
			Operation:     time.Second,
			LongOperation: 2 * time.Second,
		},
		Assignments: config.AssignmentConfig{
			EndingSoonWindow: 30 * 24 * time.Hour,
			RecentWindow:     7 * 24 * time.Hour,
			CreateAttempts:   3,
			RetryBaseDelay:   time.Millisecond,
		},
	}
}

func newTestService(repo *memRepo) *Service {
	return New(repo, testConfig(), stubManager{}, stubRandomizer{}, stubNower{})
}
