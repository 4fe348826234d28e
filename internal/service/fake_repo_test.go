package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	trm "github.com/avito-tech/go-transaction-manager/trm/v2"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/repository"
)

type txKey struct{}

// fakeTx держит блокировки сотрудников до конца транзакции.
type fakeTx struct {
	held    map[int64]struct{}
	unlocks []func()
}

func (tx *fakeTx) release() {
	for i := len(tx.unlocks) - 1; i >= 0; i-- {
		tx.unlocks[i]()
	}
}

// stubManager эмулирует trm.Manager: блокировки, взятые внутри Do, снимаются после fn.
type stubManager struct{}

func (stubManager) Do(ctx context.Context, fn func(context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*fakeTx); ok {
		return fn(ctx)
	}
	tx := &fakeTx{held: map[int64]struct{}{}}
	defer tx.release()
	return fn(context.WithValue(ctx, txKey{}, tx))
}

func (m stubManager) DoWithSettings(ctx context.Context, _ trm.Settings, fn func(context.Context) error) error {
	return m.Do(ctx, fn)
}

type stubRandomizer struct{}

func (stubRandomizer) Int63n(int64) int64 { return 0 }

// memRepo хранит состояние в памяти и ведёт себя как Storage.
type memRepo struct {
	mu            sync.Mutex
	nextID        int64
	collaborators map[int64]domain.Collaborator
	projects      map[int64]domain.Project
	assignments   map[int64]domain.Assignment
	users         map[int64]domain.User
	locks         sync.Map

	// conflicts сколько раз CreateAssignment вернёт конфликт перед успехом.
	conflicts   atomic.Int32
	createCalls atomic.Int32
	lockCalls   atomic.Int32

	projectStats      domain.ProjectStats
	collaboratorStats domain.CollaboratorStats
	removalStats      domain.RemovalStats
	statsErr          error
	lastWindow        repository.StatsWindow
	pingErr           error
	pinged            bool

	// calls порядок блокировок сотрудников и чтений открытых назначений.
	callsMu sync.Mutex
	calls   []string
}

func newMemRepo() *memRepo {
	return &memRepo{
		collaborators: map[int64]domain.Collaborator{},
		projects:      map[int64]domain.Project{},
		assignments:   map[int64]domain.Assignment{},
		users:         map[int64]domain.User{},
	}
}

func (m *memRepo) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memRepo) addCollaborator(c domain.Collaborator) domain.Collaborator {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	if c.Status == "" {
		c.Status = domain.CollaboratorAvailable
	}
	m.collaborators[c.ID] = c
	return c
}

func (m *memRepo) addProject(p domain.Project) domain.Project {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.id()
	if p.Status == "" {
		p.Status = domain.ProjectInProgress
	}
	if p.Client == "" {
		p.Client = "ACME"
	}
	if p.StartDate.IsZero() {
		p.StartDate = testNow.AddDate(0, -1, 0)
		p.EndDate = testNow.AddDate(0, 5, 0)
	}
	m.projects[p.ID] = p
	return p
}

func (m *memRepo) collaborator(id int64) domain.Collaborator {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collaborators[id]
}

func (m *memRepo) setProjectStatus(id int64, status domain.ProjectStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.projects[id]
	p.Status = status
	m.projects[id] = p
}

// view дополняет назначение живым статусом проекта, как JOIN в Storage.
func (m *memRepo) view(a domain.Assignment) domain.Assignment {
	p := m.projects[a.ProjectID]
	a.ProjectStatus = p.Status
	a.ProjectOpen = p.Status.Open()
	return a
}

func (m *memRepo) matches(a domain.Assignment, f domain.AssignmentFilter) bool {
	if len(f.IDs) > 0 && !slices.Contains(f.IDs, a.ID) {
		return false
	}
	if len(f.CollaboratorIDs) > 0 && !slices.Contains(f.CollaboratorIDs, a.CollaboratorID) {
		return false
	}
	if f.ProjectID != 0 && a.ProjectID != f.ProjectID {
		return false
	}
	if f.OnlyOpen && !a.ProjectOpen {
		return false
	}
	return true
}

func (m *memRepo) CreateCollaborator(_ context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	return m.addCollaborator(c), nil
}

func (m *memRepo) GetCollaborator(_ context.Context, id int64) (domain.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collaborators[id]
	if !ok {
		return domain.Collaborator{}, domain.ErrCollaboratorNotFound
	}
	return c, nil
}

func (m *memRepo) record(call string) {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *memRepo) recorded() []string {
	m.callsMu.Lock()
	defer m.callsMu.Unlock()
	return slices.Clone(m.calls)
}

func (m *memRepo) LockCollaborator(ctx context.Context, id int64) (domain.Collaborator, error) {
	m.lockCalls.Add(1)
	m.record(fmt.Sprintf("lock %d", id))
	if tx, ok := ctx.Value(txKey{}).(*fakeTx); ok {
		if _, held := tx.held[id]; !held {
			v, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
			mu := v.(*sync.Mutex)
			mu.Lock()
			tx.held[id] = struct{}{}
			tx.unlocks = append(tx.unlocks, mu.Unlock)
		}
	}
	return m.GetCollaborator(ctx, id)
}

func (m *memRepo) ListCollaborators(_ context.Context, f domain.CollaboratorFilter) ([]domain.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Collaborator{}
	for _, c := range m.collaborators {
		if f.Active != nil && c.Active != *f.Active {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if !c.Skills.ContainsAny(f.Skills) {
			continue
		}
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Collaborator) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (m *memRepo) UpdateCollaborator(_ context.Context, c domain.Collaborator) (domain.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.collaborators[c.ID]
	if !ok {
		return domain.Collaborator{}, domain.ErrCollaboratorNotFound
	}
	c.Active = current.Active
	m.collaborators[c.ID] = c
	return c, nil
}

func (m *memRepo) SetCollaboratorActive(_ context.Context, id int64, active bool) (domain.Collaborator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.collaborators[id]
	if !ok {
		return domain.Collaborator{}, domain.ErrCollaboratorNotFound
	}
	c.Active = active
	m.collaborators[id] = c
	return c, nil
}

func (m *memRepo) SetCollaboratorsStatus(_ context.Context, ids []int64, status domain.CollaboratorStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var changed int64
	for _, id := range ids {
		if c, ok := m.collaborators[id]; ok {
			c.Status = status
			m.collaborators[id] = c
			changed++
		}
	}
	return changed, nil
}

func (m *memRepo) DeleteCollaborator(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collaborators[id]; !ok {
		return domain.ErrCollaboratorNotFound
	}
	delete(m.collaborators, id)
	return nil
}

func (m *memRepo) CreateProject(_ context.Context, p domain.Project) (domain.Project, error) {
	return m.addProject(p), nil
}

func (m *memRepo) GetProject(_ context.Context, id int64) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	return p, nil
}

func (m *memRepo) LockProject(ctx context.Context, id int64, _ bool) (domain.Project, error) {
	return m.GetProject(ctx, id)
}

func (m *memRepo) ListProjects(_ context.Context, f domain.ProjectFilter) ([]domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Project{}
	for _, p := range m.projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.Active != nil && p.Active != *f.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) UpdateProject(_ context.Context, p domain.Project) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.projects[p.ID]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	p.Active = current.Active
	m.projects[p.ID] = p
	return p, nil
}

func (m *memRepo) SetProjectActive(_ context.Context, id int64, active bool) (domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	p.Active = active
	m.projects[id] = p
	return p, nil
}

func (m *memRepo) DeleteProject(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(m.projects, id)
	return nil
}

func (m *memRepo) CreateAssignment(_ context.Context, a domain.Assignment) (domain.Assignment, error) {
	m.createCalls.Add(1)
	if m.conflicts.Load() > 0 {
		m.conflicts.Add(-1)
		return domain.Assignment{}, domain.ErrConcurrencyConflict
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = m.id()
	m.assignments[a.ID] = a
	return m.view(a), nil
}

func (m *memRepo) GetAssignment(_ context.Context, id int64) (domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	return m.view(a), nil
}

func (m *memRepo) ListAssignments(_ context.Context, f domain.AssignmentFilter) ([]domain.Assignment, error) {
	if f.OnlyOpen {
		m.record(fmt.Sprintf("open %v", f.CollaboratorIDs))
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Assignment{}
	for _, a := range m.assignments {
		a = m.view(a)
		if m.matches(a, f) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b domain.Assignment) int { return int(b.ID - a.ID) })
	return out, nil
}

func (m *memRepo) CountAssignments(ctx context.Context, f domain.AssignmentFilter) (int64, error) {
	list, err := m.ListAssignments(ctx, f)
	return int64(len(list)), err
}

func (m *memRepo) UpdateAssignment(_ context.Context, id int64, role, notes string) (domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	a.Role, a.Notes = role, notes
	m.assignments[id] = a
	return m.view(a), nil
}

func (m *memRepo) SetAssignmentActive(_ context.Context, id int64, active bool) (domain.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	a.Active = active
	m.assignments[id] = a
	return m.view(a), nil
}

func (m *memRepo) DeleteAssignments(_ context.Context, f domain.AssignmentFilter) ([]domain.Assignment, error) {
	if f.Empty() {
		return nil, repository.ErrEmptyFilter
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := []domain.Assignment{}
	for id, a := range m.assignments {
		a = m.view(a)
		if m.matches(a, f) {
			removed = append(removed, a)
			delete(m.assignments, id)
		}
	}
	return removed, nil
}

func (m *memRepo) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	u.ID = m.id()
	m.users[u.ID] = u
	return u, nil
}

func (m *memRepo) GetUserByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (m *memRepo) ListUsers(context.Context) ([]domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memRepo) UpdateUser(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.users[u.ID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	u.Email = strings.ToLower(u.Email)
	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return domain.User{}, domain.ErrEmailTaken
		}
	}
	u.PasswordHash = current.PasswordHash
	u.CreatedAt = current.CreatedAt
	m.users[u.ID] = u
	return u, nil
}

func (m *memRepo) SetUserPassword(_ context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	m.users[id] = u
	return nil
}

func (m *memRepo) ListSkills(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []string
	for _, c := range m.collaborators {
		all = append(all, c.Skills...)
	}
	for _, p := range m.projects {
		all = append(all, p.Skills...)
	}
	skills := domain.NewSkillSet(all...).Strings()
	slices.SortFunc(skills, func(a, b string) int { return strings.Compare(strings.ToLower(a), strings.ToLower(b)) })
	return skills, nil
}

func (m *memRepo) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *memRepo) FetchProjectStats(_ context.Context, w repository.StatsWindow) (domain.ProjectStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastWindow = w
	return m.projectStats, m.statsErr
}

func (m *memRepo) FetchCollaboratorStats(context.Context, int) (domain.CollaboratorStats, error) {
	return m.collaboratorStats, m.statsErr
}

func (m *memRepo) FetchRemovalStats(context.Context, repository.StatsWindow) (domain.RemovalStats, error) {
	return m.removalStats, m.statsErr
}

func (m *memRepo) Ping(context.Context) error {
	m.pinged = true
	return m.pingErr
}

var (
	_ trm.Manager              = stubManager{}
	_ repository.Repository    = (*memRepo)(nil)
	_ repository.HealthChecker = (*memRepo)(nil)
)
