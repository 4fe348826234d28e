package repository

import (
	"context"
	"time"

	"trouvemamission-service/internal/domain"
)

// Repository объединяет все доменные репозитории.
type Repository interface {
	CollaboratorRepository
	ProjectRepository
	AssignmentRepository
	UserRepository
	StatsRepository
	SkillRepository
}

// CollaboratorRepository содержит операции для работы с сотрудниками.
type CollaboratorRepository interface {
	CreateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error)
	GetCollaborator(ctx context.Context, id int64) (domain.Collaborator, error)
	// LockCollaborator читает сотрудника с блокировкой строки до конца транзакции.
	LockCollaborator(ctx context.Context, id int64) (domain.Collaborator, error)
	ListCollaborators(ctx context.Context, filter domain.CollaboratorFilter) ([]domain.Collaborator, error)
	UpdateCollaborator(ctx context.Context, c domain.Collaborator) (domain.Collaborator, error)
	SetCollaboratorActive(ctx context.Context, id int64, active bool) (domain.Collaborator, error)
	SetCollaboratorsStatus(ctx context.Context, ids []int64, status domain.CollaboratorStatus) (int64, error)
	DeleteCollaborator(ctx context.Context, id int64) error
}

// ProjectRepository содержит операции для работы с проектами.
type ProjectRepository interface {
	CreateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	GetProject(ctx context.Context, id int64) (domain.Project, error)
	// LockProject читает проект с блокировкой. exclusive=false берёт разделяемую блокировку.
	LockProject(ctx context.Context, id int64, exclusive bool) (domain.Project, error)
	ListProjects(ctx context.Context, filter domain.ProjectFilter) ([]domain.Project, error)
	UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error)
	SetProjectActive(ctx context.Context, id int64, active bool) (domain.Project, error)
	DeleteProject(ctx context.Context, id int64) error
}

// AssignmentRepository содержит операции для работы с назначениями.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a domain.Assignment) (domain.Assignment, error)
	GetAssignment(ctx context.Context, id int64) (domain.Assignment, error)
	ListAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error)
	CountAssignments(ctx context.Context, filter domain.AssignmentFilter) (int64, error)
	UpdateAssignment(ctx context.Context, id int64, role, notes string) (domain.Assignment, error)
	SetAssignmentActive(ctx context.Context, id int64, active bool) (domain.Assignment, error)
	// DeleteAssignments удаляет назначения по фильтру и возвращает удалённые строки
	// с живым статусом проекта. Пустой фильтр отклоняется.
	DeleteAssignments(ctx context.Context, filter domain.AssignmentFilter) ([]domain.Assignment, error)
}

// UserRepository содержит операции для работы с учётными записями.
type UserRepository interface {
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	// UpdateUser меняет профиль и роль. Пароль меняется только через SetUserPassword.
	UpdateUser(ctx context.Context, u domain.User) (domain.User, error)
	SetUserPassword(ctx context.Context, id int64, hash string) error
	DeleteUser(ctx context.Context, id int64) error
}

// SkillRepository отдаёт справочник навыков.
type SkillRepository interface {
	// ListSkills возвращает навыки сотрудников и проектов без повторов, по алфавиту.
	ListSkills(ctx context.Context) ([]string, error)
}

// StatsRepository содержит операции для получения статистики.
type StatsRepository interface {
	FetchProjectStats(ctx context.Context, window StatsWindow) (domain.ProjectStats, error)
	FetchCollaboratorStats(ctx context.Context, topSkills int) (domain.CollaboratorStats, error)
	FetchRemovalStats(ctx context.Context, window StatsWindow) (domain.RemovalStats, error)
}

// StatsWindow задаёт временные границы для агрегатов.
type StatsWindow struct {
	Now          time.Time
	RecentSince  time.Time // начало окна "недавних" изменений
	EndingBefore time.Time // граница окна "скоро закончится"
}

// HealthChecker описывает метод проверки соединения.
type HealthChecker interface {
	Ping(ctx context.Context) error
}
