package domain

import (
	"strings"
	"time"
)

// CollaboratorStatus отражает доступность сотрудника.
type CollaboratorStatus string

const (
	CollaboratorAvailable CollaboratorStatus = "DISPONIBLE"
	CollaboratorOnMission CollaboratorStatus = "EN_MISSION"
	CollaboratorOnLeave   CollaboratorStatus = "EN_CONGE"
)

// Valid проверяет, что статус входит в перечисление.
func (s CollaboratorStatus) Valid() bool {
	switch s {
	case CollaboratorAvailable, CollaboratorOnMission, CollaboratorOnLeave:
		return true
	}
	return false
}

// ProjectStatus отражает этап жизненного цикла проекта.
type ProjectStatus string

const (
	ProjectStarting   ProjectStatus = "EN_DEMARRAGE"
	ProjectInProgress ProjectStatus = "EN_COURS"
	ProjectPaused     ProjectStatus = "EN_PAUSE"
	ProjectFinished   ProjectStatus = "TERMINE"
	ProjectCancelled  ProjectStatus = "ANNULE"
)

// OpenProjectStatuses статусы, при которых назначения на проект считаются активными.
var OpenProjectStatuses = []ProjectStatus{ProjectStarting, ProjectInProgress, ProjectPaused}

// Valid проверяет, что статус входит в перечисление.
func (s ProjectStatus) Valid() bool {
	return s.Open() || s.Closed()
}

// Open сообщает, что проект не завершён и не отменён.
func (s ProjectStatus) Open() bool {
	switch s {
	case ProjectStarting, ProjectInProgress, ProjectPaused:
		return true
	}
	return false
}

// Closed сообщает, что проект завершён или отменён.
func (s ProjectStatus) Closed() bool {
	return s == ProjectFinished || s == ProjectCancelled
}

// Collaborator описывает сотрудника, которого можно назначать на проекты.
type Collaborator struct {
	ID              int64              `json:"id"`
	Name            string             `json:"name"`
	Email           string             `json:"email"`
	Phone           string             `json:"phone"`
	Role            string             `json:"role"`
	Grade           string             `json:"grade"`
	Status          CollaboratorStatus `json:"status"`
	ExperienceYears int                `json:"experienceYears"`
	Skills          SkillSet           `json:"skills"`
	Active          bool               `json:"active"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// Project описывает клиентский проект.
type Project struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	Description    string        `json:"description"`
	Client         string        `json:"client"`
	ProjectManager string        `json:"projectManager"`
	Status         ProjectStatus `json:"status"`
	StartDate      time.Time     `json:"startDate"`
	EndDate        time.Time     `json:"endDate"`
	TeamSize       int           `json:"teamSize"`
	Progress       int           `json:"progress"`
	Skills         SkillSet      `json:"skills"`
	Active         bool          `json:"active"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// CollaboratorSnapshot копия отображаемых полей сотрудника на момент назначения.
type CollaboratorSnapshot struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ProjectSnapshot копия отображаемых полей проекта на момент назначения.
// Поля могут устареть: живой статус проекта лежит в Assignment.ProjectStatus.
type ProjectSnapshot struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Client      string        `json:"client"`
	Status      ProjectStatus `json:"status"`
	StartDate   time.Time     `json:"startDate"`
	EndDate     time.Time     `json:"endDate"`
}

// Assignment связывает одного сотрудника с одним проектом.
type Assignment struct {
	ID             int64                `json:"id"`
	CollaboratorID int64                `json:"collaboratorId"`
	ProjectID      int64                `json:"projectId"`
	Role           string               `json:"role"`
	Notes          string               `json:"notes,omitempty"`
	Active         bool                 `json:"active"`
	Collaborator   CollaboratorSnapshot `json:"collaborator"`
	Project        ProjectSnapshot      `json:"project"`
	// ProjectStatus живой статус проекта, читается через JOIN.
	ProjectStatus ProjectStatus `json:"projectStatus"`
	ProjectOpen   bool          `json:"projectOpen"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// IsActive каноничный предикат активности: явный флаг и открытый проект одновременно.
func (a Assignment) IsActive() bool {
	return a.Active && a.ProjectOpen
}

// OccupiesCollaborator сообщает, занимает ли назначение сотрудника.
// Инвариант "не более одного активного назначения" проверяется по этому предикату.
func (a Assignment) OccupiesCollaborator() bool {
	return a.ProjectOpen
}

// NewAssignment собирает назначение, копируя отображаемые поля сотрудника и проекта.
func NewAssignment(c Collaborator, p Project, role, notes string) Assignment {
	return Assignment{
		CollaboratorID: c.ID,
		ProjectID:      p.ID,
		Role:           strings.TrimSpace(role),
		Notes:          strings.TrimSpace(notes),
		Active:         true,
		Collaborator: CollaboratorSnapshot{
			Name:  c.Name,
			Email: c.Email,
			Role:  c.Role,
		},
		Project: ProjectSnapshot{
			Name:        p.Name,
			Description: p.Description,
			Client:      p.Client,
			Status:      p.Status,
			StartDate:   p.StartDate,
			EndDate:     p.EndDate,
		},
		ProjectStatus: p.Status,
		ProjectOpen:   p.Status.Open(),
	}
}

// CollaboratorFilter параметры выборки сотрудников.
type CollaboratorFilter struct {
	Active *bool
	Status CollaboratorStatus
	Skills []string
}

// ProjectFilter параметры выборки проектов.
type ProjectFilter struct {
	Active *bool
	Status ProjectStatus
	Client string
	Skills []string
}

// AssignmentFilter параметры выборки и удаления назначений.
type AssignmentFilter struct {
	IDs             []int64
	CollaboratorIDs []int64
	ProjectID       int64
	// OnlyOpen оставляет назначения на проекты в открытом статусе.
	OnlyOpen bool
}

// Empty сообщает, что фильтр не ограничивает выборку.
func (f AssignmentFilter) Empty() bool {
	return len(f.IDs) == 0 && len(f.CollaboratorIDs) == 0 && f.ProjectID == 0 && !f.OnlyOpen
}

// RemovalResult описывает итог удаления назначений.
type RemovalResult struct {
	Removed  int     `json:"removedCount"`
	Released []int64 `json:"releasedCollaborators"`
}
