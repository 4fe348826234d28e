package domain

import (
	"errors"
	"fmt"
)

// Доменные ошибки, используемые для обработки бизнес-логики.
// Эти ошибки преобразуются в HTTP-ответы в слое обработчиков.
var (
	ErrNotFound             = errors.New("not found")
	ErrCollaboratorNotFound = fmt.Errorf("collaborator %w", ErrNotFound) // Сотрудник с таким ID не существует.
	ErrProjectNotFound      = fmt.Errorf("project %w", ErrNotFound)      // Проект с таким ID не существует.
	ErrAssignmentNotFound   = fmt.Errorf("assignment %w", ErrNotFound)   // Назначение с таким ID не существует.
	ErrUserNotFound         = fmt.Errorf("user %w", ErrNotFound)         // Пользователь с таким ID или email не существует.

	ErrConcurrencyConflict = errors.New("concurrent modification detected, retry the operation")
	ErrHasAssignments      = errors.New("entity still has assignments")
	ErrReopenConflict      = errors.New("project cannot be reopened: a collaborator already holds another active assignment")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthorized        = errors.New("authentication required")
	ErrForbidden           = errors.New("operation not permitted for this role")
)

// Причины отказа в назначении. Сопоставляются с *EligibilityError через errors.Is.
var (
	ErrProjectInactive      = errors.New("project is inactive")
	ErrProjectClosed        = errors.New("project is finished or cancelled")
	ErrCollaboratorInactive = errors.New("collaborator is inactive")
	ErrCollaboratorOnLeave  = errors.New("collaborator is on leave")
	ErrAlreadyAssigned      = errors.New("collaborator already has an active assignment")
)

// EligibilityReason машинный код причины отказа.
type EligibilityReason string

const (
	ReasonProjectInactive      EligibilityReason = "PROJECT_INACTIVE"
	ReasonProjectClosed        EligibilityReason = "PROJECT_CLOSED"
	ReasonCollaboratorInactive EligibilityReason = "COLLABORATOR_INACTIVE"
	ReasonCollaboratorOnLeave  EligibilityReason = "COLLABORATOR_ON_LEAVE"
	ReasonAlreadyAssigned      EligibilityReason = "ALREADY_ASSIGNED"
)

var reasonSentinels = map[EligibilityReason]error{
	ReasonProjectInactive:      ErrProjectInactive,
	ReasonProjectClosed:        ErrProjectClosed,
	ReasonCollaboratorInactive: ErrCollaboratorInactive,
	ReasonCollaboratorOnLeave:  ErrCollaboratorOnLeave,
	ReasonAlreadyAssigned:      ErrAlreadyAssigned,
}

// EligibilityError отказ в назначении пары (сотрудник, проект) с контекстом для сообщения пользователю.
type EligibilityError struct {
	Reason             EligibilityReason
	CollaboratorID     int64
	ProjectID          int64
	ProjectStatus      ProjectStatus
	CollaboratorStatus CollaboratorStatus
	// ConflictingAssignmentID заполняется для ReasonAlreadyAssigned.
	ConflictingAssignmentID int64
}

func (e *EligibilityError) Error() string {
	switch e.Reason {
	case ReasonProjectInactive:
		return fmt.Sprintf("project %d is inactive", e.ProjectID)
	case ReasonProjectClosed:
		return fmt.Sprintf("project %d is closed (status %s)", e.ProjectID, e.ProjectStatus)
	case ReasonCollaboratorInactive:
		return fmt.Sprintf("collaborator %d is inactive", e.CollaboratorID)
	case ReasonCollaboratorOnLeave:
		return fmt.Sprintf("collaborator %d is on leave (status %s)", e.CollaboratorID, e.CollaboratorStatus)
	case ReasonAlreadyAssigned:
		return fmt.Sprintf("collaborator %d already has active assignment %d", e.CollaboratorID, e.ConflictingAssignmentID)
	}
	return fmt.Sprintf("assignment of collaborator %d to project %d is not allowed", e.CollaboratorID, e.ProjectID)
}

// Is позволяет сравнивать ошибку с sentinel-значением причины.
func (e *EligibilityError) Is(target error) bool {
	sentinel, ok := reasonSentinels[e.Reason]
	return ok && sentinel == target
}

// ValidationError ошибка валидации входных данных до любых проверок бизнес-правил.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// NewValidationError создаёт ошибку валидации поля.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
