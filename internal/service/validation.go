package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"trouvemamission-service/internal/domain"
)

const (
	maxNameLength  = 200
	maxRoleLength  = 100
	maxNotesLength = 2000
	minPassword    = 8
)

// ValidateID проверяет, что идентификатор положительный.
func ValidateID(field string, id int64) error {
	if id <= 0 {
		return domain.NewValidationError(field, "must be a positive integer")
	}
	return nil
}

func validateRequired(field, value string, max int) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return domain.NewValidationError(field, "is required")
	}
	if utf8.RuneCountInString(value) > max {
		return domain.NewValidationError(field, "is too long")
	}
	return nil
}

func validateEmail(email string) error {
	if err := validateRequired("email", email, maxNameLength); err != nil {
		return err
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(email)); err != nil {
		return domain.NewValidationError("email", "is not a valid address")
	}
	return nil
}

// ValidateCreateAssignment проверяет вход создания назначения до любых бизнес-правил.
func ValidateCreateAssignment(in CreateAssignmentInput) error {
	if err := ValidateID("collaboratorId", in.CollaboratorID); err != nil {
		return err
	}
	if err := ValidateID("projectId", in.ProjectID); err != nil {
		return err
	}
	return validateAssignmentDetails(in.Role, in.Notes)
}

func validateAssignmentDetails(role, notes string) error {
	if err := validateRequired("role", role, maxRoleLength); err != nil {
		return err
	}
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return domain.NewValidationError("notes", "is too long")
	}
	return nil
}

// ValidateCollaborator проверяет поля сотрудника.
func ValidateCollaborator(c domain.Collaborator) error {
	if err := validateRequired("name", c.Name, maxNameLength); err != nil {
		return err
	}
	if err := validateEmail(c.Email); err != nil {
		return err
	}
	if c.ExperienceYears < 0 {
		return domain.NewValidationError("experienceYears", "must not be negative")
	}
	if !c.Status.Valid() {
		return domain.NewValidationError("status", "must be one of DISPONIBLE, EN_MISSION, EN_CONGE")
	}
	return nil
}

// ValidateProject проверяет поля проекта.
func ValidateProject(p domain.Project) error {
	if err := validateRequired("name", p.Name, maxNameLength); err != nil {
		return err
	}
	if err := validateRequired("client", p.Client, maxNameLength); err != nil {
		return err
	}
	if p.StartDate.IsZero() {
		return domain.NewValidationError("startDate", "is required")
	}
	if p.EndDate.IsZero() {
		return domain.NewValidationError("endDate", "is required")
	}
	if p.EndDate.Before(p.StartDate) {
		return domain.NewValidationError("endDate", "must not be before startDate")
	}
	if p.Progress < 0 || p.Progress > 100 {
		return domain.NewValidationError("progress", "must be between 0 and 100")
	}
	if p.TeamSize < 0 {
		return domain.NewValidationError("teamSize", "must not be negative")
	}
	if !p.Status.Valid() {
		return domain.NewValidationError("status", "must be one of EN_DEMARRAGE, EN_COURS, EN_PAUSE, TERMINE, ANNULE")
	}
	return nil
}

// ValidateCreateUser проверяет учётную запись перед хешированием пароля.
func ValidateCreateUser(in CreateUserInput) error {
	if err := validateEmail(in.Email); err != nil {
		return err
	}
	if utf8.RuneCountInString(in.Password) < minPassword {
		return domain.NewValidationError("password", "must be at least 8 characters")
	}
	if _, ok := domain.ParseRole(in.Role); !ok {
		return domain.NewValidationError("role", "must be one of ADMIN, MANAGER, USER")
	}
	return nil
}
