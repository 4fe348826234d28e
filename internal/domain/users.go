package domain

import (
	"strings"
	"time"
)

// Role роль пользователя приложения.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
	RoleUser    Role = "USER"
)

// ParseRole приводит строку к роли, допускает префикс ROLE_.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_"))
	switch role {
	case RoleAdmin, RoleManager, RoleUser:
		return role, true
	}
	return "", false
}

// CanWrite сообщает, разрешены ли роли изменяющие операции.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleManager
}

// User учётная запись приложения.
type User struct {
	ID           int64     `json:"id"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Position     string    `json:"position"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session явный контекст вызывающего, собирается из токена на границе HTTP.
type Session struct {
	UserID int64
	Email  string
	Role   Role
}
