package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"trouvemamission-service/internal/config"
	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/infrastructure/hasher"
	"trouvemamission-service/internal/infrastructure/tokenizer"
	"trouvemamission-service/internal/repository"
)

// CreateUserInput описывает новую учётную запись.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Position  string
	Role      string
	Password  string
}

// LoginResult токен и пользователь после успешного входа.
type LoginResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Auth управляет учётными записями и сессиями.
// Ядро назначений о нём не знает: роль проверяется на границе HTTP.
type Auth struct {
	users     repository.UserRepository
	cfg       config.Config
	hasher    hasher.Hasher
	tokenizer tokenizer.Tokenizer
}

func NewAuth(users repository.UserRepository, cfg config.Config, hasher hasher.Hasher, tokenizer tokenizer.Tokenizer) *Auth {
	if cfg.Timeouts.Operation <= 0 {
		cfg.Timeouts.Operation = DefaultOperationTimeout
	}
	return &Auth{users: users, cfg: cfg, hasher: hasher, tokenizer: tokenizer}
}

// Login сверяет пароль и выпускает токен.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (a *Auth) Login(ctx context.Context, email, password string) (LoginResult, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	if strings.TrimSpace(email) == "" || password == "" {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	user, err := a.users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if !a.hasher.Compare(user.PasswordHash, password) {
		return LoginResult{}, domain.ErrInvalidCredentials
	}
	token, err := a.tokenizer.Issue(user)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, User: user}, nil
}

// Authenticate превращает токен в сессию.
func (a *Auth) Authenticate(token string) (domain.Session, error) {
	session, err := a.tokenizer.Parse(token)
	if err != nil {
		return domain.Session{}, domain.ErrUnauthorized
	}
	return session, nil
}

// CreateUser создаёт учётную запись с хешированным паролем.
func (a *Auth) CreateUser(ctx context.Context, in CreateUserInput) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	if err := ValidateCreateUser(in); err != nil {
		return domain.User{}, err
	}
	role, _ := domain.ParseRole(in.Role)
	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	return a.users.CreateUser(ctx, domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		Position:     strings.TrimSpace(in.Position),
		Role:         role,
		PasswordHash: hash,
	})
}

// GetUser возвращает учётную запись.
func (a *Auth) GetUser(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return domain.User{}, err
	}
	return a.users.GetUserByID(ctx, id)
}

// ListUsers возвращает все учётные записи.
func (a *Auth) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	return a.users.ListUsers(ctx)
}

// UpdateUserInput новые значения профиля. Пароль меняется через ChangePassword.
type UpdateUserInput struct {
	ID        int64
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Position  string
	Role      string
}

// UpdateUser меняет профиль и роль.
func (a *Auth) UpdateUser(ctx context.Context, in UpdateUserInput) (domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	if err := ValidateID("id", in.ID); err != nil {
		return domain.User{}, err
	}
	if err := validateEmail(in.Email); err != nil {
		return domain.User{}, err
	}
	role, ok := domain.ParseRole(in.Role)
	if !ok {
		return domain.User{}, domain.NewValidationError("role", "must be one of ADMIN, MANAGER, USER")
	}
	return a.users.UpdateUser(ctx, domain.User{
		ID:        in.ID,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Position:  strings.TrimSpace(in.Position),
		Role:      role,
	})
}

// ChangePassword проверяет текущий пароль и сохраняет новый.
func (a *Auth) ChangePassword(ctx context.Context, id int64, current, next string) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return err
	}
	if utf8.RuneCountInString(next) < minPassword {
		return domain.NewValidationError("newPassword", "must be at least 8 characters")
	}
	user, err := a.users.GetUserByID(ctx, id)
	if err != nil {
		return err
	}
	if !a.hasher.Compare(user.PasswordHash, current) {
		return domain.ErrInvalidCredentials
	}
	hash, err := a.hasher.Hash(next)
	if err != nil {
		return err
	}
	return a.users.SetUserPassword(ctx, id, hash)
}

// DeleteUser удаляет учётную запись.
func (a *Auth) DeleteUser(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeouts.Operation)
	defer cancel()

	if err := ValidateID("id", id); err != nil {
		return err
	}
	return a.users.DeleteUser(ctx, id)
}

// EnsureAdmin создаёт администратора из конфигурации, если его ещё нет.
func (a *Auth) EnsureAdmin(ctx context.Context) error {
	email := strings.TrimSpace(a.cfg.Auth.BootstrapEmail)
	if email == "" || a.cfg.Auth.BootstrapPass == "" {
		return nil
	}
	_, err := a.users.GetUserByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = a.CreateUser(ctx, CreateUserInput{
		FirstName: "Admin",
		Email:     email,
		Role:      string(domain.RoleAdmin),
		Password:  a.cfg.Auth.BootstrapPass,
	})
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil
	}
	if err == nil {
		slog.InfoContext(ctx, "bootstrap admin created", "email", email)
	}
	return err
}
