package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"trouvemamission-service/internal/domain"
)

var userColumns = []string{
	"id", "first_name", "last_name", "email", "phone", "position", "role", "password_hash", "created_at",
}

func scanUser(row scanner) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Position, &u.Role, &u.PasswordHash, &u.CreatedAt)
	return u, err
}

// CreateUser сохраняет учётную запись. Email уникален без учёта регистра.
func (s *Storage) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	query, args, err := s.sb.
		Insert("users").
		Columns("first_name", "last_name", "email", "phone", "position", "role", "password_hash", "created_at").
		Values(u.FirstName, u.LastName, strings.ToLower(u.Email), u.Phone, u.Position, string(u.Role), u.PasswordHash, s.nower.Now()).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build insert user query", "error", err)
		return domain.User{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	created, err := scanUser(s.conn(ctx).QueryRow(ctx, query, args...))
	if isUniqueViolation(err) {
		return domain.User{}, domain.ErrEmailTaken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to insert user", "error", err)
		return domain.User{}, wrapExecError(err)
	}
	return created, nil
}

// GetUserByID возвращает пользователя по ID.
func (s *Storage) GetUserByID(ctx context.Context, id int64) (domain.User, error) {
	return s.getUser(ctx, squirrel.Eq{"id": id})
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.getUser(ctx, squirrel.Eq{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (s *Storage) getUser(ctx context.Context, where squirrel.Eq) (domain.User, error) {
	query, args, err := s.sb.
		Select(userColumns...).
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build select user query", "error", err)
		return domain.User{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	u, err := scanUser(s.conn(ctx).QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to scan user", "error", err)
		return domain.User{}, fmt.Errorf("%w: %v", ErrScanResult, err)
	}
	return u, nil
}

// ListUsers возвращает все учётные записи.
func (s *Storage) ListUsers(ctx context.Context) ([]domain.User, error) {
	query, args, err := s.sb.
		Select(userColumns...).
		From("users").
		OrderBy("last_name ASC", "first_name ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	rows, err := s.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to query users", "error", err)
		return nil, wrapExecError(err)
	}
	defer rows.Close()

	result := []domain.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanResult, err)
		}
		result = append(result, u)
	}
	return result, rows.Err()
}

// UpdateUser обновляет профиль и роль пользователя.
func (s *Storage) UpdateUser(ctx context.Context, u domain.User) (domain.User, error) {
	query, args, err := s.sb.
		Update("users").
		SetMap(map[string]any{
			"first_name": u.FirstName,
			"last_name":  u.LastName,
			"email":      strings.ToLower(u.Email),
			"phone":      u.Phone,
			"position":   u.Position,
			"role":       string(u.Role),
		}).
		Where(squirrel.Eq{"id": u.ID}).
		Suffix("RETURNING " + joinColumns(userColumns)).
		ToSql()
	if err != nil {
		slog.ErrorContext(ctx, "failed to build update user query", "error", err)
		return domain.User{}, fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	updated, err := scanUser(s.conn(ctx).QueryRow(ctx, query, args...))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return domain.User{}, domain.ErrUserNotFound
	case isUniqueViolation(err):
		return domain.User{}, domain.ErrEmailTaken
	case err != nil:
		slog.ErrorContext(ctx, "failed to update user", "error", err, "user_id", u.ID)
		return domain.User{}, wrapExecError(err)
	}
	return updated, nil
}

// SetUserPassword заменяет хеш пароля.
func (s *Storage) SetUserPassword(ctx context.Context, id int64, hash string) error {
	query, args, err := s.sb.
		Update("users").
		Set("password_hash", hash).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update password", "error", err, "user_id", id)
		return wrapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// DeleteUser удаляет учётную запись.
func (s *Storage) DeleteUser(ctx context.Context, id int64) error {
	query, args, err := s.sb.
		Delete("users").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildQuery, err)
	}
	tag, err := s.conn(ctx).Exec(ctx, query, args...)
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete user", "error", err, "user_id", id)
		return wrapExecError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
