package logging

import (
	"context"
	"errors"
)

// contextError несёт поля лога, собранные на момент ошибки в сервисе:
// ID сотрудника, проекта и назначения доходят до HTTP-слоя вместе с ошибкой.
type contextError struct {
	err error
	ctx logCtx
}

func (e *contextError) Error() string {
	return e.err.Error()
}

func (e *contextError) Unwrap() error {
	return e.err
}

// WrapError прикрепляет к err поля лога из ctx. nil остаётся nil.
func WrapError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	c, _ := ctx.Value(key).(logCtx)
	return &contextError{err: err, ctx: c}
}

// ErrorCtx переносит поля из ошибки в ctx. Заполненные поля ctx не перезаписываются,
// поэтому request ID и путь запроса остаются от HTTP-слоя.
func ErrorCtx(ctx context.Context, err error) context.Context {
	var e *contextError
	if !errors.As(err, &e) {
		return ctx
	}
	return update(ctx, func(c *logCtx) {
		if c.RequestID == "" {
			c.RequestID = e.ctx.RequestID
		}
		if c.Method == "" {
			c.Method = e.ctx.Method
		}
		if c.Path == "" {
			c.Path = e.ctx.Path
		}
		if c.UserID == 0 {
			c.UserID = e.ctx.UserID
			c.UserRole = e.ctx.UserRole
		}
		if c.CollaboratorID == 0 {
			c.CollaboratorID = e.ctx.CollaboratorID
		}
		if c.ProjectID == 0 {
			c.ProjectID = e.ctx.ProjectID
		}
		if c.AssignmentID == 0 {
			c.AssignmentID = e.ctx.AssignmentID
		}
	})
}
