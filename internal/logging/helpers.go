package logging

import "context"

// update применяет изменение к копии logCtx из контекста.
func update(ctx context.Context, fn func(c *logCtx)) context.Context {
	c, _ := ctx.Value(key).(logCtx)
	fn(&c)
	return context.WithValue(ctx, key, c)
}

// WithLogRequestID добавляет request ID в контекст.
func WithLogRequestID(ctx context.Context, requestID string) context.Context {
	return update(ctx, func(c *logCtx) { c.RequestID = requestID })
}

// WithLogRequestPath добавляет путь запроса в контекст.
func WithLogRequestPath(ctx context.Context, path string) context.Context {
	return update(ctx, func(c *logCtx) { c.Path = path })
}

// WithLogRequestMethod добавляет метод запроса в контекст.
func WithLogRequestMethod(ctx context.Context, method string) context.Context {
	return update(ctx, func(c *logCtx) { c.Method = method })
}

// WithLogRequestStatus добавляет статус ответа в контекст.
func WithLogRequestStatus(ctx context.Context, status int) context.Context {
	return update(ctx, func(c *logCtx) { c.Status = status })
}

// WithLogRequestDuration добавляет длительность запроса в контекст.
func WithLogRequestDuration(ctx context.Context, duration string) context.Context {
	return update(ctx, func(c *logCtx) { c.RequestDuration = duration })
}

// WithLogSession добавляет ID и роль вызывающего пользователя.
func WithLogSession(ctx context.Context, userID int64, role string) context.Context {
	return update(ctx, func(c *logCtx) {
		c.UserID = userID
		c.UserRole = role
	})
}

func WithLogCollaboratorID(ctx context.Context, id int64) context.Context {
	return update(ctx, func(c *logCtx) { c.CollaboratorID = id })
}

func WithLogProjectID(ctx context.Context, id int64) context.Context {
	return update(ctx, func(c *logCtx) { c.ProjectID = id })
}

func WithLogAssignmentID(ctx context.Context, id int64) context.Context {
	return update(ctx, func(c *logCtx) { c.AssignmentID = id })
}
