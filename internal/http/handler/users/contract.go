package users

import (
	"context"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/service"
)

type UseCase interface {
	CreateUser(ctx context.Context, in service.CreateUserInput) (domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, in service.UpdateUserInput) (domain.User, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	DeleteUser(ctx context.Context, id int64) error
}
