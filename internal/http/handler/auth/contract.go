package auth

import (
	"context"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/service"
)

type UseCase interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
}
