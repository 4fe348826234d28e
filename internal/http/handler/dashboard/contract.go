package dashboard

import (
	"context"

	"trouvemamission-service/internal/domain"
)

type UseCase interface {
	Dashboard(ctx context.Context) (domain.Dashboard, error)
}
