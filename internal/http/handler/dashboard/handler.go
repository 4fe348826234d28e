package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouvemamission-service/internal/http/handler/common"
)

// Handler реализует GET /api/dashboard.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Get("/dashboard", common.WithErrorHandling(h.handle))
}

func (h *Handler) handle(w http.ResponseWriter, r *http.Request) error {
	dashboard, err := h.useCase.Dashboard(r.Context())
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, dashboard)
	return nil
}
