package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/common"
	"trouvemamission-service/internal/http/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handler реализует вход и профиль текущего пользователя.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// RegisterPublic вешает POST /auth/login, доступный без токена.
func (h *Handler) RegisterPublic(router chi.Router) {
	router.Post("/auth/login", common.WithErrorHandling(h.login))
}

// RegisterSession вешает GET /auth/me. Ожидает сессию от middleware.Authenticate.
func (h *Handler) RegisterSession(router chi.Router) {
	router.Get("/auth/me", common.WithErrorHandling(h.me))
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	result, err := h.useCase.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) error {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return domain.ErrUnauthorized
	}
	user, err := h.useCase.GetUser(r.Context(), session.UserID)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, user)
	return nil
}
