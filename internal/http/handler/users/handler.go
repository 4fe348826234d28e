package users

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/common"
	"trouvemamission-service/internal/service"
)

type createRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	Role      string `json:"role"`
	Password  string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Handler реализует администрирование учётных записей /api/users.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) Register(router chi.Router) {
	router.Get("/users", common.WithErrorHandling(h.list))
	router.Get("/users/{id}", common.WithErrorHandling(h.get))
	router.Post("/users", common.WithErrorHandling(h.create))
	router.Put("/users/{id}", common.WithErrorHandling(h.update))
	router.Delete("/users/{id}", common.WithErrorHandling(h.delete))
	router.Post("/users/{id}/change-password", common.WithErrorHandling(h.changePassword))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	users, err := h.useCase.ListUsers(r.Context())
	if err != nil {
		return err
	}
	if users == nil {
		users = []domain.User{}
	}
	common.RespondJSON(w, http.StatusOK, users)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	user, err := h.useCase.GetUser(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, user)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	user, err := h.useCase.CreateUser(r.Context(), service.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusCreated, user)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	user, err := h.useCase.UpdateUser(r.Context(), service.UpdateUserInput{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, user)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.useCase.DeleteUser(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.useCase.ChangePassword(r.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
