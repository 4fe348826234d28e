package collaborators

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/common"
)

type request struct {
	Name            string                    `json:"name"`
	Email           string                    `json:"email"`
	Phone           string                    `json:"phone"`
	Role            string                    `json:"role"`
	Grade           string                    `json:"grade"`
	Status          domain.CollaboratorStatus `json:"status"`
	ExperienceYears int                       `json:"experienceYears"`
	Skills          common.Skills             `json:"skills"`
}

func (r request) toDomain(id int64) domain.Collaborator {
	return domain.Collaborator{
		ID:              id,
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Role:            r.Role,
		Grade:           r.Grade,
		Status:          r.Status,
		ExperienceYears: r.ExperienceYears,
		Skills:          r.Skills.Domain(),
	}
}

// Handler реализует эндпоинты /api/collaborators и справочник навыков.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) RegisterRead(router chi.Router) {
	router.Get("/collaborators", common.WithErrorHandling(h.list))
	router.Get("/collaborators/active", common.WithErrorHandling(h.listByActivity(true)))
	router.Get("/collaborators/inactive", common.WithErrorHandling(h.listByActivity(false)))
	router.Get("/collaborators/search", common.WithErrorHandling(h.list))
	router.Get("/collaborators/stats", common.WithErrorHandling(h.stats))
	router.Get("/collaborators/statistics", common.WithErrorHandling(h.stats))
	router.Get("/collaborators/{id}", common.WithErrorHandling(h.get))
	router.Get("/skills", common.WithErrorHandling(h.skills))
}

func (h *Handler) RegisterWrite(router chi.Router) {
	router.Post("/collaborators", common.WithErrorHandling(h.create))
	router.Put("/collaborators/{id}", common.WithErrorHandling(h.update))
	router.Put("/collaborators/{id}/deactivate", common.WithErrorHandling(h.deactivate))
	router.Put("/collaborators/{id}/reactivate", common.WithErrorHandling(h.reactivate))
	router.Delete("/collaborators/{id}", common.WithErrorHandling(h.delete))
}

// filterFromQuery читает ?active=, ?status= и ?skills=a,b.
func filterFromQuery(r *http.Request) (domain.CollaboratorFilter, error) {
	active, err := common.QueryBool(r, "active")
	if err != nil {
		return domain.CollaboratorFilter{}, err
	}
	return domain.CollaboratorFilter{
		Active: active,
		Status: domain.CollaboratorStatus(r.URL.Query().Get("status")),
		Skills: common.QueryList(r, "skills"),
	}, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	filter, err := filterFromQuery(r)
	if err != nil {
		return err
	}
	return h.respondList(w, r, filter)
}

func (h *Handler) listByActivity(active bool) func(http.ResponseWriter, *http.Request) error {
	return func(w http.ResponseWriter, r *http.Request) error {
		filter, err := filterFromQuery(r)
		if err != nil {
			return err
		}
		filter.Active = &active
		return h.respondList(w, r, filter)
	}
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, filter domain.CollaboratorFilter) error {
	list, err := h.useCase.ListCollaborators(r.Context(), filter)
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.Collaborator{}
	}
	common.RespondJSON(w, http.StatusOK, list)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	c, err := h.useCase.GetCollaborator(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, c)
	return nil
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.useCase.CollaboratorStats(r.Context())
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, stats)
	return nil
}

func (h *Handler) skills(w http.ResponseWriter, r *http.Request) error {
	skills, err := h.useCase.ListSkills(r.Context())
	if err != nil {
		return err
	}
	if skills == nil {
		skills = []string{}
	}
	common.RespondJSON(w, http.StatusOK, skills)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var req request
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	c, err := h.useCase.CreateCollaborator(r.Context(), req.toDomain(0))
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusCreated, c)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	var req request
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	c, err := h.useCase.UpdateCollaborator(r.Context(), req.toDomain(id))
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, c)
	return nil
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	c, err := h.useCase.DeactivateCollaborator(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, c)
	return nil
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	c, err := h.useCase.ReactivateCollaborator(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, c)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.useCase.DeleteCollaborator(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
