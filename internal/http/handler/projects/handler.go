package projects

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/common"
)

type request struct {
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	Client         string               `json:"client"`
	ProjectManager string               `json:"projectManager"`
	Status         domain.ProjectStatus `json:"status"`
	StartDate      common.Date          `json:"startDate"`
	EndDate        common.Date          `json:"endDate"`
	TeamSize       int                  `json:"teamSize"`
	Progress       int                  `json:"progress"`
	Skills         common.Skills        `json:"skills"`
}

func (r request) toDomain(id int64) domain.Project {
	return domain.Project{
		ID:             id,
		Name:           r.Name,
		Description:    r.Description,
		Client:         r.Client,
		ProjectManager: r.ProjectManager,
		Status:         r.Status,
		StartDate:      r.StartDate.Time,
		EndDate:        r.EndDate.Time,
		TeamSize:       r.TeamSize,
		Progress:       r.Progress,
		Skills:         r.Skills.Domain(),
	}
}

// Handler реализует эндпоинты /api/projects.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

func (h *Handler) RegisterRead(router chi.Router) {
	router.Get("/projects", common.WithErrorHandling(h.list))
	router.Get("/projects/active", common.WithErrorHandling(h.listByActivity(true)))
	router.Get("/projects/inactive", common.WithErrorHandling(h.listByActivity(false)))
	router.Get("/projects/search", common.WithErrorHandling(h.list))
	router.Get("/projects/stats", common.WithErrorHandling(h.stats))
	router.Get("/projects/statistics", common.WithErrorHandling(h.stats))
	router.Get("/projects/status/{status}", common.WithErrorHandling(h.listByStatus))
	router.Get("/projects/client/{client}", common.WithErrorHandling(h.listByClient))
	router.Get("/projects/{id}", common.WithErrorHandling(h.get))
}

func (h *Handler) RegisterWrite(router chi.Router) {
	router.Post("/projects", common.WithErrorHandling(h.create))
	router.Put("/projects/{id}", common.WithErrorHandling(h.update))
	router.Put("/projects/{id}/deactivate", common.WithErrorHandling(h.deactivate))
	router.Put("/projects/{id}/reactivate", common.WithErrorHandling(h.reactivate))
	router.Delete("/projects/{id}", common.WithErrorHandling(h.delete))
}

func filterFromQuery(r *http.Request) (domain.ProjectFilter, error) {
	active, err := common.QueryBool(r, "active")
	if err != nil {
		return domain.ProjectFilter{}, err
	}
	q := r.URL.Query()
	return domain.ProjectFilter{
		Active: active,
		Status: domain.ProjectStatus(q.Get("status")),
		Client: q.Get("client"),
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

func (h *Handler) listByStatus(w http.ResponseWriter, r *http.Request) error {
	filter, err := filterFromQuery(r)
	if err != nil {
		return err
	}
	filter.Status = domain.ProjectStatus(chi.URLParam(r, "status"))
	return h.respondList(w, r, filter)
}

func (h *Handler) listByClient(w http.ResponseWriter, r *http.Request) error {
	filter, err := filterFromQuery(r)
	if err != nil {
		return err
	}
	filter.Client = chi.URLParam(r, "client")
	return h.respondList(w, r, filter)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, filter domain.ProjectFilter) error {
	list, err := h.useCase.ListProjects(r.Context(), filter)
	if err != nil {
		return err
	}
	if list == nil {
		list = []domain.Project{}
	}
	common.RespondJSON(w, http.StatusOK, list)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.useCase.GetProject(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.useCase.ProjectStats(r.Context())
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, stats)
	return nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var req request
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	p, err := h.useCase.CreateProject(r.Context(), req.toDomain(0))
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusCreated, p)
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
	p, err := h.useCase.UpdateProject(r.Context(), req.toDomain(id))
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.useCase.DeactivateProject(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	p, err := h.useCase.ReactivateProject(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, p)
	return nil
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.useCase.DeleteProject(r.Context(), id); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}
