package assignments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/http/handler/common"
	"trouvemamission-service/internal/service"
)

type createRequest struct {
	CollaboratorID int64  `json:"collaboratorId"`
	ProjectID      int64  `json:"projectId"`
	Role           string `json:"role"`
	Notes          string `json:"notes"`
}

type updateRequest struct {
	Role  string `json:"role"`
	Notes string `json:"notes"`
}

type removeCollaboratorsRequest struct {
	CollaboratorIDs []int64 `json:"collaboratorIds"`
}

type eligibilityResponse struct {
	Eligible bool `json:"eligible"`
}

// assignmentResponse добавляет к назначению каноничный признак активности.
type assignmentResponse struct {
	domain.Assignment
	Effective bool `json:"effectiveActive"`
}

func toResponse(a domain.Assignment) assignmentResponse {
	return assignmentResponse{Assignment: a, Effective: a.IsActive()}
}

func toResponses(list []domain.Assignment) []assignmentResponse {
	out := make([]assignmentResponse, 0, len(list))
	for _, a := range list {
		out = append(out, toResponse(a))
	}
	return out
}

// Handler реализует эндпоинты /api/assignments.
type Handler struct {
	useCase UseCase
}

func New(useCase UseCase) *Handler {
	return &Handler{useCase: useCase}
}

// RegisterRead вешает эндпоинты чтения, доступные любой роли.
func (h *Handler) RegisterRead(router chi.Router) {
	router.Get("/assignments", common.WithErrorHandling(h.list))
	router.Get("/assignments/active", common.WithErrorHandling(h.listActive))
	router.Get("/assignments/removal-stats", common.WithErrorHandling(h.removalStats))
	router.Get("/assignments/{id}", common.WithErrorHandling(h.get))
	router.Get("/assignments/project/{projectId}", common.WithErrorHandling(h.listByProject))
	router.Get("/assignments/collaborator/{collaboratorId}", common.WithErrorHandling(h.listByCollaborator))
	router.Get("/assignments/collaborator/{collaboratorId}/can-remove", common.WithErrorHandling(h.canRemove))
	router.Post("/assignments/check", common.WithErrorHandling(h.check))
}

// RegisterWrite вешает изменяющие эндпоинты.
func (h *Handler) RegisterWrite(router chi.Router) {
	router.Post("/assignments", common.WithErrorHandling(h.create))
	router.Put("/assignments/{id}", common.WithErrorHandling(h.update))
	router.Put("/assignments/{id}/deactivate", common.WithErrorHandling(h.deactivate))
	router.Put("/assignments/{id}/reactivate", common.WithErrorHandling(h.reactivate))
	router.Put("/assignments/{id}/remove", common.WithErrorHandling(h.remove))
	router.Delete("/assignments/{id}", common.WithErrorHandling(h.remove))
	router.Put("/assignments/collaborator/{collaboratorId}/remove-all", common.WithErrorHandling(h.removeCollaboratorEverywhere))
	router.Put("/assignments/project/{projectId}/remove-collaborators", common.WithErrorHandling(h.removeCollaborators))
	router.Put("/assignments/project/{projectId}/remove-all", common.WithErrorHandling(h.removeAllFromProject))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) error {
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	a, err := h.useCase.CreateAssignment(r.Context(), service.CreateAssignmentInput{
		CollaboratorID: req.CollaboratorID,
		ProjectID:      req.ProjectID,
		Role:           req.Role,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusCreated, toResponse(a))
	return nil
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) error {
	var req createRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	if err := h.useCase.CheckEligibility(r.Context(), req.CollaboratorID, req.ProjectID); err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, eligibilityResponse{Eligible: true})
	return nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) error {
	list, err := h.useCase.ListAssignments(r.Context())
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponses(list))
	return nil
}

func (h *Handler) listActive(w http.ResponseWriter, r *http.Request) error {
	list, err := h.useCase.GetActiveAssignments(r.Context())
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponses(list))
	return nil
}

func (h *Handler) removalStats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.useCase.RemovalStats(r.Context())
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, stats)
	return nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	a, err := h.useCase.GetAssignment(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponse(a))
	return nil
}

func (h *Handler) listByProject(w http.ResponseWriter, r *http.Request) error {
	projectID, err := common.PathID(r, "projectId")
	if err != nil {
		return err
	}
	list, err := h.useCase.GetAssignmentsByProject(r.Context(), projectID)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponses(list))
	return nil
}

func (h *Handler) listByCollaborator(w http.ResponseWriter, r *http.Request) error {
	collaboratorID, err := common.PathID(r, "collaboratorId")
	if err != nil {
		return err
	}
	list, err := h.useCase.GetAssignmentsByCollaborator(r.Context(), collaboratorID)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponses(list))
	return nil
}

func (h *Handler) canRemove(w http.ResponseWriter, r *http.Request) error {
	collaboratorID, err := common.PathID(r, "collaboratorId")
	if err != nil {
		return err
	}
	can, err := h.useCase.CanRemoveCollaborator(r.Context(), collaboratorID)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, can)
	return nil
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	var req updateRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	a, err := h.useCase.UpdateAssignment(r.Context(), id, req.Role, req.Notes)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponse(a))
	return nil
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	a, err := h.useCase.DeactivateAssignment(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponse(a))
	return nil
}

func (h *Handler) reactivate(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	a, err := h.useCase.ReactivateAssignment(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, toResponse(a))
	return nil
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) error {
	id, err := common.PathID(r, "id")
	if err != nil {
		return err
	}
	result, err := h.useCase.RemoveAssignment(r.Context(), id)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) removeCollaboratorEverywhere(w http.ResponseWriter, r *http.Request) error {
	collaboratorID, err := common.PathID(r, "collaboratorId")
	if err != nil {
		return err
	}
	result, err := h.useCase.RemoveCollaboratorFromAllProjects(r.Context(), collaboratorID)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) removeCollaborators(w http.ResponseWriter, r *http.Request) error {
	projectID, err := common.PathID(r, "projectId")
	if err != nil {
		return err
	}
	var req removeCollaboratorsRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		return err
	}
	result, err := h.useCase.RemoveCollaboratorsFromProject(r.Context(), projectID, req.CollaboratorIDs)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, result)
	return nil
}

func (h *Handler) removeAllFromProject(w http.ResponseWriter, r *http.Request) error {
	projectID, err := common.PathID(r, "projectId")
	if err != nil {
		return err
	}
	result, err := h.useCase.RemoveAllCollaboratorsFromProject(r.Context(), projectID)
	if err != nil {
		return err
	}
	common.RespondJSON(w, http.StatusOK, result)
	return nil
}
