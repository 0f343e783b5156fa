package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/organizations"
	"org-sync-backend/pkg/utils"
)

// POST /api/orgs/{orgid}/steps
func (h *Handler) CreateStep(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	var req struct {
		Parent string `json:"parent"`
		Index  int    `json:"index"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if req.Parent == "" {
		utils.WriteBadRequestResponse(w, "Parent required")
		return
	}
	step, err := h.service.CreateStepUnder(r.Context(), orgID, req.Parent, req.Index)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"step": step})
}

// POST /api/orgs/{orgid}/steps/{stepid}/move
func (h *Handler) MoveStep(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	stepID := chi.URLParam(r, "stepid")
	var req struct {
		Parent string `json:"parent"`
		Index  int    `json:"index"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if req.Parent == "" {
		utils.WriteBadRequestResponse(w, "Parent required")
		return
	}
	if err := h.service.MoveStep(r.Context(), orgID, stepID, req.Parent, req.Index); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// PATCH /api/orgs/{orgid}/steps/{stepid}
func (h *Handler) UpdateStep(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	stepID := chi.URLParam(r, "stepid")
	var req struct {
		What       *string            `json:"what"`
		Visibility *models.Visibility `json:"visibility"`
		Done       *models.Completion `json:"done"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	ctx := r.Context()
	if req.What != nil {
		if err := h.service.UpdateStepText(ctx, orgID, stepID, *req.What); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Visibility != nil {
		if err := h.service.UpdateStepVisibility(ctx, orgID, stepID, *req.Visibility); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Done != nil {
		if err := h.service.UpdateStepCompletion(ctx, orgID, stepID, *req.Done); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/steps/{stepid}
func (h *Handler) DeleteStep(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteStep(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "stepid")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

func rciKind(raw string) (organizations.RCIKind, bool) {
	switch organizations.RCIKind(raw) {
	case organizations.RCIResponsible, organizations.RCIConsulted, organizations.RCIInformed:
		return organizations.RCIKind(raw), true
	}
	return "", false
}

// PUT /api/orgs/{orgid}/steps/{stepid}/rci/{kind}/{roleid}
func (h *Handler) AddStepRCI(w http.ResponseWriter, r *http.Request) {
	kind, ok := rciKind(chi.URLParam(r, "kind"))
	if !ok {
		utils.WriteBadRequestResponse(w, "kind must be responsible, consulted or informed")
		return
	}
	err := h.service.AddStepRCI(r.Context(), chi.URLParam(r, "orgid"),
		chi.URLParam(r, "stepid"), kind, chi.URLParam(r, "roleid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/steps/{stepid}/rci/{kind}/{roleid}
func (h *Handler) RemoveStepRCI(w http.ResponseWriter, r *http.Request) {
	kind, ok := rciKind(chi.URLParam(r, "kind"))
	if !ok {
		utils.WriteBadRequestResponse(w, "kind must be responsible, consulted or informed")
		return
	}
	err := h.service.RemoveStepRCI(r.Context(), chi.URLParam(r, "orgid"),
		chi.URLParam(r, "stepid"), kind, chi.URLParam(r, "roleid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}
