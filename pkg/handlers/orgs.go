package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/utils"
)

// GET /api/orgs/{orgid}
// Serves the cached snapshot, loading and subscribing on first read.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	snap, err := h.service.Load(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, snap)
}

// POST /api/orgs/{orgid}/refresh
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	snap, err := h.service.Engine().Refresh(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, snap)
}

// POST /api/orgs/{orgid}/subscription
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	if err := h.service.Engine().Subscribe(orgID); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]string{"subscription": "active"})
}

// DELETE /api/orgs/{orgid}/subscription
// The snapshot stays readable as a point-in-time copy.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	h.service.Engine().Unsubscribe(orgID)
	utils.WriteSuccessResponse(w, map[string]string{"subscription": "closed"})
}

// PATCH /api/orgs/{orgid}
func (h *Handler) UpdateOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	var req struct {
		Name        *string            `json:"name"`
		Description *string            `json:"description"`
		Visibility  *models.Visibility `json:"visibility"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	ctx := r.Context()
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			utils.WriteBadRequestResponse(w, "Name cannot be empty")
			return
		}
		if err := h.service.UpdateOrgName(ctx, orgID, *req.Name); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Description != nil {
		if err := h.service.UpdateOrgDescription(ctx, orgID, *req.Description); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Visibility != nil {
		if err := h.service.UpdateOrgVisibility(ctx, orgID, *req.Visibility); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	utils.WriteSuccessResponse(w, nil)
}

// Derivation reads, all served from the cached snapshot.

// GET /api/orgs/{orgid}/concerns
func (h *Handler) ListConcerns(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Load(r.Context(), chi.URLParam(r, "orgid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"concerns": snap.Concerns()})
}

// GET /api/orgs/{orgid}/profiles/{profileid}/roles
func (h *Handler) RolesOfProfile(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Load(r.Context(), chi.URLParam(r, "orgid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	profileID := chi.URLParam(r, "profileid")
	if snap.Profile(profileID) == nil {
		utils.WriteNotFoundResponse(w, "profile not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"roles": snap.RolesOfProfile(profileID)})
}

// GET /api/orgs/{orgid}/roles/{roleid}/profiles
func (h *Handler) ProfilesOfRole(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Load(r.Context(), chi.URLParam(r, "orgid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	roleID := chi.URLParam(r, "roleid")
	if snap.Role(roleID) == nil {
		utils.WriteNotFoundResponse(w, "role not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"profiles": snap.ProfilesOfRole(roleID)})
}

// GET /api/orgs/{orgid}/roles/{roleid}/processes
func (h *Handler) ProcessesOfRole(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Load(r.Context(), chi.URLParam(r, "orgid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	roleID := chi.URLParam(r, "roleid")
	if snap.Role(roleID) == nil {
		utils.WriteNotFoundResponse(w, "role not found")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"processes": snap.ProcessesOfRole(roleID)})
}
