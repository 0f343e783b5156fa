package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"org-sync-backend/pkg/middleware"
	"org-sync-backend/pkg/models"
	"org-sync-backend/pkg/organizations"
	"org-sync-backend/pkg/utils"
)

// Profiles

// POST /api/orgs/{orgid}/profiles
func (h *Handler) AddProfile(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		utils.WriteBadRequestResponse(w, "Email required")
		return
	}
	profile, err := h.service.AddPersonByEmail(r.Context(), orgID, req.Email, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"profile": profile})
}

// PATCH /api/orgs/{orgid}/profiles/{profileid}
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	profileID := chi.URLParam(r, "profileid")
	var req struct {
		Name       *string `json:"name"`
		Bio        *string `json:"bio"`
		Admin      *bool   `json:"admin"`
		Supervisor *string `json:"supervisor"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	ctx := r.Context()
	steps := []func() error{}
	if req.Name != nil {
		steps = append(steps, func() error { return h.service.UpdateProfileName(ctx, orgID, profileID, *req.Name) })
	}
	if req.Bio != nil {
		steps = append(steps, func() error { return h.service.UpdateProfileBio(ctx, orgID, profileID, *req.Bio) })
	}
	if req.Admin != nil {
		steps = append(steps, func() error { return h.service.UpdateProfileAdmin(ctx, orgID, profileID, *req.Admin) })
	}
	if req.Supervisor != nil {
		steps = append(steps, func() error {
			return h.service.UpdateProfileSupervisor(ctx, orgID, profileID, *req.Supervisor)
		})
	}
	for _, step := range steps {
		if err := step(); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/profiles/{profileid}
func (h *Handler) RemoveProfile(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RemoveProfile(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "profileid")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// Roles

// POST /api/orgs/{orgid}/roles
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.WriteBadRequestResponse(w, "Title required")
		return
	}
	role, err := h.service.CreateRole(r.Context(), chi.URLParam(r, "orgid"), req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"role": role})
}

// PATCH /api/orgs/{orgid}/roles/{roleid}
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	roleID := chi.URLParam(r, "roleid")
	var req struct {
		Title       *string   `json:"title"`
		Description *string   `json:"description"`
		Team        *string   `json:"team"`
		Short       *[]string `json:"short"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	ctx := r.Context()
	steps := []func() error{}
	if req.Title != nil {
		steps = append(steps, func() error { return h.service.UpdateRoleTitle(ctx, orgID, roleID, *req.Title) })
	}
	if req.Description != nil {
		steps = append(steps, func() error { return h.service.UpdateRoleDescription(ctx, orgID, roleID, *req.Description) })
	}
	if req.Team != nil {
		steps = append(steps, func() error { return h.service.UpdateRoleTeam(ctx, orgID, roleID, *req.Team) })
	}
	if req.Short != nil {
		steps = append(steps, func() error { return h.service.UpdateRoleShortName(ctx, orgID, roleID, *req.Short) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/roles/{roleid}
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRole(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "roleid")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// PUT /api/orgs/{orgid}/roles/{roleid}/assignees/{profileid}
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	err := h.service.AssignPerson(r.Context(), chi.URLParam(r, "orgid"),
		chi.URLParam(r, "profileid"), chi.URLParam(r, "roleid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/roles/{roleid}/assignees/{profileid}
func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	err := h.service.UnassignPerson(r.Context(), chi.URLParam(r, "orgid"),
		chi.URLParam(r, "profileid"), chi.URLParam(r, "roleid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// Teams

// POST /api/orgs/{orgid}/teams
func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		utils.WriteBadRequestResponse(w, "Name required")
		return
	}
	team, err := h.service.CreateTeam(r.Context(), chi.URLParam(r, "orgid"), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"team": team})
}

// PATCH /api/orgs/{orgid}/teams/{teamid}
func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	teamID := chi.URLParam(r, "teamid")
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	ctx := r.Context()
	if req.Name != nil {
		if err := h.service.UpdateTeamName(ctx, orgID, teamID, *req.Name); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	if req.Description != nil {
		if err := h.service.UpdateTeamDescription(ctx, orgID, teamID, *req.Description); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/teams/{teamid}
func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteTeam(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "teamid")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// Processes

// POST /api/orgs/{orgid}/processes
func (h *Handler) CreateProcess(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		utils.WriteBadRequestResponse(w, "Title required")
		return
	}
	process, err := h.service.CreateProcess(r.Context(), chi.URLParam(r, "orgid"), req.Title)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"process": process})
}

// PATCH /api/orgs/{orgid}/processes/{processid}
func (h *Handler) UpdateProcess(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgid")
	processID := chi.URLParam(r, "processid")
	var req struct {
		Title       *string       `json:"title"`
		Concern     *string       `json:"concern"`
		State       *models.State `json:"state"`
		Accountable *string       `json:"accountable"`
		Short       *[]string     `json:"short"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	ctx := r.Context()
	steps := []func() error{}
	if req.Title != nil {
		steps = append(steps, func() error { return h.service.UpdateProcessTitle(ctx, orgID, processID, *req.Title) })
	}
	if req.Concern != nil {
		steps = append(steps, func() error { return h.service.UpdateProcessConcern(ctx, orgID, processID, *req.Concern) })
	}
	if req.State != nil {
		steps = append(steps, func() error { return h.service.UpdateProcessState(ctx, orgID, processID, *req.State) })
	}
	if req.Accountable != nil {
		steps = append(steps, func() error {
			return h.service.UpdateProcessAccountable(ctx, orgID, processID, *req.Accountable)
		})
	}
	if req.Short != nil {
		steps = append(steps, func() error { return h.service.UpdateProcessShortName(ctx, orgID, processID, *req.Short) })
	}
	for _, step := range steps {
		if err := step(); err != nil {
			writeServiceError(w, err)
			return
		}
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/processes/{processid}
func (h *Handler) DeleteProcess(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProcess(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "processid")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// Changes

// POST /api/orgs/{orgid}/changes
func (h *Handler) CreateChange(w http.ResponseWriter, r *http.Request) {
	person, err := middleware.RequirePerson(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	orgID := chi.URLParam(r, "orgid")
	var req struct {
		What string `json:"what"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.What) == "" {
		utils.WriteBadRequestResponse(w, "What required")
		return
	}

	// the author is recorded as their membership profile
	snap, err := h.service.Load(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	who := ""
	if p := snap.ProfileOfPerson(person.ID); p != nil {
		who = p.ID
	}

	change, err := h.service.CreateChange(r.Context(), orgID, who, req.What)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"change": change})
}

// PATCH /api/orgs/{orgid}/changes/{changeid}
func (h *Handler) UpdateChange(w http.ResponseWriter, r *http.Request) {
	var edit organizations.ChangeEdit
	if err := utils.ParseJSONBody(r, &edit); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	err := h.service.UpdateChange(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "changeid"), edit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/changes/{changeid}
func (h *Handler) DeleteChange(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteChange(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "changeid")); err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// Comments

// GET /api/orgs/{orgid}/comments?ids=a,b,c
func (h *Handler) GetComments(w http.ResponseWriter, r *http.Request) {
	raw := utils.GetQueryParam(r, "ids", "")
	var ids []string
	if raw != "" {
		ids = strings.Split(raw, ",")
	}
	comments, err := h.service.Comments(r.Context(), chi.URLParam(r, "orgid"), ids)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{"comments": comments})
}

// POST /api/orgs/{orgid}/comments
func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	person, err := middleware.RequirePerson(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}
	orgID := chi.URLParam(r, "orgid")
	var req struct {
		Owner   string `json:"owner"`
		OwnerID string `json:"ownerid"`
		What    string `json:"what"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.What) == "" {
		utils.WriteBadRequestResponse(w, "What required")
		return
	}

	snap, err := h.service.Load(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	who := ""
	if p := snap.ProfileOfPerson(person.ID); p != nil {
		who = p.ID
	}

	comment, err := h.service.AddComment(r.Context(), orgID,
		organizations.CommentOwner(req.Owner), req.OwnerID, who, req.What)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteCreatedResponse(w, map[string]interface{}{"comment": comment})
}

// PATCH /api/orgs/{orgid}/comments/{commentid}
func (h *Handler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		What string `json:"what"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	err := h.service.UpdateComment(r.Context(), chi.URLParam(r, "orgid"), chi.URLParam(r, "commentid"), req.What)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}

// DELETE /api/orgs/{orgid}/comments/{commentid}?owner=role&ownerid=...
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	owner := utils.GetQueryParam(r, "owner", "")
	ownerID := utils.GetQueryParam(r, "ownerid", "")
	if owner == "" {
		utils.WriteBadRequestResponse(w, "owner query parameter required")
		return
	}
	err := h.service.DeleteComment(r.Context(), chi.URLParam(r, "orgid"),
		organizations.CommentOwner(owner), ownerID, chi.URLParam(r, "commentid"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	utils.WriteSuccessResponse(w, nil)
}
