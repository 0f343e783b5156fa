package handlers

import (
	"net/http"
	"strings"

	"org-sync-backend/pkg/utils"
)

// POST /api/auth/refresh
// Trades a refresh token for a fresh access token.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil || req.RefreshToken == "" {
		utils.WriteBadRequestResponse(w, "refresh_token required")
		return
	}

	jwtService := utils.NewJWTService(h.config.JWTSecret)
	accessToken, expiresAt, err := jwtService.RefreshAccessToken(req.RefreshToken)
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid refresh token")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"access_token": accessToken,
		"expires_at":   expiresAt,
	})
}

// POST /api/auth/dev-token
// Issues a token pair for an arbitrary person. Development only; the
// production deployment sits behind the identity provider.
func (h *Handler) DevToken(w http.ResponseWriter, r *http.Request) {
	if !h.config.IsDevelopment() {
		utils.WriteNotFoundResponse(w, "Not found")
		return
	}
	var req struct {
		PersonID string `json:"personid"`
		Email    string `json:"email"`
	}
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid body")
		return
	}
	if strings.TrimSpace(req.PersonID) == "" || strings.TrimSpace(req.Email) == "" {
		utils.WriteBadRequestResponse(w, "personid and email required")
		return
	}

	jwtService := utils.NewJWTService(h.config.JWTSecret)
	accessToken, refreshToken, expiresAt, err := jwtService.GenerateTokenPair(req.PersonID, req.Email)
	if err != nil {
		utils.WriteInternalServerErrorResponse(w, "Failed to issue tokens")
		return
	}
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"expires_at":    expiresAt,
	})
}
