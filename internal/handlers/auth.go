package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/middleware"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/services"
)

type AuthHandler struct {
	auth     *services.AuthService
	settings *services.SettingsService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *services.AuthService, settings *services.SettingsService) *AuthHandler {
	return &AuthHandler{auth: auth, settings: settings}
}

// Login godoc
// @Summary Sign in with the clinic credentials
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req models.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: bindingMessage(err),
		})
		return
	}

	resp, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Revoke the current session
// @Tags auth
// @Security ApiKeyAuth
// @Accept json
// @Param request body models.LogoutRequest false "Refresh token to revoke"
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "Unauthorized"})
		return
	}

	// The body is optional; a missing or malformed one only skips the
	// refresh token.
	var req models.LogoutRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.auth.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me godoc
// @Summary Current doctor and profile
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MeResponse{Doctor: h.auth.Doctor(), Profile: settings.Profile})
}
