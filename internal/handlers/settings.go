package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/models"
	"doctorportal-be/internal/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSettings godoc
// @Summary Doctor settings
// @Tags settings
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.Settings
// @Failure 401 {object} models.ErrorResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary Update profile and notification preferences
// @Tags settings
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body models.UpdateSettingsRequest true "Settings"
// @Success 200 {object} models.Settings
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: bindingMessage(err),
		})
		return
	}

	settings, err := h.settings.Update(c.Request.Context(), s, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
