package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/models"
)

type HealthHandler struct {
	mode   string
	source string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mode, source string) *HealthHandler {
	return &HealthHandler{mode: mode, source: source}
}

// Health godoc
// @Summary Liveness and data mode
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "ok", Mode: h.mode, Source: h.source})
}
