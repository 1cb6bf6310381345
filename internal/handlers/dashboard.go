package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/models"
	"doctorportal-be/internal/services"
)

type DashboardHandler struct {
	contacts *services.ContactService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(contacts *services.ContactService) *DashboardHandler {
	return &DashboardHandler{contacts: contacts}
}

// GetDashboard godoc
// @Summary Dashboard analytics and patient list
// @Description Analytics are computed over every contact; the patient list is narrowed by q (name or phone).
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Param q query string false "Name or phone search"
// @Success 200 {object} models.DashboardResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	analytics, set, err := h.contacts.Dashboard(c.Request.Context(), s, c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.DashboardResponse{
		Analytics: *analytics,
		Patients:  set.Contacts,
		Mode:      h.contacts.Mode(),
		Sample:    set.Sample,
	})
}

// GetReports godoc
// @Summary Reports page analytics
// @Tags dashboard
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.ReportsResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /reports [get]
func (h *DashboardHandler) GetReports(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	analytics, sample, err := h.contacts.Analytics(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ReportsResponse{
		Analytics: *analytics,
		Mode:      h.contacts.Mode(),
		Sample:    sample,
	})
}
