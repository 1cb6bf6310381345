package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/models"
	"doctorportal-be/internal/services"
)

type AppointmentHandler struct {
	contacts *services.ContactService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(contacts *services.ContactService) *AppointmentHandler {
	return &AppointmentHandler{contacts: contacts}
}

// ListAppointments godoc
// @Summary Scheduled appointments, earliest first
// @Tags appointments
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.ContactListResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /appointments [get]
func (h *AppointmentHandler) ListAppointments(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	set, err := h.contacts.Appointments(c.Request.Context(), s)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ContactListResponse{
		Patients: set.Contacts,
		Total:    len(set.Contacts),
		Mode:     h.contacts.Mode(),
		Sample:   set.Sample,
	})
}
