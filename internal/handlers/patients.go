package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/models"
	"doctorportal-be/internal/services"
)

type PatientHandler struct {
	contacts *services.ContactService
}

// NewPatientHandler creates a new patient handler
func NewPatientHandler(contacts *services.ContactService) *PatientHandler {
	return &PatientHandler{contacts: contacts}
}

// ListPatients godoc
// @Summary List patients
// @Description Substring search on name (case and accent insensitive) or phone. fuzzy=true ranks names by typo-tolerant match instead.
// @Tags patients
// @Security ApiKeyAuth
// @Produce json
// @Param q query string false "Search query"
// @Param fuzzy query bool false "Rank by fuzzy name match"
// @Success 200 {object} models.ContactListResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /patients [get]
func (h *PatientHandler) ListPatients(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	fuzzy, _ := strconv.ParseBool(c.DefaultQuery("fuzzy", "false"))
	set, err := h.contacts.SearchPatients(c.Request.Context(), s, c.Query("q"), fuzzy)
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

// GetPatient godoc
// @Summary Patient details
// @Tags patients
// @Security ApiKeyAuth
// @Produce json
// @Param id path string true "Contact ID"
// @Success 200 {object} models.PatientDetailResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Failure 504 {object} models.ErrorResponse
// @Router /patients/{id} [get]
func (h *PatientHandler) GetPatient(c *gin.Context) {
	s, ok := session(c)
	if !ok {
		return
	}

	contact, sample, err := h.contacts.GetContact(c.Request.Context(), s, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PatientDetailResponse{
		Patient: models.NewPatientDetail(*contact, h.contacts.Location()),
		Mode:    h.contacts.Mode(),
		Sample:  sample,
	})
}
