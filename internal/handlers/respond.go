package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/middleware"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/observability"
)

const fetchFailedMessage = "Unable to load data. Please try again."

// respondError writes err as an ErrorResponse. This is the only place error
// types become status codes.
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.NewInternalError("Something went wrong", err)
	}

	var status int
	var code, message string
	switch appErr.Type {
	case apperrors.ErrorTypeNotFound:
		status, code, message = http.StatusNotFound, "not_found", appErr.Message
	case apperrors.ErrorTypeValidation:
		status, code, message = http.StatusBadRequest, "validation_error", appErr.Message
	case apperrors.ErrorTypeUnauthorized:
		status, code, message = http.StatusUnauthorized, "unauthorized", appErr.Message
	case apperrors.ErrorTypeTimeout:
		status, code, message = http.StatusGatewayTimeout, "upstream_timeout", fetchFailedMessage
	case apperrors.ErrorTypeExternal:
		status, code, message = http.StatusBadGateway, "upstream_error", fetchFailedMessage
	default:
		status, code, message = http.StatusInternalServerError, "server_error", "Something went wrong"
	}

	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
		observability.LoggerFromContext(c.Request.Context()).Error().Err(err).Msg("Request failed")
	}
	c.JSON(status, models.ErrorResponse{Error: code, Message: message})
}

// session returns the signed-in doctor or writes a 401.
func session(c *gin.Context) (models.Session, bool) {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized", Message: "Unauthorized"})
	}
	return s, ok
}
