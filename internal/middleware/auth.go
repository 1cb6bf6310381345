package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/observability"
	"doctorportal-be/internal/utils"
)

const (
	sessionKey = "session"
	claimsKey  = "claims"
)

// Authenticator validates access tokens. Implemented by services.AuthService.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*utils.Claims, error)
}

// AuthMiddleware turns a bearer access token into a models.Session on the
// gin context. Requests without a valid token stop here with 401.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header required",
			})
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeUnauthorized {
				c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "unauthorized",
					Message: appErr.Message,
				})
				return
			}
			observability.LoggerFromContext(c.Request.Context()).Error().Err(err).Msg("token check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "server_error",
				Message: "Could not verify session",
			})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(sessionKey, models.Session{
			DoctorID: claims.DoctorID,
			Email:    claims.Email,
			Name:     claims.Name,
		})
		c.Next()
	}
}

// SessionFrom returns the session set by AuthMiddleware.
func SessionFrom(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return models.Session{}, false
	}
	s, ok := v.(models.Session)
	return s, ok
}

// ClaimsFrom returns the validated access token claims.
func ClaimsFrom(c *gin.Context) (*utils.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*utils.Claims)
	return claims, ok
}
