package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"doctorportal-be/config"
	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/observability"
	"doctorportal-be/internal/repository"
	"doctorportal-be/internal/utils"
)

const (
	msgEmailRequired      = "Please enter your email address"
	msgPasswordRequired   = "Please enter your password"
	msgInvalidCredentials = "Invalid email or password"
)

// AuthService signs in the single configured doctor and manages the token
// pair. The plain password never outlives construction.
type AuthService struct {
	doctor       models.Doctor
	passwordHash string

	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	tokens     repository.TokenStore
}

// NewAuthService creates a new auth service for the configured doctor
func NewAuthService(cfg *config.Config, tokens repository.TokenStore) (*AuthService, error) {
	hash, err := utils.HashPassword(cfg.Doctor.Password)
	if err != nil {
		return nil, fmt.Errorf("hash doctor password: %w", err)
	}
	return &AuthService{
		doctor: models.Doctor{
			ID:    cfg.Doctor.ID,
			Email: cfg.Doctor.Email,
			Name:  cfg.Doctor.Name,
		},
		passwordHash: hash,
		secret:       cfg.JWTSecret,
		accessTTL:    cfg.JWTAccessExpiration,
		refreshTTL:   cfg.JWTRefreshExpiration,
		tokens:       tokens,
	}, nil
}

func (s *AuthService) Doctor() *models.Doctor {
	d := s.doctor
	return &d
}

// Login checks the credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewValidationError(msgEmailRequired)
	}
	if password == "" {
		return nil, apperrors.NewValidationError(msgPasswordRequired)
	}

	if !strings.EqualFold(email, s.doctor.Email) || !utils.CheckPassword(s.passwordHash, password) {
		observability.LoggerFromContext(ctx).Info().Str("email", email).Msg("Rejected login")
		return nil, apperrors.NewUnauthorizedError(msgInvalidCredentials)
	}

	return s.issue()
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// revoked so it works exactly once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	claims, err := s.verify(ctx, refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// The verify above is only a fast path; RevokeOnce decides which of two
	// racing refreshes wins.
	first, err := s.tokens.RevokeOnce(ctx, claims.ID, claims.RemainingTTL(time.Now()))
	if err != nil {
		return nil, apperrors.NewInternalError("failed to rotate refresh token", err)
	}
	if !first {
		return nil, apperrors.NewUnauthorizedError("Token has been revoked")
	}
	return s.issue()
}

// Authenticate validates an access token and returns its claims.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*utils.Claims, error) {
	return s.verify(ctx, accessToken, utils.TokenTypeAccess)
}

// Logout revokes the access token in use and, when given, the refresh token.
func (s *AuthService) Logout(ctx context.Context, access *utils.Claims, refreshToken string) error {
	now := time.Now()
	if err := s.tokens.Revoke(ctx, access.ID, access.RemainingTTL(now)); err != nil {
		return apperrors.NewInternalError("failed to revoke access token", err)
	}

	if refreshToken == "" {
		return nil
	}
	claims, err := utils.ValidateToken(refreshToken, s.secret)
	if err != nil || claims.TokenType != utils.TokenTypeRefresh {
		// Already unusable.
		return nil
	}
	if err := s.tokens.Revoke(ctx, claims.ID, claims.RemainingTTL(now)); err != nil {
		return apperrors.NewInternalError("failed to revoke refresh token", err)
	}
	return nil
}

func (s *AuthService) verify(ctx context.Context, token, tokenType string) (*utils.Claims, error) {
	claims, err := utils.ValidateToken(token, s.secret)
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired token")
	}
	if claims.TokenType != tokenType {
		return nil, apperrors.NewUnauthorizedError("Invalid token type")
	}
	if claims.DoctorID != s.doctor.ID {
		return nil, apperrors.NewUnauthorizedError("Unknown account")
	}

	revoked, err := s.tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check token", err)
	}
	if revoked {
		return nil, apperrors.NewUnauthorizedError("Token has been revoked")
	}
	return claims, nil
}

func (s *AuthService) issue() (*models.AuthResponse, error) {
	d := s.doctor
	accessToken, err := utils.GenerateAccessToken(d.ID, d.Email, d.Name, s.secret, s.accessTTL)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate access token", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(d.ID, d.Email, d.Name, s.secret, s.refreshTTL)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to generate refresh token", err)
	}
	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Doctor:       s.Doctor(),
	}, nil
}
