package services

import (
	"context"
	"time"

	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
	"doctorportal-be/internal/repository"
	"doctorportal-be/internal/utils"
)

type SettingsService struct {
	store  repository.SettingsStore
	doctor models.Doctor
	now    func() time.Time
}

// NewSettingsService creates a new settings service
func NewSettingsService(store repository.SettingsStore, doctor *models.Doctor) *SettingsService {
	return &SettingsService{store: store, doctor: *doctor, now: time.Now}
}

// Get returns the saved settings, or the defaults when nothing is saved yet.
func (s *SettingsService) Get(ctx context.Context, session models.Session) (*models.Settings, error) {
	settings, err := s.store.Get(ctx, session.DoctorID)
	if err == nil {
		return settings, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}

	doctor := s.doctor
	if session.DoctorID != "" {
		doctor.ID = session.DoctorID
	}
	defaults := models.DefaultSettings(&doctor)
	return &defaults, nil
}

// Update replaces profile and notification settings. Profile text is stored
// as plain text with any markup removed.
func (s *SettingsService) Update(ctx context.Context, session models.Session, req *models.UpdateSettingsRequest) (*models.Settings, error) {
	profile := models.Profile{
		Name:      utils.SanitizeText(req.Profile.Name),
		Email:     utils.SanitizeText(req.Profile.Email),
		Phone:     utils.SanitizeText(req.Profile.Phone),
		Specialty: utils.SanitizeText(req.Profile.Specialty),
	}
	if profile.Name == "" {
		return nil, apperrors.NewValidationError("Name must not be empty")
	}

	settings := &models.Settings{
		DoctorID:      session.DoctorID,
		Profile:       profile,
		Notifications: req.Notifications,
		UpdatedAt:     s.now().UTC(),
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}
