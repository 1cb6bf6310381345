package repository

import (
	"context"
	"errors"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"doctorportal-be/internal/apperrors"
	"doctorportal-be/internal/models"
)

// SettingsStore persists per-doctor portal settings.
type SettingsStore interface {
	Get(ctx context.Context, doctorID string) (*models.Settings, error)
	Save(ctx context.Context, settings *models.Settings) error
}

// SettingsRepository stores settings in MongoDB keyed by doctor id.
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new repository
func NewSettingsRepository(collection *mongo.Collection) *SettingsRepository {
	return &SettingsRepository{collection: collection}
}

// Get returns a NotFound error when the doctor has never saved settings
func (r *SettingsRepository) Get(ctx context.Context, doctorID string) (*models.Settings, error) {
	var settings models.Settings
	err := r.collection.FindOne(ctx, bson.M{"_id": doctorID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NewNotFoundError("settings not found")
		}
		return nil, apperrors.NewInternalError("failed to load settings", err)
	}
	return &settings, nil
}

// Save upserts the settings document for settings.DoctorID
func (r *SettingsRepository) Save(ctx context.Context, settings *models.Settings) error {
	update := bson.M{"$set": bson.M{
		"profile":       settings.Profile,
		"notifications": settings.Notifications,
		"updatedAt":     settings.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": settings.DoctorID}, update, opts); err != nil {
		return apperrors.NewInternalError("failed to save settings", err)
	}
	return nil
}

// MemorySettingsStore keeps settings in process when MONGODB_URI is unset.
type MemorySettingsStore struct {
	mu       sync.RWMutex
	settings map[string]models.Settings
}

// NewMemorySettingsStore creates an in-process settings store
func NewMemorySettingsStore() *MemorySettingsStore {
	return &MemorySettingsStore{settings: make(map[string]models.Settings)}
}

func (s *MemorySettingsStore) Get(_ context.Context, doctorID string) (*models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	settings, ok := s.settings[doctorID]
	if !ok {
		return nil, apperrors.NewNotFoundError("settings not found")
	}
	return &settings, nil
}

func (s *MemorySettingsStore) Save(_ context.Context, settings *models.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings[settings.DoctorID] = *settings
	return nil
}
