package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ModeLive, cfg.Data.Mode)
	assert.Equal(t, SourceFirestore, cfg.Data.Source)
	assert.Equal(t, PolicyExplicit, cfg.Data.TypePolicy)
	assert.Equal(t, 10*time.Second, cfg.Data.FetchTimeout)
	assert.Equal(t, "doctor@clinic.com", cfg.Doctor.Email)
	assert.Equal(t, "demo-doctor-001", cfg.Doctor.ID)
	assert.Equal(t, "contacts", cfg.Data.ContactsCollection)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("DATA_MODE", "DEMO")
	t.Setenv("PATIENT_TYPE_POLICY", "recency")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("CONTACTS_PARTITION_BY_DOCTOR", "true")
	t.Setenv("FIRESTORE_PAGE_SIZE", "50")

	cfg := Load()

	assert.Equal(t, ModeDemo, cfg.Data.Mode)
	assert.Equal(t, PolicyRecency, cfg.Data.TypePolicy)
	assert.Equal(t, 3*time.Second, cfg.Data.FetchTimeout)
	assert.True(t, cfg.Data.PartitionByDoctor)
	assert.Equal(t, 50, cfg.Firestore.PageSize)
}

func TestValidate(t *testing.T) {
	t.Run("demo mode needs no project", func(t *testing.T) {
		t.Setenv("DATA_MODE", "demo")
		require.NoError(t, Load().Validate())
	})

	t.Run("live firestore needs project", func(t *testing.T) {
		t.Setenv("DATA_MODE", "live")
		t.Setenv("CONTACT_SOURCE", "firestore")
		assert.Error(t, Load().Validate())

		t.Setenv("FIRESTORE_PROJECT_ID", "dutu-a3d9e")
		assert.NoError(t, Load().Validate())
	})

	t.Run("rejects unknown values", func(t *testing.T) {
		t.Setenv("DATA_MODE", "offline")
		assert.Error(t, Load().Validate())

		t.Setenv("DATA_MODE", "demo")
		t.Setenv("PATIENT_TYPE_POLICY", "guess")
		assert.Error(t, Load().Validate())

		t.Setenv("PATIENT_TYPE_POLICY", "explicit")
		t.Setenv("CONTACT_SOURCE", "sqlite")
		assert.Error(t, Load().Validate())
	})
}
