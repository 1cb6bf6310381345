package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Data modes resolved once at startup.
const (
	ModeLive = "live"
	ModeDemo = "demo"
)

// Contact sources.
const (
	SourceFirestore = "firestore"
	SourceMongo     = "mongo"
)

// Patient type policies, see services.TypePolicy.
const (
	PolicyExplicit = "explicit"
	PolicyRecency  = "recency"
)

type Config struct {
	Env         string
	Port        string
	FrontendURL string

	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration

	// Login attempts allowed per client IP.
	LoginRatePerMinute int
	LoginRateBurst     int

	Doctor    DoctorConfig
	Data      DataConfig
	Firestore FirestoreConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	OTEL      OTELConfig
}

// DoctorConfig is the single fixed credential pair the portal accepts.
type DoctorConfig struct {
	ID       string
	Email    string
	Password string
	Name     string
}

// DataConfig controls how contact records are fetched and interpreted.
type DataConfig struct {
	Mode               string
	Source             string
	TypePolicy         string
	FetchTimeout       time.Duration
	PartitionByDoctor  bool
	ContactsCollection string
	LocationName       string
}

type FirestoreConfig struct {
	BaseURL         string
	ProjectID       string
	APIKey          string
	CredentialsFile string
	PageSize        int
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load reads the environment (and .env when present) into a Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("No .env file found, using environment variables")
	}

	return &Config{
		Env:                  getEnv("APP_ENV", "development"),
		Port:                 getEnv("PORT", "8080"),
		FrontendURL:          getEnv("FRONTEND_URL", "http://localhost:5173"),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTAccessExpiration:  getEnvAsDuration("JWT_ACCESS_EXPIRATION", 15*time.Minute),
		JWTRefreshExpiration: getEnvAsDuration("JWT_REFRESH_EXPIRATION", 168*time.Hour),
		LoginRatePerMinute:   getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
		LoginRateBurst:       getEnvAsInt("LOGIN_RATE_BURST", 5),
		Doctor: DoctorConfig{
			ID:       getEnv("DOCTOR_ID", "demo-doctor-001"),
			Email:    getEnv("DOCTOR_EMAIL", "doctor@clinic.com"),
			Password: getEnv("DOCTOR_PASSWORD", "password123"),
			Name:     getEnv("DOCTOR_NAME", "Dr. John Smith"),
		},
		Data: DataConfig{
			Mode:               strings.ToLower(getEnv("DATA_MODE", ModeLive)),
			Source:             strings.ToLower(getEnv("CONTACT_SOURCE", SourceFirestore)),
			TypePolicy:         strings.ToLower(getEnv("PATIENT_TYPE_POLICY", PolicyExplicit)),
			FetchTimeout:       getEnvAsDuration("FETCH_TIMEOUT", 10*time.Second),
			PartitionByDoctor:  getEnvAsBool("CONTACTS_PARTITION_BY_DOCTOR", false),
			ContactsCollection: getEnv("CONTACTS_COLLECTION", "contacts"),
			LocationName:       getEnv("TZ_LOCATION", "Local"),
		},
		Firestore: FirestoreConfig{
			BaseURL:         getEnv("FIRESTORE_BASE_URL", "https://firestore.googleapis.com/v1"),
			ProjectID:       getEnv("FIRESTORE_PROJECT_ID", ""),
			APIKey:          getEnv("FIRESTORE_API_KEY", ""),
			CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
			PageSize:        getEnvAsInt("FIRESTORE_PAGE_SIZE", 300),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", ""),
			Database: getEnv("MONGODB_DATABASE", "doctorportal"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "doctor-portal"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	switch c.Data.Mode {
	case ModeLive, ModeDemo:
	default:
		return fmt.Errorf("unknown DATA_MODE %q (want %s or %s)", c.Data.Mode, ModeLive, ModeDemo)
	}
	switch c.Data.Source {
	case SourceFirestore:
		if c.Firestore.ProjectID == "" && c.Data.Mode == ModeLive {
			return fmt.Errorf("FIRESTORE_PROJECT_ID is required for the firestore source in live mode")
		}
	case SourceMongo:
	default:
		return fmt.Errorf("unknown CONTACT_SOURCE %q", c.Data.Source)
	}
	switch c.Data.TypePolicy {
	case PolicyExplicit, PolicyRecency:
	default:
		return fmt.Errorf("unknown PATIENT_TYPE_POLICY %q", c.Data.TypePolicy)
	}
	if c.Data.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.Doctor.Email == "" || c.Doctor.Password == "" {
		return fmt.Errorf("DOCTOR_EMAIL and DOCTOR_PASSWORD must be set")
	}
	return nil
}

// Location returns the time zone used for calendar-day boundaries.
func (c *DataConfig) Location() *time.Location {
	if c.LocationName == "" || c.LocationName == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.LocationName)
	if err != nil {
		log.Warn().Err(err).Str("location", c.LocationName).Msg("Unknown TZ_LOCATION, using local time")
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
