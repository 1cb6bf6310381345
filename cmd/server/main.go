// @title Doctor Portal API
// @version 1.0
// @description Backend API for the clinic doctor portal
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"doctorportal-be/config"
	_ "doctorportal-be/docs"
	"doctorportal-be/internal/database"
	"doctorportal-be/internal/handlers"
	"doctorportal-be/internal/observability"
	"doctorportal-be/internal/repository"
	"doctorportal-be/internal/routes"
	"doctorportal-be/internal/services"
)

func main() {
	cfg := config.Load()
	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Env)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("Failed to flush traces")
			}
		}()
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// MongoDB backs settings and, for the mongo source, contacts. Without a
	// URI the service runs on in-memory settings.
	var mongodb *database.MongoDB
	if cfg.MongoDB.URI != "" {
		mongodb, err = database.NewMongoDB(ctx, cfg.MongoDB.URI, cfg.MongoDB.Database, cfg.Data.ContactsCollection)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer mongodb.Disconnect()
	} else if cfg.Data.Source == config.SourceMongo {
		log.Fatal().Msg("MONGODB_URI is required for the mongo contact source")
	}

	// Initialize repositories
	var source repository.ContactSource
	switch cfg.Data.Source {
	case config.SourceMongo:
		source = repository.NewMongoContactRepository(mongodb.Contacts(), cfg.Data.PartitionByDoctor)
	default:
		client, err := repository.NewFirestoreHTTPClient(ctx, cfg.Firestore)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to build Firestore client")
		}
		source = repository.NewFirestoreContactRepository(client, cfg.Firestore, cfg.Data.ContactsCollection)
	}

	var settingsStore repository.SettingsStore = repository.NewMemorySettingsStore()
	if mongodb != nil {
		settingsStore = repository.NewSettingsRepository(mongodb.DoctorSettings())
	}

	var tokenStore repository.TokenStore = repository.NewMemoryTokenStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to Redis")
		}
		tokenStore = repository.NewRedisTokenStore(rdb)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, token revocations are kept in memory")
	}

	// Initialize services
	contactService := services.NewContactService(source, services.ContactServiceConfig{
		Mode:              cfg.Data.Mode,
		TypePolicy:        services.TypePolicy(cfg.Data.TypePolicy),
		FetchTimeout:      cfg.Data.FetchTimeout,
		PartitionByDoctor: cfg.Data.PartitionByDoctor,
		Location:          cfg.Data.Location(),
	}, metrics)

	authService, err := services.NewAuthService(cfg, tokenStore)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize auth")
	}
	settingsService := services.NewSettingsService(settingsStore, authService.Doctor())

	// Initialize handlers
	if err := handlers.RegisterValidators(); err != nil {
		log.Fatal().Err(err).Msg("Failed to register validators")
	}
	router := routes.NewRouter(
		cfg,
		metrics,
		authService,
		handlers.NewHealthHandler(contactService.Mode(), cfg.Data.Source),
		handlers.NewAuthHandler(authService, settingsService),
		handlers.NewDashboardHandler(contactService),
		handlers.NewPatientHandler(contactService),
		handlers.NewAppointmentHandler(contactService),
		handlers.NewSettingsHandler(settingsService),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Data.FetchTimeout + 15*time.Second,
	}

	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("mode", contactService.Mode()).
			Str("source", cfg.Data.Source).
			Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}
}
