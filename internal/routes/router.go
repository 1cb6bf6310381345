package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"doctorportal-be/config"
	"doctorportal-be/internal/handlers"
	"doctorportal-be/internal/middleware"
	"doctorportal-be/internal/observability"
)

// Router holds all route handlers
type Router struct {
	cfg     *config.Config
	metrics *observability.Metrics
	auth    middleware.Authenticator

	healthHandler      *handlers.HealthHandler
	authHandler        *handlers.AuthHandler
	dashboardHandler   *handlers.DashboardHandler
	patientHandler     *handlers.PatientHandler
	appointmentHandler *handlers.AppointmentHandler
	settingsHandler    *handlers.SettingsHandler
}

// NewRouter wires middleware and routes onto a new gin engine.
func NewRouter(
	cfg *config.Config,
	metrics *observability.Metrics,
	auth middleware.Authenticator,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	patientHandler *handlers.PatientHandler,
	appointmentHandler *handlers.AppointmentHandler,
	settingsHandler *handlers.SettingsHandler,
) *Router {
	return &Router{
		cfg:                cfg,
		metrics:            metrics,
		auth:               auth,
		healthHandler:      healthHandler,
		authHandler:        authHandler,
		dashboardHandler:   dashboardHandler,
		patientHandler:     patientHandler,
		appointmentHandler: appointmentHandler,
		settingsHandler:    settingsHandler,
	}
}

// Setup builds the gin engine with middleware and every route registered.
func (rt *Router) Setup() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Tracing(rt.metrics))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(rt.cfg))

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/health", rt.healthHandler.Health)

		auth := public.Group("/auth")
		auth.Use(middleware.NewRateLimiter(rt.cfg.LoginRatePerMinute, rt.cfg.LoginRateBurst).Limit())
		{
			auth.POST("/login", rt.authHandler.Login)
			auth.POST("/refresh", rt.authHandler.RefreshToken)
		}
	}

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(rt.auth))
	{
		protected.POST("/auth/logout", rt.authHandler.Logout)
		protected.GET("/auth/me", rt.authHandler.Me)

		protected.GET("/dashboard", rt.dashboardHandler.GetDashboard)
		protected.GET("/reports", rt.dashboardHandler.GetReports)

		protected.GET("/patients", rt.patientHandler.ListPatients)
		protected.GET("/patients/:id", rt.patientHandler.GetPatient)

		protected.GET("/appointments", rt.appointmentHandler.ListAppointments)

		protected.GET("/settings", rt.settingsHandler.GetSettings)
		protected.PUT("/settings", rt.settingsHandler.UpdateSettings)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
