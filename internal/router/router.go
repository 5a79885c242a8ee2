package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/handler"
	"github.com/voxhire/voxhire-backend/internal/middleware"
	"github.com/voxhire/voxhire-backend/internal/response"
	"github.com/voxhire/voxhire-backend/internal/service"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Admin     *handler.AdminHandler
	Dashboard *handler.DashboardHandler
	Interview *handler.InterviewHandler
	Monitor   *handler.MonitorHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	authLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Apply brotli middleware globally.
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{
			"status":  "ok",
			"service": "voxhire-backend",
			"time":    time.Now().UTC(),
		})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/register", authLimiter.Middleware(), handlers.Auth.Register)
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		auth.GET("/me",
			middleware.RequireAnyJWT(authService),
			middleware.CheckSingleDeviceSession(authService),
			handlers.Auth.Me,
		)
	}

	// ─── 2. Candidate Group (JWT + Single Device) ──────────────────────
	candidateAPI := router.Group("/api/v1/candidate")
	candidateAPI.Use(
		middleware.RequireCandidateJWT(authService),
		middleware.CheckSingleDeviceSession(authService),
	)
	{
		candidateAPI.GET("/dashboard", handlers.Dashboard.GetDashboard)

		candidateAPI.POST("/interview/start", handlers.Interview.Start)
		candidateAPI.POST("/interview/transcribe", handlers.Interview.Transcribe)
		candidateAPI.GET("/interview/:session_id", handlers.Interview.GetState)
		candidateAPI.POST("/interview/:session_id/submit", handlers.Interview.Submit)
		candidateAPI.POST("/interview/:session_id/complete", handlers.Interview.Complete)
	}

	// ─── 3. Admin Group (JWT) ──────────────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		adminAPI.POST("/tests", handlers.Admin.CreateTest)
		adminAPI.GET("/tests", handlers.Admin.ListTests)
		adminAPI.GET("/tests/:id/results", handlers.Admin.TestResults)

		adminAPI.GET("/candidates", handlers.Admin.ListCandidates)

		adminAPI.POST("/assignments", handlers.Admin.AssignTest)
		adminAPI.GET("/assignments", handlers.Admin.ListAssignments)
	}

	// ─── 4. Monitor (Admin WS Auth via ?token=) ────────────────────────
	// WebSocket upgrades cannot carry an Authorization header, so the
	// monitor route validates the token from the query string.
	router.GET("/api/v1/admin/monitor",
		middleware.RequireAdminWSAuth(authService),
		handlers.Monitor.MonitorStream,
	)

	return router
}
