package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/voxhire/voxhire-backend/internal/ai"
	"github.com/voxhire/voxhire-backend/internal/config"
	"github.com/voxhire/voxhire-backend/internal/database"
	"github.com/voxhire/voxhire-backend/internal/handler"
	"github.com/voxhire/voxhire-backend/internal/logger"
	"github.com/voxhire/voxhire-backend/internal/middleware"
	"github.com/voxhire/voxhire-backend/internal/repository"
	"github.com/voxhire/voxhire-backend/internal/router"
	"github.com/voxhire/voxhire-backend/internal/service"
	"github.com/voxhire/voxhire-backend/internal/validator"
	"github.com/voxhire/voxhire-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting VoxHire Backend")

	if cfg.GeminiAPIKey == "" {
		// Interviews cannot start without it; auth and admin routes still work.
		log.Warn().Msg("GEMINI_API_KEY is not set, question generation and scoring will fail")
	}

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	userRepo := repository.NewUserRepository(pool)
	testRepo := repository.NewTestRepository(pool)
	assignmentRepo := repository.NewAssignmentRepository(pool)
	resultRepo := repository.NewResultRepository(pool)

	// ─── Initialize AI Clients ─────────────────────────────────────────
	gemini := ai.NewGeminiClient(cfg, log)
	questionSource := ai.NewQuestionSource(gemini, log)
	evaluator := ai.NewEvaluator(gemini, log)
	transcriber := ai.NewTranscriber(cfg, log)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	userService := service.NewUserService(userRepo)
	testService := service.NewTestService(testRepo)
	assignmentService := service.NewAssignmentService(assignmentRepo, testRepo, userRepo)
	resultService := service.NewResultService(resultRepo, testRepo)
	monitorService := service.NewMonitorService(rdb, log)
	dashboardService := service.NewDashboardService(assignmentRepo, resultRepo, rdb, log)
	interviewService := service.NewInterviewService(
		testRepo, assignmentRepo, resultRepo,
		questionSource, evaluator, monitorService,
		rdb, cfg.SessionTTL, log,
	)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:      handler.NewAuthHandler(authService, userService),
		Admin:     handler.NewAdminHandler(testService, userService, assignmentService, resultService),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Interview: handler.NewInterviewHandler(interviewService, transcriber, cfg.MaxUploadBytes),
		Monitor:   handler.NewMonitorHandler(rdb, log, cfg.AllowedOrigins),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	answerWorker := worker.NewAnswerWorker(pool, rdb, log)
	go answerWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	authLimiter := middleware.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	defer authLimiter.Stop()

	r := router.SetupRouter(authService, handlers, authLimiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop the answer worker and wait for the queue to drain.
	workerCancel()
	time.Sleep(2 * time.Second) // Allow the worker to drain.

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
