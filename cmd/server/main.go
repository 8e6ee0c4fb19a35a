package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/hugh/member-sync/internal/api"
	"github.com/hugh/member-sync/internal/app"
	"github.com/hugh/member-sync/internal/auth"
	"github.com/hugh/member-sync/internal/database"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/tasks"
	"github.com/hugh/member-sync/internal/web"
	"github.com/hugh/member-sync/pkg/config"
	"github.com/hugh/member-sync/pkg/queue"
	"github.com/hugh/member-sync/pkg/util"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := util.NewLogger(cfg.Server.Env)
	slog.SetDefault(logger)

	logger.Info("starting member-sync server",
		"env", cfg.Server.Env,
		"addr", cfg.Server.Addr(),
	)

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.AutoMigrate(db); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	// Connect to Redis. Without it sessions cannot be revoked and repairs
	// are not queued.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn("failed to connect to Redis", "error", err)
		redisClient = nil
	}

	// Spreadsheet reader and writer
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	sheetStack, err := app.BuildSheets(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to configure spreadsheet access", "error", err)
		os.Exit(1)
	}

	// Background repair of spreadsheet mirrors
	var asynqClient *asynq.Client
	var reconcilerOpts []member.Option
	if cfg.Sync.RepairEnabled {
		if redisClient == nil {
			logger.Warn("SYNC_REPAIR_ENABLED set but Redis is unavailable, repairs disabled")
		} else {
			asynqClient = queue.NewClient(&cfg.Redis)
			reconcilerOpts = append(reconcilerOpts, member.WithRepair(tasks.NewEnqueuer(asynqClient)))
		}
	}

	// Initialize services
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	var revocations auth.RevocationStore
	if redisClient != nil {
		revocations = auth.NewRedisRevocations(redisClient)
	}
	authService := auth.NewService(db, jwtService, revocations)

	reconciler := member.NewReconciler(
		member.NewGormStore(db),
		sheetStack.Reader,
		sheetStack.Writer,
		logger,
		reconcilerOpts...,
	)

	// Load templates
	templates, err := web.LoadTemplates()
	if err != nil {
		logger.Error("failed to load templates", "error", err)
		os.Exit(1)
	}

	// Get static file system
	staticFS, err := web.GetStaticFS()
	if err != nil {
		logger.Error("failed to get static fs", "error", err)
		os.Exit(1)
	}

	// Create router
	router := api.NewRouter(api.RouterConfig{
		DB:             db,
		Redis:          redisClient,
		Logger:         logger,
		JWTService:     jwtService,
		AuthService:    authService,
		Reconciler:     reconciler,
		SheetReader:    sheetStack.Reader,
		SheetWriter:    sheetStack.Writer,
		Templates:      templates,
		StaticFS:       staticFS,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		SecureCookies:  !cfg.Server.IsDevelopment(),
		RateLimitReqs:  cfg.RateLimit.Requests,
		RateLimitSecs:  cfg.RateLimit.WindowSeconds,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server listening", "addr", cfg.Server.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	stop()

	// Close Asynq client
	if asynqClient != nil {
		asynqClient.Close()
	}

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("server stopped")
}
