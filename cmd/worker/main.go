package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/hugh/member-sync/internal/app"
	"github.com/hugh/member-sync/internal/database"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/tasks"
	"github.com/hugh/member-sync/pkg/config"
	"github.com/hugh/member-sync/pkg/queue"
	"github.com/hugh/member-sync/pkg/util"
	"github.com/joho/godotenv"
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

	logger.Info("starting member-sync worker")

	// Connect to database
	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sheetStack, err := app.BuildSheets(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to configure spreadsheet access", "error", err)
		os.Exit(1)
	}

	// Repairs never enqueue further repairs.
	reconciler := member.NewReconciler(
		member.NewGormStore(db),
		sheetStack.Reader,
		sheetStack.Writer,
		logger,
	)

	// Report any backlog left from a previous run
	inspector := queue.NewInspector(&cfg.Redis)
	if info, err := inspector.GetQueueInfo(queue.QueueDefault); err == nil {
		logger.Info("repair backlog",
			"pending", info.Pending,
			"retry", info.Retry,
			"archived", info.Archived,
		)
	}
	inspector.Close()

	// Create Asynq server
	srv := queue.NewServer(&cfg.Redis, 4)

	// Create task handler
	handler := tasks.NewHandler(reconciler, logger)

	// Register handlers
	mux := asynq.NewServeMux()
	handler.RegisterHandlers(mux)

	// Handle shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down worker...")
		srv.Shutdown()
		cancel()
	}()

	logger.Info("worker started, waiting for tasks...")

	// Start the server
	if err := srv.Run(mux); err != nil {
		logger.Error("worker error", "error", err)
	}

	// Wait for context cancellation
	<-ctx.Done()

	// Close database connection
	sqlDB, _ := db.DB()
	sqlDB.Close()

	logger.Info("worker stopped")
}
