package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/motorlane/pipeline-api/internal/auth"
	"github.com/motorlane/pipeline-api/internal/config"
	"github.com/motorlane/pipeline-api/internal/database"
	"github.com/motorlane/pipeline-api/internal/http/handler"
	"github.com/motorlane/pipeline-api/internal/http/middleware"
	"github.com/motorlane/pipeline-api/internal/http/router"
	"github.com/motorlane/pipeline-api/internal/jobs"
	"github.com/motorlane/pipeline-api/internal/logger"
	"github.com/motorlane/pipeline-api/internal/repository"
	"github.com/motorlane/pipeline-api/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	loc, err := cfg.App.Location()
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", cfg.App.Timezone, err)
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	itemRepo := repository.NewPipelineItemRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	colorRepo := repository.NewMarketColorRepository(db)
	userRepo := repository.NewUserRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	activityRepo := repository.NewTransferActivityRepository(db)

	// Initialize services
	itemService := service.NewPipelineItemService(itemRepo, statusRepo, colorRepo, userRepo, noteRepo, activityRepo, log, loc)
	lookupService := service.NewLookupService(statusRepo, colorRepo, log)
	activityService := service.NewTransferActivityService(activityRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	itemHandler := handler.NewPipelineItemHandler(itemService, log)
	lookupHandler := handler.NewLookupHandler(lookupService, log)
	activityHandler := handler.NewTransferActivityHandler(activityService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		itemHandler,
		lookupHandler,
		activityHandler,
	)

	// Start the trash purge job if enabled
	var scheduler *jobs.Scheduler
	if cfg.Jobs.PurgeEnabled {
		scheduler = jobs.NewScheduler(log)
		purgeJob := jobs.NewPurgeJob(itemRepo, log, cfg.Jobs.PurgeAfterDays, 5*time.Minute)
		if err := scheduler.AddJob(jobs.PurgeJobName, cfg.Jobs.PurgeCron, purgeJob.Run); err != nil {
			log.Error("Failed to register purge job", zap.Error(err))
		} else {
			scheduler.Start()
		}
	} else {
		log.Info("Trash purge job disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
