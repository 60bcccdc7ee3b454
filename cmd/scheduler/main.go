package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/segyhp/library-circulation/internal/config"
	"github.com/segyhp/library-circulation/internal/ledger"
	"github.com/segyhp/library-circulation/internal/logging"
	"github.com/segyhp/library-circulation/internal/platform"
	"github.com/segyhp/library-circulation/internal/repository"
	"github.com/segyhp/library-circulation/internal/scheduler"
	"github.com/segyhp/library-circulation/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid scheduler configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	logger.Info("starting circulation scheduler")

	db, err := platform.OpenDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisClient, err := platform.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	borrowingService := service.NewBorrowingService(
		repository.NewBorrowingRepository(db),
		repository.NewBookRepository(db),
		repository.NewTransactor(db),
		service.NewRedisCache(redisClient),
		cfg,
	)
	jobs := scheduler.NewJobs(borrowingService, ledger.NewEstimator(cfg.GetFineDailyRate(), nil), logger)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds(), cron.WithLocation(cfg.GetSchedulerLocation()))
	if err := jobs.Register(c, cfg.Scheduler.FineSpec); err != nil {
		log.Fatalf("Failed to schedule jobs: %v", err)
	}

	// Start the scheduler
	c.Start()
	logger.Info("scheduler started", "timezone", cfg.Scheduler.Timezone)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}
