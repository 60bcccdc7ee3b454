package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segyhp/library-circulation/internal/auth"
	"github.com/segyhp/library-circulation/internal/config"
	"github.com/segyhp/library-circulation/internal/handler"
	"github.com/segyhp/library-circulation/internal/logging"
	"github.com/segyhp/library-circulation/internal/platform"
	"github.com/segyhp/library-circulation/internal/repository"
	"github.com/segyhp/library-circulation/internal/service"
	"github.com/segyhp/library-circulation/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Fatalf("Invalid server configuration: %v", err)
	}

	logger := logging.New(cfg.Logging)
	slog.SetDefault(logger)

	// Initialize database
	db, err := platform.OpenDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient, err := platform.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer redisClient.Close()

	if err := platform.PingRedis(context.Background(), redisClient, cfg.GetHealthTimeout()); err != nil {
		logger.Warn("redis unavailable, serving without cache until it recovers", "error", err)
	}

	store, err := storage.NewDisk(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}

	// Initialize repositories
	tx := repository.NewTransactor(db)
	bookRepo := repository.NewBookRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	userRepo := repository.NewUserRepository(db)
	borrowingRepo := repository.NewBorrowingRepository(db)
	wishlistRepo := repository.NewWishlistRepository(db)
	digitalBookRepo := repository.NewDigitalBookRepository(db)

	// Initialize services
	cache := service.NewRedisCache(redisClient)
	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	authService := service.NewAuthService(userRepo, memberRepo, tx, tokens)
	bookService := service.NewBookService(bookRepo, borrowingRepo, cache, cfg.Redis.CacheTTL)
	borrowingService := service.NewBorrowingService(borrowingRepo, bookRepo, tx, cache, cfg)
	memberService := service.NewMemberService(memberRepo, userRepo, borrowingRepo, tx, authService, cache)
	wishlistService := service.NewWishlistService(wishlistRepo, bookRepo)
	statsService := service.NewStatsService(bookRepo, memberRepo, borrowingRepo, cache, cfg.Redis.CacheTTL)
	digitalBookService := service.NewDigitalBookService(digitalBookRepo, bookRepo, tx, store, cfg.Storage.MaxUploadBytes, cache)

	// Setup routes
	router := handler.NewRouter(handler.Handlers{
		Health:       handler.NewHealthHandler(db, redisClient, cfg.GetHealthTimeout()),
		Auth:         handler.NewAuthHandler(authService),
		Books:        handler.NewBookHandler(bookService),
		Borrowings:   handler.NewBorrowingHandler(borrowingService, authService),
		Wishlist:     handler.NewWishlistHandler(wishlistService, authService),
		Admin:        handler.NewAdminHandler(bookService, memberService, authService, borrowingService, statsService),
		DigitalBooks: handler.NewDigitalBookHandler(digitalBookService, cfg.Storage.MaxUploadBytes),
	}, tokens, logger)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", "addr", server.Addr, "env", cfg.Server.Env, "db_driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("server exited")
}
