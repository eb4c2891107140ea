package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/backlog-studio/engine/internal/api"
	"github.com/backlog-studio/engine/internal/api/handlers"
	"github.com/backlog-studio/engine/internal/directory"
	"github.com/backlog-studio/engine/internal/repository"
	"github.com/backlog-studio/engine/internal/services"
	"github.com/backlog-studio/engine/pkg/config"
	"github.com/backlog-studio/engine/pkg/database"
	"github.com/backlog-studio/engine/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting backlog studio engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("database connected")

	// Redis backs the user-directory TTL cache
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	workItemRepo := repository.NewWorkItemRepository(db)

	// JWT secret from environment
	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	// Services
	userDir := directory.NewCachedDirectory(userRepo, rdb, cfg.DirectoryCacheTTL)
	authSvc := services.NewAuthService(userRepo, jwtSecret)
	projectSvc := services.NewProjectService(projectRepo)
	workItemSvc := services.NewWorkItemService(projectRepo, workItemRepo, userDir)
	approvalSvc := services.NewApprovalService(projectRepo, workItemRepo)

	// Router
	router := api.NewRouter(api.Dependencies{
		HMACSecret:       jwtSecret,
		AuthHandler:      handlers.NewAuthHandler(authSvc),
		ProjectsHandler:  handlers.NewProjectsHandler(projectSvc),
		WorkItemsHandler: handlers.NewWorkItemsHandler(workItemSvc),
		AssistantHandler: handlers.NewAssistantHandler(approvalSvc),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
	_ = rdb.Close()
}
