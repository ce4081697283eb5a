package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/packhorizon/server/internal/config"
	"github.com/packhorizon/server/internal/connect"
	"github.com/packhorizon/server/internal/container"
	"github.com/packhorizon/server/internal/metrics"
	"github.com/packhorizon/server/internal/models"
	"github.com/packhorizon/server/internal/routes"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg)
	logger.Info("Starting PackHorizon API server", "environment", cfg.Environment)

	mongoClient, err := connect.MongoDBConnect(cfg)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to MongoDB successfully")

	repo := models.MongodbNewRepo(mongoClient.Database(cfg.MongoDBName))
	if err := repo.EnsureIndexes(context.Background()); err != nil {
		logger.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	redisClient, err := connect.RedisConnect(cfg)
	if err != nil {
		// Rate limiting degrades to fail-open without Redis.
		logger.Warn("Redis unavailable, rate limiting disabled", "error", err)
		redisClient = nil
	} else {
		logger.Info("Connected to Redis successfully")
	}

	cld, err := connect.CloudinaryCredentials(cfg)
	if err != nil {
		logger.Error("Failed to initialize Cloudinary", "error", err)
		os.Exit(1)
	}

	m := metrics.NewMetrics("packhorizon")

	appContainer := container.NewContainer(cfg, logger, mongoClient, redisClient, cld, m)

	router := routes.SetupRoutes(appContainer)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Error closing Redis client", "error", err)
		}
	}
	if err := connect.MongoDBDisconnect(mongoClient); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
