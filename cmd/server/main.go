package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meliscope/meliscope-go/internal/api"
	"github.com/meliscope/meliscope-go/internal/api/handlers"
	"github.com/meliscope/meliscope-go/internal/cache"
	"github.com/meliscope/meliscope-go/internal/config"
	"github.com/meliscope/meliscope-go/internal/database"
	"github.com/meliscope/meliscope-go/internal/logging"
	"github.com/meliscope/meliscope-go/internal/meli"
	"github.com/meliscope/meliscope-go/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLogger(cfg.LogLevel, cfg.Environment)

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redis, err := database.NewRedisConnection(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	// Marketplace boundary client and analysis pipeline
	client := meli.NewClient(&cfg.Meli, logger)
	analyzer := services.NewMarketAnalyzer(
		services.NewListingFetcher(client, logger),
		services.NewItemDetailFetcher(client, cfg.Analysis.HistoryDays, logger),
		services.NewSellerDetailFetcher(client, logger),
		client,
		cfg.Analysis,
		logger,
	)

	cacheTTL, err := time.ParseDuration(cfg.Analysis.CacheTTL)
	if err != nil {
		log.Fatalf("Invalid analysis.cache_ttl: %v", err)
	}
	reportCache := cache.NewRedisReportCache(redis.Client, cacheTTL, logger)
	reportStore := database.NewReportRepository(db.Pool)

	analysisHandler := handlers.NewAnalysisHandler(analyzer, reportCache, reportStore, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	api.SetupRoutes(router, db, redis, analysisHandler)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
