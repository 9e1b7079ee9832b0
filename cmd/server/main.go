package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dom/shopcook-api/internal/api"
	"github.com/dom/shopcook-api/internal/config"
	"github.com/dom/shopcook-api/internal/mailer"
	"github.com/dom/shopcook-api/internal/ratelimit"
	"github.com/dom/shopcook-api/internal/repository/gormstore"
	"github.com/dom/shopcook-api/internal/service"
	"github.com/dom/shopcook-api/internal/storage"
	"gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Initialize database
	logLevel := logger.Warn
	if cfg.Environment == "development" {
		logLevel = logger.Info
	}
	db, err := gormstore.NewConnection(cfg.DatabaseDriver, cfg.DatabaseURL, logLevel)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Initialize repositories
	repos := gormstore.NewRepositories(db)

	// Outbound mail falls back to the log when SMTP is not configured
	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.SMTPHost != "" {
		m = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	}

	var covers storage.CoverStore
	if cfg.S3Bucket != "" {
		s3Covers, err := storage.NewS3CoverStore(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3PublicBaseURL)
		if err != nil {
			log.Fatalf("failed to configure cover storage: %v", err)
		}
		covers = s3Covers
	} else {
		log.Println("S3_BUCKET not set, cover uploads disabled")
	}

	// Initialize rate limiter
	var limiter ratelimit.Limiter
	if cfg.RedisURL != "" {
		client, err := ratelimit.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer client.Close()
		limiter = ratelimit.NewRedisLimiter(client)
	} else {
		memory := ratelimit.NewMemoryLimiter()
		go memory.Run(ctx)
		limiter = memory
	}

	// Initialize services
	services := service.NewServices(repos, cfg, m, covers)

	if err := services.Catalog.SeedCategories(ctx, service.DefaultCategories); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}

	// Initialize router
	router := api.NewRouter(services, limiter, cfg)

	// Create server
	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stop()

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
