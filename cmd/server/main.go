package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"serpwatch/internal/config"
	"serpwatch/internal/db"
	"serpwatch/internal/email"
	"serpwatch/internal/jobs"
	"serpwatch/internal/metrics"
	"serpwatch/internal/server"
	"serpwatch/internal/volatility"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	yamlCfg, err := config.LoadYAMLConfig()
	if err != nil {
		log.Fatalf("Failed to load config file: %v", err)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	if cfg.IsDev() && cfg.SeedDevProject {
		apiKey, err := database.SeedDevProject(ctx)
		if err != nil {
			log.Printf("Warning: %v", err)
		} else {
			log.Printf("Dev project ready (API key: %s)", *apiKey)
		}
	}

	// Metrics and scoring engine
	metrics.Init(database)
	engine := volatility.New(yamlCfg.Scoring.Weights)

	// HTTP server
	srv := server.New(cfg)
	srv.RegisterRoutes(database, engine)

	// Alert digest job
	notifier := email.NewService(cfg)
	if cfg.DigestEnabled && notifier.IsEnabled() {
		digest := jobs.NewDigestJob(database, engine, notifier,
			cfg.DigestInterval, cfg.DigestWindowDays,
			yamlCfg.Alerts.SpikeThreshold, yamlCfg.Alerts.ConcentrationThreshold)
		go digest.Start(ctx)
	}

	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancel()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
