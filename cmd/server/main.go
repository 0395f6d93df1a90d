package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"crisiswatch/internal/bulk"
	"crisiswatch/internal/config"
	"crisiswatch/internal/db"
	"crisiswatch/internal/detector"
	"crisiswatch/internal/email"
	"crisiswatch/internal/metrics"
	"crisiswatch/internal/notify"
	"crisiswatch/internal/server"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

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

	// Load predefined keyword sets and watch the directory for edits
	sets, err := bulk.NewSetLibrary(cfg.SetsDir)
	if err != nil {
		log.Fatalf("Failed to load keyword sets: %v", err)
	}
	defer sets.Close()
	go sets.Watch()

	// Crisis event dispatchers - Kafka and email when configured, log
	// output always
	dispatchers := notify.Fanout{notify.LogDispatcher{}}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		dispatchers = append(dispatchers, notify.NewKafkaDispatcher(brokers, cfg.KafkaTopic))
		log.Printf("Dispatching crisis events to Kafka topic %s", cfg.KafkaTopic)
	}
	if cfg.IsEmailEnabled() {
		dispatchers = append(dispatchers, email.NewDispatcher(cfg))
	}
	var dispatcher notify.Dispatcher = dispatchers
	defer dispatcher.Close()

	det := detector.New(database)

	// Initialize metrics
	metrics.Init(database)

	// Initialize server and routes
	srv := server.New(cfg)
	srv.RegisterRoutes(database, det, dispatcher, sets)

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
