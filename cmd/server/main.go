/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the Warp Production Scheduling Engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load scheduling configuration (JSON file or standard shop preset)
  3. Initialize SQLite store
  4. Create API handler with dependencies
  5. Start background recalculation scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port             HTTP server port (default: 8080)
  -db               SQLite database path (default: production.db)
                    Use ":memory:" for in-memory database
  -config           Path to scheduling config JSON (default: built-in preset)
  -recalc-interval  Background recalculation interval (default: 1h)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Stop the background scheduler
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/warp.db"

  # Run with in-memory database and custom week rule
  ./server -db=":memory:" -config=./week.json

  # Recalculate every 15 minutes
  ./server -recalc-interval=15m

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - factory/config.go: Config JSON schema
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/production-engine/api"
	"github.com/warp/production-engine/factory"
	"github.com/warp/production-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "production.db", "SQLite database path")
	configPath := flag.String("config", "", "Scheduling config JSON path (empty: standard shop preset)")
	recalcInterval := flag.Duration("recalc-interval", 1*time.Hour, "Background recalculation interval")
	flag.Parse()

	// Load scheduling configuration
	configData := []byte(factory.StandardShopJSON())
	if *configPath != "" {
		data, err := os.ReadFile(*configPath)
		if err != nil {
			log.Fatalf("Failed to read config file: %v", err)
		}
		configData = data
	}
	cfg, err := factory.ParseConfig(configData)
	if err != nil {
		log.Fatalf("Invalid scheduling configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, cfg)

	// Background recalculation keeps persisted schedules tracking the calendar
	scheduler := api.NewRecalcScheduler(handler)
	scheduler.CheckInterval = *recalcInterval
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
