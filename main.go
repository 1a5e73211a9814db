// main.go
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gewnthar/flightscrape/config"
	"github.com/gewnthar/flightscrape/database"
	"github.com/gewnthar/flightscrape/handlers"
	"github.com/gewnthar/flightscrape/logging"
	"github.com/gewnthar/flightscrape/services"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	if *configPath == "" {
		if _, err := os.Stat("config/config.yaml"); err == nil {
			*configPath = "config/config.yaml"
		}
	}

	if err := config.LoadConfig(*configPath); err != nil {
		logging.L().Fatalf("Error loading configuration: %v", err)
	}
	if err := logging.Init(config.AppConfig.Logging.Level, config.AppConfig.Logging.Development); err != nil {
		logging.L().Fatalf("Error initializing logger: %v", err)
	}
	defer logging.Sync()

	log := logging.L()
	log.Info("Starting flight itinerary service...")
	log.Infof("Configuration loaded. Server port: %s, DB driver: %q", config.AppConfig.Server.Port, config.AppConfig.Database.Driver)

	if config.AppConfig.Database.Driver != "" {
		if err := database.InitDB(config.AppConfig.Database); err != nil {
			log.Fatalf("Error initializing database: %v", err)
		}
		defer database.CloseDB()
	} else {
		log.Warn("No database driver configured; fetch runs will not be stored")
	}

	if err := services.Init(config.AppConfig); err != nil {
		log.Fatalf("Error initializing services: %v", err)
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + config.AppConfig.Server.Port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Infof("Server starting on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Graceful shutdown failed: %v", err)
	}
}
