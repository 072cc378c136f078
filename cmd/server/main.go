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

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/evaluaciones/internal/app"
	"github.com/shrimpsizemoose/evaluaciones/internal/handlers"
)

const shutdownTimeout = 10 * time.Second

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file, empty for defaults and environment only")
	flag.Parse()

	if *configPath != "" {
		if _, err := os.Stat(*configPath); errors.Is(err, os.ErrNotExist) {
			logger.Info.Printf("Config file %s not found, using defaults and environment", *configPath)
			*configPath = ""
		}
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start: %v", err)
	}
	defer func() {
		if err := service.Close(); err != nil {
			logger.Error.Printf("Shutdown: %v", err)
		}
	}()

	router, err := handlers.NewRouter(service)
	if err != nil {
		logger.Error.Fatalf("Failed to build router: %v", err)
	}

	server := &http.Server{
		Addr:              service.Config.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info.Printf("Starting evaluaciones server on %s", server.Addr)
		logger.Debug.Printf("Metrics enabled: %t, trust proxy: %t",
			service.Config.Server.EnableMetrics, service.Config.Server.TrustProxy)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error.Printf("Evaluaciones server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("Graceful shutdown failed: %v", err)
	}
}
