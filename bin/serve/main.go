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

	"media-gallery/pkg/config"
	"media-gallery/pkg/handlers"
	"media-gallery/pkg/logging"
	"media-gallery/pkg/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireAdminPassword(); err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.SlogLevel())

	// Initialize services
	if err := services.InitService(cfg); err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	svc := services.Default()
	defer svc.Close()

	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           handlers.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	// Start server
	cfg.PrintServerStartMessage()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}
