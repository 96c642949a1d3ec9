package cmd

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

	"github.com/spf13/cobra"

	"media-gallery/pkg/config"
	"media-gallery/pkg/handlers"
	"media-gallery/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the gallery page and the admin API via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, svc := initService()
			if err := cfg.RequireAdminPassword(); err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			defer svc.Close()

			if err := serveWebsite(cfg, svc); err != nil {
				log.Fatalf("Server error: %v", err)
			}
		},
	}
}

// serveWebsite runs the web server until SIGINT or SIGTERM
func serveWebsite(cfg *config.Config, svc *services.Service) error {
	server := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           handlers.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		cfg.PrintServerStartMessage()
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
