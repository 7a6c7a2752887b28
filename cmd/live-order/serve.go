package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alorle/live-order/config"
	"github.com/alorle/live-order/internal/adapter/driver"
	"github.com/alorle/live-order/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

// writeSlack covers ranking and encoding once both upstream calls are done.
const writeSlack = 5 * time.Second

// writeTimeout leaves room for a token exchange and a streams query, each
// bounded by the upstream timeout, so a soft-fail answer is still written.
func writeTimeout(cfg *config.Config) time.Duration {
	return 2*cfg.Twitch.Timeout + writeSlack
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.LoadPath(configFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg, os.Stdout)
	if err != nil {
		return err
	}

	logger.Info("starting live-order",
		"addr", cfg.Addr(),
		"api_base_url", cfg.Twitch.APIBaseURL,
		"channels", len(cfg.Channels),
		"pins", len(cfg.Ranking.Pins),
		"boosts", len(cfg.Ranking.Boosts),
		"upstream_timeout", cfg.Twitch.Timeout,
		"log_level", cfg.Log.Level,
	)

	svc, err := newServices(cfg, logger)
	if err != nil {
		return err
	}

	doc, err := api.GetSwagger()
	if err != nil {
		return fmt.Errorf("failed to load openapi document: %w", err)
	}

	router := driver.NewRouter(
		driver.NewLiveOrderHTTPHandler(svc.liveOrder, logger),
		driver.NewHealthHTTPHandler(svc.health),
		doc,
		logger,
	)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
	}

	logger.Info("shutdown signal received, shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
	return nil
}
