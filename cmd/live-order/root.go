package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alorle/live-order/config"
	"github.com/alorle/live-order/internal/adapter/driven"
	"github.com/alorle/live-order/internal/application"
	"github.com/alorle/live-order/logging"
)

var configFile string

// rootCmd serves the API when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:           "live-order",
	Short:         "Ordered list of Twitch channels, live ones first",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultConfig := os.Getenv("CONFIG_FILE")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", defaultConfig, "path to the YAML config file (used only if it exists)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the process logger from the log section of cfg.
func newLogger(cfg *config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return logging.New(w, level, cfg.Log.Format), nil
}

// services groups the application services built from one config.
type services struct {
	liveOrder *application.LiveOrderService
	health    *application.HealthService
}

// newServices wires the Twitch adapter, token cache and services.
func newServices(cfg *config.Config, logger *slog.Logger) (services, error) {
	roster, err := cfg.Roster()
	if err != nil {
		return services{}, fmt.Errorf("failed to build roster: %w", err)
	}

	twitch := driven.NewTwitchHelixAdapter(cfg.Twitch.ClientID, cfg.Twitch.ClientSecret, cfg.Twitch.APIBaseURL, cfg.Twitch.Timeout, logger)
	tokens := application.NewTokenCache(twitch, cfg.Twitch.TokenExpiryMargin, logger)
	status := application.NewLiveStatusService(tokens, twitch, roster, cfg.Twitch.Timeout, logger)

	return services{
		liveOrder: application.NewLiveOrderService(status, roster, cfg.Rules(), logger),
		health:    application.NewHealthService(tokens),
	}, nil
}
