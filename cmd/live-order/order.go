package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alorle/live-order/config"
	"github.com/alorle/live-order/internal/application"
)

var orderJSON bool

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Fetch live status once and print the ordering",
	Long:  "Fetch live status once and print the ordering. On a hard failure the roster order is printed and the command exits with status 1.",
	RunE:  runOrder,
}

func init() {
	orderCmd.Flags().BoolVar(&orderJSON, "json", false, "print the ordering as JSON")
}

type orderOutput struct {
	Ordered   []string `json:"ordered"`
	Live      []string `json:"live"`
	CountLive int      `json:"countLive"`
	Degraded  bool     `json:"degraded"`
	Timestamp int64    `json:"timestamp"`
}

func runOrder(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadPath(configFile)
	if err != nil {
		return err
	}

	// Logs go to stderr so stdout carries only the ordering
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return err
	}

	svc, err := newServices(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	order, computeErr := svc.liveOrder.Compute(ctx)
	if err := printOrder(cmd.OutOrStdout(), order, orderJSON); err != nil {
		return err
	}
	if computeErr != nil {
		return fmt.Errorf("live status unavailable, printed roster order: %w", computeErr)
	}
	return nil
}

func printOrder(w io.Writer, order application.LiveOrder, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(orderOutput{
			Ordered:   order.Ordered,
			Live:      order.Live,
			CountLive: len(order.Live),
			Degraded:  order.Degraded,
			Timestamp: order.Timestamp.UnixMilli(),
		})
	}

	live := make(map[string]bool, len(order.Live))
	for _, name := range order.Live {
		live[name] = true
	}
	for i, name := range order.Ordered {
		marker := ""
		if live[name] {
			marker = " (live)"
		}
		if _, err := fmt.Fprintf(w, "%2d. %s%s\n", i+1, name, marker); err != nil {
			return err
		}
	}
	if order.Degraded {
		_, err := fmt.Fprintln(w, "live status unavailable, showing roster order")
		return err
	}
	return nil
}
