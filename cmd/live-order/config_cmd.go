package main

import (
	"github.com/spf13/cobra"

	"github.com/alorle/live-order/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadPath(configFile)
		if err != nil {
			return err
		}
		cfg.Print(cmd.OutOrStdout())
		return nil
	},
}
