package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"naturenarrated/pkg/config"
)

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default config file (existing files are left alone)",
	// Skips the root config load so a broken file can be regenerated elsewhere.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.GenerateDefault(configPath); err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config file ready: %s\n", configPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
}
