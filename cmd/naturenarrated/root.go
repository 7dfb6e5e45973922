package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"naturenarrated/pkg/config"
	"naturenarrated/pkg/logging"
)

const defaultConfigPath = "configs/naturenarrated.yaml"

var (
	configPath string
	envPath    string
	trace      bool
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "naturenarrated",
	Short:         "Generate spoken nature stories for trails and places",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.EnableTrace = trace
		if err := loadEnv(envPath); err != nil {
			return err
		}
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envPath, "env", ".env", "Path to a .env file with API keys (optional)")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "Log prompt sizes and raw response details at DEBUG")
}

// loadEnv reads secrets from a .env file. A missing file is not an error;
// variables already set in the environment win.
func loadEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}
