package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/feitianbubu/vidfacade"
	"github.com/feitianbubu/vidfacade/adapters"
	"github.com/feitianbubu/vidfacade/config"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

// Package-level variables for testability.
// Tests override these to avoid real provider calls.
var (
	newClient = func(cfg *config.Config, logger *zap.Logger) *vidfacade.Client {
		return vidfacade.NewClient(cfg, adapters.WithLogger(logger))
	}
	ioOut io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "vidfacade",
	Short: "Talking video generation across A2E, D-ID and HeyGen",
	Long: `vidfacade submits an image and a line of text to one of several
talking-video providers and reports normalized task status.

Examples:
  vidfacade serve --addr :8000
  vidfacade start --provider did --image https://example.com/face.jpg --text "Hi!" --wait
  vidfacade status --provider heygen --task 4f2c...`,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "vidfacade.yaml", "optional YAML settings file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with provider secrets")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log provider calls")
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the dotenv file, when present, before building the
// configuration snapshot from the file and environment.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return config.Load(configPath, nil)
}

func newLogger() (*zap.Logger, error) {
	if !verbose {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// setup builds the client shared by every subcommand.
func setup() (*vidfacade.Client, *config.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	return newClient(cfg, logger), cfg, logger, nil
}
