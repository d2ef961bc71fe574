package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/ability-api/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "ability-api",
	Short: "Child ability prediction service",
	Long: "ability-api stores child profiles and quiz results and predicts an ability\n" +
		"percentage from quiz samples with a fuzzy inference model.",
	SilenceUsage: true,
	// With no subcommand the binary runs the server.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(modelCmd)
}

// loadConfig reads the --config flag and loads the configuration.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// newLogger builds the process logger from the log section of the config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// resolveModelPath returns --model if set, else the configured model path.
func resolveModelPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("model"); p != "" {
		return p, nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	if cfg.Model.Path == "" {
		return "", fmt.Errorf("no model file: pass --model or set model.path")
	}
	return cfg.Model.Path, nil
}
