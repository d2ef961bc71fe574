package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/ability-api/internal/fuzzy"
	"github.com/sakif/ability-api/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd)
	},
}

// runServe loads the configuration and the fuzzy model, opens the store and
// serves until SIGINT or SIGTERM.
func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	predictor, err := fuzzy.LoadPredictor(cfg.Model.Path)
	if err != nil {
		logger.Error("failed to load model", slog.String("path", cfg.Model.Path), slog.String("error", err.Error()))
		return fmt.Errorf("loading model: %w", err)
	}
	logger.Info("model loaded",
		slog.String("name", predictor.Name()),
		slog.Int("inputs", len(predictor.Inputs())),
	)

	srv, err := server.New(cfg, predictor, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		return err
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}
