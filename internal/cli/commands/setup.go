// Package commands implements the fyodor subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fyodor-project/fyodor/internal/cli/config"
	"github.com/fyodor-project/fyodor/internal/cli/output"
	"github.com/fyodor-project/fyodor/internal/engine"
	"github.com/fyodor-project/fyodor/internal/state"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext assembles the dependencies every command needs from the
// loaded configuration and the command's context.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	format, err := output.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}
	r := output.NewRenderer(cmd.OutOrStdout(), format)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}, nil
}

// getConfig returns the current configuration, falling back to defaults
// when no config has been loaded (direct command construction in tests).
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	return &config.Config{
		DataDir:      "data",
		StatePath:    config.DefaultStateFile,
		OutputFormat: config.DefaultOutput,
		Mode:         "zenith",
		Workers:      4,
	}
}

// openStore opens the run-tracking database, creating its directory first.
func openStore(cfg *config.Config) (state.Store, error) {
	dir := filepath.Dir(cfg.StatePath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}
	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return nil, err
	}
	if err := store.InitSchema(); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// buildEngine maps the CLI configuration onto an engine.
func buildEngine(cfg *config.Config, store state.Store, logger *slog.Logger) (*engine.Engine, error) {
	site, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return engine.New(engine.Config{
		DataDir:         cfg.DataDir,
		Site:            site,
		Mode:            cfg.Mode,
		RADeg:           cfg.RADeg,
		DecDeg:          cfg.DecDeg,
		PressureMinHpa:  cfg.Pressure.MinHpa,
		PressureMaxHpa:  cfg.Pressure.MaxHpa,
		MinElevationDeg: cfg.MinElevationDeg,
		Workers:         cfg.Workers,
	}, store, logger), nil
}
