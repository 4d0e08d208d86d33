package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyodor-project/fyodor/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Recompute whenever new granules arrive",
		Long: `Watch the data directory and rerun the PWV computation after each burst
of new granule files. Every trigger records a fresh run in the state
database. Stop with Ctrl-C.`,
		Example: `  fyodor watch --site apache_point

  # Wait longer for slow downloads to settle
  fyodor watch --site apache_point --debounce 10s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce,
		"Quiet period after the last file event before recomputing")

	return cmd
}

func runWatch(cmd *cobra.Command, debounce time.Duration) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	store, err := openStore(cmdCtx.Cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	eng, err := buildEngine(cmdCtx.Cfg, store, cmdCtx.Logger)
	if err != nil {
		return err
	}

	w := watch.New(cmdCtx.Cfg.DataDir, debounce, cmdCtx.Logger)
	return w.Run(cmd.Context(), func(ctx context.Context) {
		series, err := eng.Compute(ctx)
		if err != nil {
			cmdCtx.Logger.Error("recompute failed", "error", err)
			return
		}
		if err := cmdCtx.Renderer.Series(series); err != nil {
			cmdCtx.Logger.Error("failed to render series", "error", err)
		}
	})
}
