package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyodor-project/fyodor/internal/state"
	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// NewRunsCommand creates the runs command and its subcommands.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded computation runs",
		Long:  `List past PWV computation runs from the state database, newest first.`,
		Example: `  # Show the last 20 runs
  fyodor runs

  # Show samples from one run
  fyodor runs show 4f1c2d3e-...`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRunsList(cmd, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the samples recorded for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(cmd, args[0])
		},
	})

	return cmd
}

func runRunsList(cmd *cobra.Command, limit int) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmdCtx.Cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		completed := ""
		if r.CompletedAt != nil {
			completed = r.CompletedAt.UTC().Format(time.RFC3339)
		}
		rows = append(rows, []string{
			r.ID,
			r.Site,
			r.Mode,
			string(r.Status),
			r.StartedAt.UTC().Format(time.RFC3339),
			completed,
			fmt.Sprintf("%d", r.SampleCount),
		})
	}
	return cmdCtx.Renderer.Table(
		[]string{"Run", "Site", "Mode", "Status", "Started (UTC)", "Completed (UTC)", "Samples"}, rows)
}

func runRunsShow(cmd *cobra.Command, id string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	store, err := openStore(cmdCtx.Cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(id)
	if err != nil {
		return err
	}
	if run.Status == state.RunStatusFailed && run.Error != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Run failed: %s\n", run.Error)
	}

	samples, err := store.GetSamples(id)
	if err != nil {
		return err
	}
	return cmdCtx.Renderer.Series(&pwv.Series{
		Site:    run.Site,
		Mode:    run.Mode,
		Samples: samples,
	})
}
