package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyodor-project/fyodor/internal/cli/output"
	"github.com/fyodor-project/fyodor/internal/state"
)

// ComputeOptions holds options for the compute command.
type ComputeOptions struct {
	NoStore  bool   // skip run tracking
	PlotPath string // write a time-series plot when set
}

// NewComputeCommand creates the compute command.
func NewComputeCommand() *cobra.Command {
	opts := &ComputeOptions{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute a PWV time series from granules on disk",
		Long: `Process every temperature/moisture granule pair in the data directory
into a precipitable water vapor time series for the configured site.

In zenith mode the full vertical profile directly above the site is
integrated. In target mode the profile is sampled along the line of sight
to the configured RA/Dec target, within the pressure window, and scans
where the target sits below the elevation cutoff are skipped.`,
		Example: `  # Zenith series for a catalog site
  fyodor compute --site apache_point

  # Line of sight toward Betelgeuse
  fyodor compute --site apache_point --mode target --ra 88.793 --dec 7.407

  # Save a plot alongside the table
  fyodor compute --site mauna_kea --plot pwv.png`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompute(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.NoStore, "no-store", false, "Do not record the run in the state database")
	cmd.Flags().StringVar(&opts.PlotPath, "plot", "", "Write a time-series plot to this file (.png, .svg, .pdf)")

	return cmd
}

func runCompute(cmd *cobra.Command, opts *ComputeOptions) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	store, err := storeFor(cmdCtx, opts.NoStore)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	eng, err := buildEngine(cmdCtx.Cfg, store, cmdCtx.Logger)
	if err != nil {
		return err
	}

	series, err := eng.Compute(cmd.Context())
	if err != nil {
		return err
	}

	if err := cmdCtx.Renderer.Series(series); err != nil {
		return err
	}
	if opts.PlotPath != "" {
		if err := output.SavePlot(series, opts.PlotPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Plot written to %s\n", opts.PlotPath)
	}
	return nil
}

func storeFor(cmdCtx *CommandContext, noStore bool) (state.Store, error) {
	if noStore {
		return nil, nil
	}
	return openStore(cmdCtx.Cfg)
}
