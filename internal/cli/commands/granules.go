package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fyodor-project/fyodor/internal/goesr"
)

// NewGranulesCommand creates the granules command.
func NewGranulesCommand() *cobra.Command {
	var showUnpaired bool

	cmd := &cobra.Command{
		Use:   "granules",
		Short: "List granule pairs found in the data directory",
		Long: `Scan the data directory for ABI L2+ vertical profile granules and show
how temperature (LVTP) and moisture (LVMP) files pair up by scan start time.`,
		Example: `  # List paired scans
  fyodor granules

  # Include granules with no partner
  fyodor granules --unpaired`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGranules(cmd, showUnpaired)
		},
	}

	cmd.Flags().BoolVar(&showUnpaired, "unpaired", false, "Also list granules missing their partner")

	return cmd
}

func runGranules(cmd *cobra.Command, showUnpaired bool) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	granules, err := goesr.Scan(cmdCtx.Cfg.DataDir)
	if err != nil {
		return err
	}
	pairs, unpaired := goesr.MatchPairs(granules)

	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			p.Start().UTC().Format(time.RFC3339),
			"G" + p.T.Satellite,
			p.T.Scene,
			fmt.Sprintf("M%d", p.T.Mode),
		})
	}
	if err := cmdCtx.Renderer.Table([]string{"Scan Start (UTC)", "Satellite", "Scene", "Mode"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d pairs, %d unpaired\n", len(pairs), len(unpaired))

	if showUnpaired && len(unpaired) > 0 {
		urows := make([][]string, 0, len(unpaired))
		for _, g := range unpaired {
			urows = append(urows, []string{
				g.Start.UTC().Format(time.RFC3339),
				string(g.Product),
				g.Path,
			})
		}
		if err := cmdCtx.Renderer.Table([]string{"Scan Start (UTC)", "Product", "File"}, urows); err != nil {
			return err
		}
	}
	return nil
}
