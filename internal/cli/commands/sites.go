package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSitesCommand creates the sites command and its subcommands.
func NewSitesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List known observing sites",
		Long: `List the built-in observatory catalog together with any sites defined
under the sites key in fyodor.yaml. User-defined sites shadow built-in
entries with the same name.`,
		RunE: runSites,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show one site's coordinates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSitesShow(cmd, args[0])
		},
	})

	return cmd
}

func runSitesShow(cmd *cobra.Command, name string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	catalog, err := cmdCtx.Cfg.Catalog()
	if err != nil {
		return err
	}
	loc, ok := catalog.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown site %q: run 'fyodor sites' to list available sites", name)
	}
	return cmdCtx.Renderer.Table(
		[]string{"Site", "Latitude", "Longitude", "Elevation (m)"},
		[][]string{{
			loc.Name,
			fmt.Sprintf("%.5f", loc.LatitudeDeg),
			fmt.Sprintf("%.5f", loc.LongitudeDeg),
			fmt.Sprintf("%.0f", loc.ElevationM),
		}})
}

func runSites(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	catalog, err := cmdCtx.Cfg.Catalog()
	if err != nil {
		return err
	}

	all := catalog.All()
	rows := make([][]string, 0, len(all))
	for _, loc := range all {
		rows = append(rows, []string{
			loc.Name,
			fmt.Sprintf("%.5f", loc.LatitudeDeg),
			fmt.Sprintf("%.5f", loc.LongitudeDeg),
			fmt.Sprintf("%.0f", loc.ElevationM),
		})
	}
	return cmdCtx.Renderer.Table([]string{"Site", "Latitude", "Longitude", "Elevation (m)"}, rows)
}
