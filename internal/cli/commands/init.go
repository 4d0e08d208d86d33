package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const configTemplate = `# fyodor project configuration
data_dir: data
state_path: .fyodor/state.db

# Observing site: a catalog name (see 'fyodor sites') or one defined below.
site: apache_point

# zenith integrates straight up; target follows an RA/Dec line of sight.
mode: zenith
# ra: 88.793
# dec: 7.407

# Integration window for target mode, hPa.
pressure:
  min_hpa: 300
  max_hpa: 750

min_elevation_deg: 30
workers: 4

# Extra sites, shadowing catalog entries with the same name.
# sites:
#   backyard:
#     latitude: 40.0
#     longitude: -105.3
#     elevation_m: 1650
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new fyodor project",
		Long: `Create a fyodor.yaml configuration file and a data/ directory for
granule downloads.`,
		Example: `  # Initialize in the current directory
  fyodor init

  # Initialize a new directory
  fyodor init my-site

  # Overwrite an existing config
  fyodor init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, "fyodor.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("fyodor.yaml already exists. Use --force to overwrite")
	}
	if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "data"), 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "fyodor project initialized!")
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Drop LVTP/LVMP granules into data/")
	fmt.Fprintln(out, "  2. Pick a site: fyodor sites")
	fmt.Fprintln(out, "  3. Compute: fyodor compute --site <name>")
	return nil
}
