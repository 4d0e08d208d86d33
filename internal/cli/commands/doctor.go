package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyodor-project/fyodor/internal/cli/config"
	"github.com/fyodor-project/fyodor/internal/goesr"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project setup",
		Long: `Check that the project is ready to compute: the configuration loads,
the site resolves, the data directory holds pairable granules, and the
state database can be opened.`,
		RunE: runDoctor,
	}
}

// healthCheck is one doctor finding.
type healthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "pass", "warn", "error"
	Detail string `json:"detail"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	cfg := cmdCtx.Cfg

	var checks []healthCheck

	if file := config.GetConfigFileUsed(); file != "" {
		checks = append(checks, healthCheck{"config file", "pass", file})
	} else {
		checks = append(checks, healthCheck{"config file", "warn", "no fyodor.yaml found, using defaults"})
	}

	checks = append(checks, checkSite(cfg))
	checks = append(checks, checkGranules(cfg)...)
	checks = append(checks, checkState(cfg))

	rows := make([][]string, 0, len(checks))
	errors := 0
	for _, c := range checks {
		if c.Status == "error" {
			errors++
		}
		rows = append(rows, []string{c.Name, c.Status, c.Detail})
	}
	if err := cmdCtx.Renderer.Table([]string{"Check", "Status", "Detail"}, rows); err != nil {
		return err
	}

	if errors > 0 {
		return fmt.Errorf("%d check(s) failed", errors)
	}
	return nil
}

func checkSite(cfg *config.Config) healthCheck {
	if cfg.Site == "" {
		return healthCheck{"site", "warn", "no site configured, set --site or the site config key"}
	}
	loc, err := cfg.Location()
	if err != nil {
		return healthCheck{"site", "error", err.Error()}
	}
	return healthCheck{"site", "pass",
		fmt.Sprintf("%s (%.4f, %.4f)", loc.Name, loc.LatitudeDeg, loc.LongitudeDeg)}
}

func checkGranules(cfg *config.Config) []healthCheck {
	if _, err := os.Stat(cfg.DataDir); err != nil {
		return []healthCheck{{"data directory", "error", err.Error()}}
	}
	checks := []healthCheck{{"data directory", "pass", cfg.DataDir}}

	granules, err := goesr.Scan(cfg.DataDir)
	if err != nil {
		return append(checks, healthCheck{"granules", "error", err.Error()})
	}
	pairs, unpaired := goesr.MatchPairs(granules)

	switch {
	case len(pairs) == 0:
		checks = append(checks, healthCheck{"granules", "warn", "no granule pairs found"})
	case len(unpaired) > 0:
		checks = append(checks, healthCheck{"granules", "warn",
			fmt.Sprintf("%d pairs, %d unpaired", len(pairs), len(unpaired))})
	default:
		checks = append(checks, healthCheck{"granules", "pass",
			fmt.Sprintf("%d pairs", len(pairs))})
	}
	return checks
}

func checkState(cfg *config.Config) healthCheck {
	store, err := openStore(cfg)
	if err != nil {
		return healthCheck{"state database", "error", err.Error()}
	}
	defer store.Close()
	return healthCheck{"state database", "pass", cfg.StatePath}
}
