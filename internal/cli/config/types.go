// Package config loads CLI configuration from fyodor.yaml, environment
// variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"math"

	intconfig "github.com/fyodor-project/fyodor/internal/config"
	"github.com/fyodor-project/fyodor/internal/sites"
	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// SiteConfig is a user-defined observing site in fyodor.yaml.
type SiteConfig struct {
	Latitude   float64 `koanf:"latitude"`
	Longitude  float64 `koanf:"longitude"`
	ElevationM float64 `koanf:"elevation_m"`
}

// PressureConfig bounds the integration window in target mode.
type PressureConfig struct {
	MinHpa float64 `koanf:"min_hpa"`
	MaxHpa float64 `koanf:"max_hpa"`
}

// Config holds all CLI configuration options.
type Config struct {
	ProjectRoot string `koanf:"-"`

	DataDir      string `koanf:"data_dir"`
	StatePath    string `koanf:"state_path"`
	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`

	Site            string                `koanf:"site"`
	Sites           map[string]SiteConfig `koanf:"sites"`
	Mode            string                `koanf:"mode"`
	RADeg           float64               `koanf:"ra"`
	DecDeg          float64               `koanf:"dec"`
	Pressure        PressureConfig        `koanf:"pressure"`
	MinElevationDeg float64               `koanf:"min_elevation_deg"`
	Workers         int                   `koanf:"workers"`
}

// Default values surfaced for commands; shared ones come from internal/config.
const (
	DefaultStateFile = intconfig.DefaultStateFile
	DefaultOutput    = intconfig.DefaultOutput
)

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if err := intconfig.ValidateMode(c.Mode); err != nil {
		return err
	}
	if err := intconfig.ValidatePressureWindow(c.Pressure.MinHpa, c.Pressure.MaxHpa); err != nil {
		return err
	}
	if err := intconfig.ValidateWorkers(c.Workers); err != nil {
		return err
	}
	if c.Mode == intconfig.ModeTarget && (math.IsNaN(c.RADeg) || math.IsNaN(c.DecDeg)) {
		return fmt.Errorf("target mode requires --ra and --dec (or ra/dec config keys)")
	}
	return nil
}

// Catalog returns the built-in site catalog merged with the config's sites.
func (c *Config) Catalog() (*sites.Catalog, error) {
	user := make(map[string]pwv.Location, len(c.Sites))
	for name, s := range c.Sites {
		user[name] = pwv.Location{
			Name:         name,
			LatitudeDeg:  s.Latitude,
			LongitudeDeg: s.Longitude,
			ElevationM:   s.ElevationM,
		}
	}
	return sites.Load(user)
}

// Location resolves the configured site name against the catalog.
func (c *Config) Location() (pwv.Location, error) {
	if c.Site == "" {
		return pwv.Location{}, fmt.Errorf("no site configured: set --site or the site config key")
	}
	catalog, err := c.Catalog()
	if err != nil {
		return pwv.Location{}, err
	}
	loc, ok := catalog.Lookup(c.Site)
	if !ok {
		return pwv.Location{}, fmt.Errorf("unknown site %q: run 'fyodor sites' to list available sites", c.Site)
	}
	return loc, nil
}
