package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlagSet mirrors the persistent and compute flags the CLI registers.
func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data-dir", "", "")
	fs.String("state", "", "")
	fs.String("site", "", "")
	fs.StringP("output", "o", "", "")
	fs.BoolP("verbose", "v", false, "")
	fs.String("mode", "", "")
	fs.Float64("ra", 0, "")
	fs.Float64("dec", 0, "")
	fs.Float64("pmin", 0, "")
	fs.Float64("pmax", 0, "")
	fs.Float64("min-elevation-deg", 0, "")
	fs.Int("workers", 0, "")
	return fs
}

func TestLoadConfigDefaults(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Equal(t, "zenith", cfg.Mode)
	assert.Equal(t, 300.0, cfg.Pressure.MinHpa)
	assert.Equal(t, 750.0, cfg.Pressure.MaxHpa)
	assert.Equal(t, 30.0, cfg.MinElevationDeg)
	assert.Equal(t, 4, cfg.Workers)
	assert.True(t, math.IsNaN(cfg.RADeg))
	assert.True(t, math.IsNaN(cfg.DecDeg))
	assert.Empty(t, GetConfigFileUsed())

	// Relative defaults resolve against the project root.
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.True(t, filepath.IsAbs(cfg.StatePath))
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "data"), cfg.DataDir)
}

func TestLoadConfigFromFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, `
data_dir: granules
site: apache_point
mode: target
ra: 83.822
dec: -5.391
pressure:
  min_hpa: 400
  max_hpa: 700
workers: 2
`)
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "fyodor.yaml"), GetConfigFileUsed())
	assert.Equal(t, filepath.Join(dir, "granules"), cfg.DataDir)
	assert.Equal(t, "apache_point", cfg.Site)
	assert.Equal(t, "target", cfg.Mode)
	assert.InDelta(t, 83.822, cfg.RADeg, 1e-9)
	assert.InDelta(t, -5.391, cfg.DecDeg, 1e-9)
	assert.Equal(t, 400.0, cfg.Pressure.MinHpa)
	assert.Equal(t, 700.0, cfg.Pressure.MaxHpa)
	assert.Equal(t, 2, cfg.Workers)
}

func TestLoadConfigFoundUpward(t *testing.T) {
	ResetConfig()
	root := t.TempDir()
	writeConfig(t, root, "site: kitt_peak\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)
	assert.Equal(t, "kitt_peak", cfg.Site)
	assert.Equal(t, root, cfg.ProjectRoot)
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "site: kitt_peak\nmode: zenith\n")
	t.Chdir(dir)
	t.Setenv("FYODOR_SITE", "mauna_kea")

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)
	assert.Equal(t, "mauna_kea", cfg.Site)
	assert.Equal(t, "zenith", cfg.Mode)
}

func TestLoadConfigFlagsWin(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "site: kitt_peak\n")
	t.Chdir(dir)
	t.Setenv("FYODOR_SITE", "mauna_kea")

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--site", "palomar", "--workers", "8"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, "palomar", cfg.Site)
	assert.Equal(t, 8, cfg.Workers)
}

func TestLoadConfigUnchangedFlagsIgnored(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "workers: 6\n")
	t.Chdir(dir)

	// workers flag registered with zero value but never set; the file wins.
	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Workers)
}

func TestLoadConfigPressureFlags(t *testing.T) {
	ResetConfig()
	t.Chdir(t.TempDir())

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--pmin", "350", "--pmax", "800"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.Equal(t, 350.0, cfg.Pressure.MinHpa)
	assert.Equal(t, 800.0, cfg.Pressure.MaxHpa)
}

func TestLoadConfigStateFlagAbsolute(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	t.Chdir(dir)

	fs := newFlagSet()
	require.NoError(t, fs.Parse([]string{"--state", "custom.db"}))

	cfg, err := LoadConfig("", fs)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(cfg.StatePath))
	assert.Equal(t, "custom.db", filepath.Base(cfg.StatePath))
}

func TestLoadConfigExplicitFile(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site: lowell\n"), 0o644))
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig(path, newFlagSet())
	require.NoError(t, err)
	assert.Equal(t, "lowell", cfg.Site)
	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, dir, cfg.ProjectRoot)
}

func TestLoadConfigTargetModeNeedsCoords(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "mode: target\n")
	t.Chdir(dir)

	_, err := LoadConfig("", newFlagSet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target mode requires")
}

func TestLoadConfigInvalidMode(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "mode: sideways\n")
	t.Chdir(dir)

	_, err := LoadConfig("", newFlagSet())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid mode")
}

func TestLoadConfigUserSites(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, `
site: backyard
sites:
  backyard:
    latitude: 40.0
    longitude: -105.3
    elevation_m: 1650
`)
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "backyard", loc.Name)
	assert.Equal(t, 40.0, loc.LatitudeDeg)
	assert.Equal(t, 1650.0, loc.ElevationM)
}

func TestLoadConfigUnknownSite(t *testing.T) {
	ResetConfig()
	dir := t.TempDir()
	writeConfig(t, dir, "site: atlantis\n")
	t.Chdir(dir)

	cfg, err := LoadConfig("", newFlagSet())
	require.NoError(t, err)

	_, err = cfg.Location()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown site")
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FYODOR_TEST_HOME", "/srv/goes")
	assert.Equal(t, "/srv/goes/data", expandEnvVars("${FYODOR_TEST_HOME}/data"))
	assert.Equal(t, "${UNSET_VAR_XYZ}/data", expandEnvVars("${UNSET_VAR_XYZ}/data"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fyodor.yaml"), []byte(content), 0o644))
}
