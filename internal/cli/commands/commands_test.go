package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyodor-project/fyodor/internal/cli"
	"github.com/fyodor-project/fyodor/internal/cli/config"
)

const (
	tempGranule  = "OR_ABI-L2-LVTPF-M6_G16_s20191941100355_e20191941111122_c20191941112577.nc"
	moistGranule = "OR_ABI-L2-LVMPF-M6_G16_s20191941100355_e20191941111122_c20191941112590.nc"
)

// execute runs the root command with args in a fresh temp project.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	config.ResetConfig()

	var out, errBuf bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errBuf.String(), err
}

func TestVersionCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "fyodor v")
	assert.Contains(t, stdout, "water vapor")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, stdout, "initialized")
	assert.FileExists(t, filepath.Join(dir, "fyodor.yaml"))
	assert.DirExists(t, filepath.Join(dir, "data"))

	// Second init without --force refuses to clobber.
	_, _, err = execute(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "init", "--force")
	require.NoError(t, err)
}

func TestInitCommandNewDirectory(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "init", "my-site")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "my-site", "fyodor.yaml"))
	assert.DirExists(t, filepath.Join(dir, "my-site", "data"))
}

func TestSitesCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	stdout, _, err := execute(t, "sites")
	require.NoError(t, err)
	assert.Contains(t, stdout, "apache_point")
	assert.Contains(t, stdout, "mauna_kea")
}

func TestSitesCommandUserSite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeProjectConfig(t, dir, `
sites:
  backyard:
    latitude: 40.0
    longitude: -105.3
    elevation_m: 1650
`)

	stdout, _, err := execute(t, "sites")
	require.NoError(t, err)
	assert.Contains(t, stdout, "backyard")
}

func TestGranulesCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for _, name := range []string{tempGranule, moistGranule} {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), nil, 0o644))
	}

	stdout, _, err := execute(t, "granules")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2019-07-13T11:00:35Z")
	assert.Contains(t, stdout, "G16")
	assert.Contains(t, stdout, "1 pairs, 0 unpaired")
}

func TestGranulesCommandMissingDataDir(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := execute(t, "granules")
	require.Error(t, err)
}

func TestDoctorCommandMissingData(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := execute(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check(s) failed")
}

func TestDoctorCommandHealthy(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	dataDir := filepath.Join(dir, "data")
	require.NoError(t, os.MkdirAll(dataDir, 0o755))
	for _, name := range []string{tempGranule, moistGranule} {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), nil, 0o644))
	}

	stdout, _, err := execute(t, "doctor", "--site", "apache_point")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pass")
	assert.Contains(t, stdout, "1 pairs")
}

func TestRunsCommandEmpty(t *testing.T) {
	t.Chdir(t.TempDir())
	stdout, _, err := execute(t, "runs")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Status")
}

func TestComputeUnknownSite(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))

	_, _, err := execute(t, "compute", "--site", "atlantis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown site")
}

func TestComputeTargetRequiresCoords(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	_, _, err := execute(t, "compute", "--site", "apache_point", "--mode", "target")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target mode requires")
}

func TestComputeEmptyDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "data"), 0o755))

	stdout, _, err := execute(t, "compute", "--site", "apache_point", "--no-store")
	require.NoError(t, err)
	assert.Contains(t, stdout, "(no samples)")
}

func writeProjectConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fyodor.yaml"), []byte(content), 0o644))
}
