package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyodor-project/fyodor/internal/config"
	"github.com/fyodor-project/fyodor/internal/goesr"
	"github.com/fyodor-project/fyodor/internal/state"
	"github.com/fyodor-project/fyodor/internal/testutil"
	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// Granule filenames for two consecutive full-disk scans.
const (
	temp1  = "OR_ABI-L2-LVTPF-M6_G16_s20191941100355_e20191941111122_c20191941112577.nc"
	moist1 = "OR_ABI-L2-LVMPF-M6_G16_s20191941100355_e20191941111122_c20191941112590.nc"
	temp2  = "OR_ABI-L2-LVTPF-M6_G16_s20191941110355_e20191941121122_c20191941122577.nc"
	moist2 = "OR_ABI-L2-LVMPF-M6_G16_s20191941110355_e20191941121122_c20191941122590.nc"
)

var apachePoint = pwv.Location{
	Name:         "apache_point",
	LatitudeDeg:  32.780278,
	LongitudeDeg: -105.820278,
	ElevationM:   2788,
}

// fakeSource is a synthetic full-disk granule over the GOES-16 slot with a
// uniform atmosphere.
type fakeSource struct {
	mid    time.Time
	closed bool
}

func goes16Projection() pwv.Projection {
	return pwv.Projection{
		LonOriginDeg:     -75.0,
		SatelliteHeightM: 35786023.0 + 6378137.0,
		SemiMajorM:       6378137.0,
		SemiMinorM:       6356752.31414,
	}
}

func fakePressure() []float64 {
	p := make([]float64, 15)
	for i := range p {
		p[i] = 300 + 50*float64(i) // 300..1000 hPa
	}
	return p
}

func fakeGrid() []float64 {
	// 601 cells across the full disk, about 0.0005 rad apart.
	g := make([]float64, 601)
	for i := range g {
		g[i] = -0.15 + 0.0005*float64(i)
	}
	return g
}

func (f *fakeSource) Projection() (pwv.Projection, error) { return goes16Projection(), nil }
func (f *fakeSource) PressureHpa() ([]float64, error)     { return fakePressure(), nil }
func (f *fakeSource) ScanX() ([]float64, error)           { return fakeGrid(), nil }
func (f *fakeSource) ScanY() ([]float64, error)           { return fakeGrid(), nil }
func (f *fakeSource) MidpointTime() (time.Time, error)    { return f.mid, nil }

func (f *fakeSource) ProfileColumn(name string, yIdx, xIdx int) ([]float64, error) {
	col := make([]float64, len(fakePressure()))
	for l := range col {
		v, err := f.ValueAt(name, yIdx, xIdx, l)
		if err != nil {
			return nil, err
		}
		col[l] = v
	}
	return col, nil
}

func (f *fakeSource) ValueAt(name string, yIdx, xIdx, level int) (float64, error) {
	switch name {
	case goesr.VarTemperature:
		return 280, nil
	case goesr.VarMoisture:
		return 0.5, nil
	}
	return 0, fmt.Errorf("unknown variable %q", name)
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

// fakeOpen derives the midpoint time from the granule filename so samples
// from different scans get distinct timestamps.
func fakeOpen(path string) (GranuleSource, error) {
	g, err := goesr.ParseFilename(path)
	if err != nil {
		return nil, err
	}
	return &fakeSource{mid: g.Start.Add(5 * time.Minute)}, nil
}

func writeGranules(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}
	return dir
}

func zenithConfig(dataDir string) Config {
	return Config{
		DataDir:         dataDir,
		Site:            apachePoint,
		Mode:            config.ModeZenith,
		PressureMinHpa:  config.DefaultPressureMinHpa,
		PressureMaxHpa:  config.DefaultPressureMaxHpa,
		MinElevationDeg: config.DefaultMinElevationDeg,
		Workers:         2,
	}
}

func TestDiscoverPairsAndUnpaired(t *testing.T) {
	dir := writeGranules(t, temp1, moist1, temp2)
	e := New(zenithConfig(dir), nil, testutil.NewTestLogger(t))

	pairs, unpaired, err := e.Discover()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Len(t, unpaired, 1)
	assert.Equal(t, goesr.ProductTemperature, unpaired[0].Product)
}

func TestComputeZenith(t *testing.T) {
	dir := writeGranules(t, temp1, moist1, temp2, moist2)
	e := New(zenithConfig(dir), nil, testutil.NewTestLogger(t))
	e.open = fakeOpen

	series, err := e.Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "apache_point", series.Site)
	assert.Equal(t, config.ModeZenith, series.Mode)
	require.Len(t, series.Samples, 2)
	assert.True(t, series.Samples[0].Time.Before(series.Samples[1].Time))
	for _, s := range series.Samples {
		// Uniform 280 K at 50% humidity gives a few mm of column water.
		assert.Greater(t, s.PWVmm, 0.5)
		assert.Less(t, s.PWVmm, 50.0)
		assert.Equal(t, 90.0, s.ElevationDeg)
	}
}

func TestComputeTargetNearPole(t *testing.T) {
	dir := writeGranules(t, temp1, moist1)
	cfg := zenithConfig(dir)
	cfg.Mode = config.ModeTarget
	// A target near the celestial pole stays close to the site latitude in
	// elevation at any hour angle.
	cfg.RADeg = 0
	cfg.DecDeg = 89.9
	cfg.MinElevationDeg = 10

	e := New(cfg, nil, testutil.NewTestLogger(t))
	e.open = fakeOpen

	series, err := e.Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, series.Samples, 1)
	assert.InDelta(t, apachePoint.LatitudeDeg, series.Samples[0].ElevationDeg, 1.0)
	assert.Greater(t, series.Samples[0].PWVmm, 0.0)
}

func TestComputeTargetBelowCutoffSkipsAll(t *testing.T) {
	dir := writeGranules(t, temp1, moist1)
	cfg := zenithConfig(dir)
	cfg.Mode = config.ModeTarget
	cfg.RADeg = 0
	cfg.DecDeg = -89.9 // never rises from the northern hemisphere
	cfg.MinElevationDeg = 30

	e := New(cfg, nil, testutil.NewTestLogger(t))
	e.open = fakeOpen

	series, err := e.Compute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, series.Samples)
}

func TestComputeSiteNotVisible(t *testing.T) {
	dir := writeGranules(t, temp1, moist1)
	cfg := zenithConfig(dir)
	cfg.Site = pwv.Location{Name: "hanle", LatitudeDeg: 32.78, LongitudeDeg: 78.96}

	e := New(cfg, nil, testutil.NewTestLogger(t))
	e.open = fakeOpen

	series, err := e.Compute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, series.Samples)
}

func TestComputeSkipsUnreadablePair(t *testing.T) {
	dir := writeGranules(t, temp1, moist1, temp2, moist2)
	e := New(zenithConfig(dir), nil, testutil.NewTestLogger(t))

	bad := errors.New("corrupt granule")
	e.open = func(path string) (GranuleSource, error) {
		if filepath.Base(path) == temp2 {
			return nil, bad
		}
		return fakeOpen(path)
	}

	series, err := e.Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, series.Samples, 1)
}

func TestComputeMissingDataDir(t *testing.T) {
	cfg := zenithConfig(filepath.Join(t.TempDir(), "nope"))
	e := New(cfg, nil, testutil.NewTestLogger(t))

	_, err := e.Compute(context.Background())
	require.Error(t, err)
}

func TestComputeCancelled(t *testing.T) {
	dir := writeGranules(t, temp1, moist1)
	e := New(zenithConfig(dir), nil, testutil.NewTestLogger(t))
	e.open = fakeOpen

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Compute(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestComputePersistsRun(t *testing.T) {
	dir := writeGranules(t, temp1, moist1, temp2, moist2)

	store := state.NewSQLiteStore()
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema())
	defer store.Close()

	e := New(zenithConfig(dir), store, testutil.NewTestLogger(t))
	e.open = fakeOpen

	series, err := e.Compute(context.Background())
	require.NoError(t, err)
	require.Len(t, series.Samples, 2)

	run, err := store.LatestRun("apache_point")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, state.RunStatusCompleted, run.Status)
	assert.Equal(t, 2, run.SampleCount)

	samples, err := store.GetSamples(run.ID)
	require.NoError(t, err)
	assert.Len(t, samples, 2)
}
