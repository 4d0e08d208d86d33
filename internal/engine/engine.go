// Package engine runs the PWV pipeline: discover granule pairs in a data
// directory, sample vertical profiles at the site (or along the line of
// sight to a target), integrate each into a PWV estimate, and persist the
// resulting series.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fyodor-project/fyodor/internal/config"
	"github.com/fyodor-project/fyodor/internal/goesr"
	"github.com/fyodor-project/fyodor/internal/state"
	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// Sentinel errors for per-granule skip conditions.
var (
	// ErrBelowCutoff marks a scan where the target sits below the minimum
	// elevation; the sample is skipped, not failed.
	ErrBelowCutoff = errors.New("target below elevation cutoff")
	// ErrNotVisible marks a site outside the satellite's disk.
	ErrNotVisible = errors.New("site not visible from satellite")
)

// Config holds the pipeline parameters for one run.
type Config struct {
	DataDir string
	Site    pwv.Location
	Mode    string // config.ModeZenith or config.ModeTarget

	// Target coordinates, degrees; used in target mode only.
	RADeg  float64
	DecDeg float64

	// Integration window, applied in target mode. Zenith mode integrates
	// the full profile.
	PressureMinHpa float64
	PressureMaxHpa float64

	MinElevationDeg float64
	Workers         int
}

// Engine computes PWV series from granules on disk.
type Engine struct {
	cfg   Config
	store state.Store // nil disables persistence
	log   *slog.Logger
	open  openFunc
}

// New creates an engine. store may be nil to skip run tracking.
func New(cfg Config, store state.Store, log *slog.Logger) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = config.DefaultWorkers
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{cfg: cfg, store: store, log: log, open: openDataset}
}

// Discover scans the data directory and pairs temperature granules with
// their moisture partners.
func (e *Engine) Discover() (pairs []goesr.Pair, unpaired []goesr.Granule, err error) {
	granules, err := goesr.Scan(e.cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}
	pairs, unpaired = goesr.MatchPairs(granules)
	return pairs, unpaired, nil
}

// Compute runs the pipeline over every granule pair in the data directory
// and returns the time-ordered series. Pairs that fail to decode are
// skipped with a warning; the run fails only on discovery or persistence
// errors, or when the context is cancelled.
func (e *Engine) Compute(ctx context.Context) (*pwv.Series, error) {
	pairs, unpaired, err := e.Discover()
	if err != nil {
		return nil, err
	}
	for _, g := range unpaired {
		e.log.Warn("granule has no partner, skipping",
			"file", g.Path, "product", string(g.Product))
	}
	if len(pairs) == 0 {
		e.log.Warn("no granule pairs found", "data_dir", e.cfg.DataDir)
	}

	run, err := e.createRun()
	if err != nil {
		return nil, err
	}

	series, err := e.computePairs(ctx, pairs)
	if err != nil {
		e.failRun(run, err)
		return nil, err
	}

	if err := e.persist(run, series); err != nil {
		return nil, err
	}
	return series, nil
}

func (e *Engine) computePairs(ctx context.Context, pairs []goesr.Pair) (*pwv.Series, error) {
	results := make([]*pwv.Sample, len(pairs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sample, err := e.computePair(pair)
			switch {
			case errors.Is(err, ErrBelowCutoff):
				e.log.Debug("target below cutoff, skipping scan",
					"scan_start", pair.Start(), "min_elevation_deg", e.cfg.MinElevationDeg)
			case err != nil:
				e.log.Warn("failed to process granule pair, skipping",
					"scan_start", pair.Start(), "error", err)
			default:
				results[i] = &sample
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	series := &pwv.Series{Site: e.cfg.Site.Name, Mode: e.cfg.Mode}
	for _, s := range results {
		if s != nil {
			series.Samples = append(series.Samples, *s)
		}
	}
	series.Sort()
	return series, nil
}

// computePair produces one PWV sample from a temperature/moisture pair.
func (e *Engine) computePair(pair goesr.Pair) (pwv.Sample, error) {
	tSrc, err := e.open(pair.T.Path)
	if err != nil {
		return pwv.Sample{}, err
	}
	defer tSrc.Close()
	mSrc, err := e.open(pair.M.Path)
	if err != nil {
		return pwv.Sample{}, err
	}
	defer mSrc.Close()

	proj, err := tSrc.Projection()
	if err != nil {
		return pwv.Sample{}, err
	}
	if !proj.Visible(e.cfg.Site.LatitudeDeg, e.cfg.Site.LongitudeDeg) {
		return pwv.Sample{}, fmt.Errorf("%w: site %s, satellite longitude %g",
			ErrNotVisible, e.cfg.Site.Name, proj.LonOriginDeg)
	}

	pressure, err := tSrc.PressureHpa()
	if err != nil {
		return pwv.Sample{}, err
	}
	scanX, err := tSrc.ScanX()
	if err != nil {
		return pwv.Sample{}, err
	}
	scanY, err := tSrc.ScanY()
	if err != nil {
		return pwv.Sample{}, err
	}
	mid, err := tSrc.MidpointTime()
	if err != nil {
		return pwv.Sample{}, err
	}

	if e.cfg.Mode == config.ModeTarget {
		return e.targetSample(pair, tSrc, mSrc, proj, pressure, scanX, scanY, mid)
	}
	return e.zenithSample(tSrc, mSrc, proj, pressure, scanX, scanY, mid)
}

// zenithSample integrates the full vertical profile above the site.
func (e *Engine) zenithSample(tSrc, mSrc GranuleSource, proj pwv.Projection,
	pressure, scanX, scanY []float64, mid time.Time) (pwv.Sample, error) {

	x, y := proj.ScanAngles(e.cfg.Site.LatitudeDeg, e.cfg.Site.LongitudeDeg)
	xi := pwv.NearestIndex(scanX, x)
	yi := pwv.NearestIndex(scanY, y)
	if xi < 0 || yi < 0 {
		return pwv.Sample{}, fmt.Errorf("empty scan-angle grid")
	}

	tempK, err := tSrc.ProfileColumn(goesr.VarTemperature, yi, xi)
	if err != nil {
		return pwv.Sample{}, err
	}
	rh, err := mSrc.ProfileColumn(goesr.VarMoisture, yi, xi)
	if err != nil {
		return pwv.Sample{}, err
	}

	mm, err := pwv.Integrate(pwv.Profile{
		PressureHpa:  pressure,
		TemperatureK: tempK,
		RelHumidity:  rh,
	})
	if err != nil {
		return pwv.Sample{}, err
	}
	return pwv.Sample{Time: mid, PWVmm: mm, ElevationDeg: 90}, nil
}

// targetSample samples the profile along the line of sight to the target,
// one grid cell per pressure level, restricted to the configured window.
func (e *Engine) targetSample(pair goesr.Pair, tSrc, mSrc GranuleSource,
	proj pwv.Projection, pressure, scanX, scanY []float64, mid time.Time) (pwv.Sample, error) {

	alt, az := pwv.Horizontal(e.cfg.RADeg, e.cfg.DecDeg, mid, e.cfg.Site)
	altDeg := alt * 180 / math.Pi
	if altDeg < e.cfg.MinElevationDeg {
		return pwv.Sample{}, fmt.Errorf("%w: elevation %.1f deg at %s",
			ErrBelowCutoff, altDeg, mid.Format(time.RFC3339))
	}

	heights := pwv.LevelHeights(pressure)
	losLat, losLon := pwv.LineOfSightOffsets(e.cfg.Site, alt, az, heights)

	lo := pwv.NearestIndex(pressure, e.cfg.PressureMinHpa)
	hi := pwv.NearestIndex(pressure, e.cfg.PressureMaxHpa)
	if lo < 0 || hi < 0 {
		return pwv.Sample{}, fmt.Errorf("empty pressure vector")
	}
	if lo > hi {
		lo, hi = hi, lo
	}

	var pSel, tSel, rhSel []float64
	for l := lo; l <= hi; l++ {
		x, y := proj.ScanAngles(losLat[l], losLon[l])
		xi := pwv.NearestIndex(scanX, x)
		yi := pwv.NearestIndex(scanY, y)
		if xi < 0 || yi < 0 {
			continue
		}
		tempK, err := tSrc.ValueAt(goesr.VarTemperature, yi, xi, l)
		if err != nil {
			return pwv.Sample{}, err
		}
		rh, err := mSrc.ValueAt(goesr.VarMoisture, yi, xi, l)
		if err != nil {
			return pwv.Sample{}, err
		}
		pSel = append(pSel, pressure[l])
		tSel = append(tSel, tempK)
		rhSel = append(rhSel, rh)
	}

	mm, err := pwv.Integrate(pwv.Profile{
		PressureHpa:  pSel,
		TemperatureK: tSel,
		RelHumidity:  rhSel,
	})
	if err != nil {
		return pwv.Sample{}, fmt.Errorf("scan %s: %w", pair.Start().Format(time.RFC3339), err)
	}
	return pwv.Sample{Time: mid, PWVmm: mm, ElevationDeg: altDeg}, nil
}

func (e *Engine) createRun() (*state.Run, error) {
	if e.store == nil {
		return nil, nil
	}
	run, err := e.store.CreateRun(e.cfg.Site.Name, e.cfg.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	return run, nil
}

func (e *Engine) failRun(run *state.Run, cause error) {
	if run == nil {
		return
	}
	if err := e.store.CompleteRun(run.ID, state.RunStatusFailed, cause.Error(), 0); err != nil {
		e.log.Warn("failed to mark run as failed", "run_id", run.ID, "error", err)
	}
}

func (e *Engine) persist(run *state.Run, series *pwv.Series) error {
	if run == nil {
		return nil
	}
	if err := e.store.SaveSamples(run.ID, series.Samples); err != nil {
		e.failRun(run, err)
		return fmt.Errorf("failed to save samples: %w", err)
	}
	if err := e.store.CompleteRun(run.ID, state.RunStatusCompleted, "", len(series.Samples)); err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}
