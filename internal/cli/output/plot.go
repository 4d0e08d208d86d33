package output

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// SavePlot writes a PWV time-series plot to path. The image format is
// chosen from the file extension (.png, .svg, .pdf, ...).
func SavePlot(s *pwv.Series, path string) error {
	if len(s.Samples) == 0 {
		return fmt.Errorf("no samples to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("PWV at %s (%s)", s.Site, s.Mode)
	p.X.Label.Text = "Time (UTC)"
	p.Y.Label.Text = "PWV (mm)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}

	pts := make(plotter.XYs, len(s.Samples))
	for i, sample := range s.Samples {
		pts[i].X = float64(sample.Time.Unix())
		pts[i].Y = sample.PWVmm
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("build plot: %w", err)
	}
	p.Add(line, points)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
