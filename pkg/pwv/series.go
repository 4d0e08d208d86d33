package pwv

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample is one PWV estimate at a granule midpoint time. ElevationDeg is
// the target elevation in line-of-sight mode and 90 at zenith.
type Sample struct {
	Time         time.Time `json:"time"`
	PWVmm        float64   `json:"pwv_mm"`
	ElevationDeg float64   `json:"elevation_deg"`
}

// Series is a time-ordered sequence of PWV samples for one site.
type Series struct {
	Site    string   `json:"site"`
	Mode    string   `json:"mode"`
	Samples []Sample `json:"samples"`
}

// Stats summarizes a series.
type Stats struct {
	MinMm    float64 `json:"min_mm"`
	MaxMm    float64 `json:"max_mm"`
	MeanMm   float64 `json:"mean_mm"`
	MedianMm float64 `json:"median_mm"`
}

// Sort orders the samples by time.
func (s *Series) Sort() {
	sort.Slice(s.Samples, func(i, j int) bool {
		return s.Samples[i].Time.Before(s.Samples[j].Time)
	})
}

// Stats returns summary statistics, or false for an empty series.
func (s Series) Stats() (Stats, bool) {
	if len(s.Samples) == 0 {
		return Stats{}, false
	}
	vals := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		vals[i] = smp.PWVmm
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	return Stats{
		MinMm:    floats.Min(vals),
		MaxMm:    floats.Max(vals),
		MeanMm:   stat.Mean(vals, nil),
		MedianMm: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}, true
}
