package engine

import (
	"time"

	"github.com/fyodor-project/fyodor/internal/goesr"
	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// GranuleSource is the decoded view of one open granule that the pipeline
// reads. *goesr.Dataset implements it; tests substitute in-memory fakes.
type GranuleSource interface {
	Projection() (pwv.Projection, error)
	PressureHpa() ([]float64, error)
	ScanX() ([]float64, error)
	ScanY() ([]float64, error)
	MidpointTime() (time.Time, error)
	ProfileColumn(name string, yIdx, xIdx int) ([]float64, error)
	ValueAt(name string, yIdx, xIdx, level int) (float64, error)
	Close() error
}

// openFunc opens a granule file as a source.
type openFunc func(path string) (GranuleSource, error)

func openDataset(path string) (GranuleSource, error) {
	return goesr.OpenDataset(path)
}
