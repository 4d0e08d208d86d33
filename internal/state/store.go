// Package state persists PWV computation runs and their samples in SQLite.
package state

import (
	"time"

	"github.com/fyodor-project/fyodor/pkg/pwv"
)

// RunStatus is the lifecycle state of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one invocation of the PWV pipeline.
type Run struct {
	ID          string     `json:"id"`
	Site        string     `json:"site"`
	Mode        string     `json:"mode"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
	SampleCount int        `json:"sample_count"`
}

// Store is the persistence contract used by the engine and CLI.
type Store interface {
	CreateRun(site, mode string) (*Run, error)
	CompleteRun(id string, status RunStatus, errMsg string, sampleCount int) error
	SaveSamples(runID string, samples []pwv.Sample) error
	GetRun(id string) (*Run, error)
	GetSamples(runID string) ([]pwv.Sample, error)
	ListRuns(limit int) ([]*Run, error)
	LatestRun(site string) (*Run, error)
	Close() error
}
