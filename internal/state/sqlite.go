package state

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/fyodor-project/fyodor/pkg/pwv"
)

//go:embed schema.sql
var schemaSQL string

// errNotOpened guards every store method against use before Open.
var errNotOpened = errors.New("database not opened")

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// NewSQLiteStoreWithDB wraps an existing database handle. Used by tests.
func NewSQLiteStoreWithDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the tables if they do not exist.
func (s *SQLiteStore) InitSchema() error {
	if s.db == nil {
		return errNotOpened
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// CreateRun inserts a new running run.
func (s *SQLiteStore) CreateRun(site, mode string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run := &Run{
		ID:        generateID(),
		Site:      site,
		Mode:      mode,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, site, mode, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Site, run.Mode, run.Status, run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run as finished with the given status.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string, sampleCount int) error {
	if s.db == nil {
		return errNotOpened
	}

	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, completed_at = ?, error = ?, sample_count = ? WHERE id = ?`,
		status, time.Now().UTC(), nullString(errMsg), sampleCount, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return nil
}

// SaveSamples stores a run's samples in a single transaction.
func (s *SQLiteStore) SaveSamples(runID string, samples []pwv.Sample) error {
	if s.db == nil {
		return errNotOpened
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO samples (run_id, observed_at, pwv_mm, elevation_deg) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer stmt.Close()

	for _, smp := range samples {
		if _, err := stmt.Exec(runID, smp.Time.UTC(), smp.PWVmm, smp.ElevationDeg); err != nil {
			return fmt.Errorf("failed to insert sample at %s: %w", smp.Time, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit samples: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRow(
		`SELECT id, site, mode, status, started_at, completed_at, error, sample_count
		 FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetSamples returns a run's samples in time order.
func (s *SQLiteStore) GetSamples(runID string) ([]pwv.Sample, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(
		`SELECT observed_at, pwv_mm, elevation_deg FROM samples
		 WHERE run_id = ? ORDER BY observed_at`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []pwv.Sample
	for rows.Next() {
		var smp pwv.Sample
		if err := rows.Scan(&smp.Time, &smp.PWVmm, &smp.ElevationDeg); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return samples, nil
}

// ListRuns returns the most recent runs up to limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.Query(
		`SELECT id, site, mode, status, started_at, completed_at, error, sample_count
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}
	return runs, nil
}

// LatestRun returns the most recent run for a site, or nil when there is none.
func (s *SQLiteStore) LatestRun(site string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRow(
		`SELECT id, site, mode, status, started_at, completed_at, error, sample_count
		 FROM runs WHERE site = ? ORDER BY started_at DESC LIMIT 1`, site)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	run := &Run{}
	var completedAt sql.NullTime
	var errMsg sql.NullString

	if err := sc.Scan(&run.ID, &run.Site, &run.Mode, &run.Status,
		&run.StartedAt, &completedAt, &errMsg, &run.SampleCount); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if errMsg.Valid {
		run.Error = errMsg.String
	}
	return run, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
