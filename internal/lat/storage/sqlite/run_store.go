package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/latfilter/internal/timeutil"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Run is one replay of an event source through the filter.
type Run struct {
	RunID      string `json:"run_id"`
	GeometryID int    `json:"geometry_id"`
	Source     string `json:"source"`
	ConfigJSON string `json:"config_json,omitempty"`
	Version    string `json:"version"`
	StartedAt  int64  `json:"started_at"`
	FinishedAt int64  `json:"finished_at,omitempty"` // 0 while running
	EventCount int    `json:"event_count"`
	VetoCount  int    `json:"veto_count"`
}

// RunStore persists filter runs.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for timestamps and retry backoff.
func (s *RunStore) SetClock(clk timeutil.Clock) {
	s.clock = clk
}

// Insert persists a new run. An empty RunID gets a UUID and a zero
// StartedAt gets the current time.
func (s *RunStore) Insert(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt == 0 {
		run.StartedAt = s.clock.Now().UnixNano()
	}

	var configStr interface{}
	if run.ConfigJSON != "" {
		configStr = run.ConfigJSON
	}

	return retryOnBusy(s.clock, func() error {
		_, err := s.db.Exec(`
			INSERT INTO filter_runs (
				run_id, geometry_id, source, config_json, version,
				started_at, event_count, veto_count
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.GeometryID, run.Source, configStr, run.Version,
			run.StartedAt, run.EventCount, run.VetoCount,
		)
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	})
}

// Finish records the final counts of a run and stamps its finish time.
func (s *RunStore) Finish(runID string, eventCount, vetoCount int) error {
	finished := s.clock.Now().UnixNano()
	return retryOnBusy(s.clock, func() error {
		res, err := s.db.Exec(`
			UPDATE filter_runs
			SET finished_at = ?, event_count = ?, veto_count = ?
			WHERE run_id = ?`,
			finished, eventCount, vetoCount, runID)
		if err != nil {
			return fmt.Errorf("finish run: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil
	})
}

const runColumns = `run_id, geometry_id, source, config_json, version,
	       started_at, finished_at, event_count, veto_count`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r        Run
		config   sql.NullString
		finished sql.NullInt64
	)
	err := row.Scan(&r.RunID, &r.GeometryID, &r.Source, &config, &r.Version,
		&r.StartedAt, &finished, &r.EventCount, &r.VetoCount)
	if err != nil {
		return nil, err
	}
	r.ConfigJSON = config.String
	r.FinishedAt = finished.Int64
	return &r, nil
}

// Get returns a single run by ID.
func (s *RunStore) Get(runID string) (*Run, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM filter_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	return r, nil
}

// List returns runs ordered by start time, newest first. A limit of 0 or
// less returns every run.
func (s *RunStore) List(limit int) ([]*Run, error) {
	q := `SELECT ` + runColumns + ` FROM filter_runs ORDER BY started_at DESC`
	args := []interface{}{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Delete removes a run together with its events and projections.
func (s *RunStore) Delete(runID string) error {
	return retryOnBusy(s.clock, func() error {
		res, err := s.db.Exec(`DELETE FROM filter_runs WHERE run_id = ?`, runID)
		if err != nil {
			return fmt.Errorf("delete run: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("run %s: %w", runID, ErrNotFound)
		}
		return nil
	})
}
