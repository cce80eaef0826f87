package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/sugawarayuuta/sonnet"

	"github.com/banshee-data/latfilter/internal/lat/pipeline"
	"github.com/banshee-data/latfilter/internal/timeutil"
)

// Event is the stored summary of one filtered event.
type Event struct {
	RunID           string          `json:"run_id"`
	Seq             uint64          `json:"seq"`
	EnergyMeV       int             `json:"energy_mev"`
	Status          pipeline.Status `json:"status"`
	StatusName      string          `json:"status_name"`
	Veto            bool            `json:"veto"`
	ProjectionCount int             `json:"projection_count"`
	TowerMask       uint16          `json:"tower_mask"`
	ElapsedNS       int64           `json:"elapsed_ns"`
}

// TowerWords holds the nonzero ACD and skirt words of one tower.
type TowerWords struct {
	Tower int    `json:"tower"`
	Acd   uint32 `json:"acd"`
	Skirt uint32 `json:"skirt"`
}

// Projection is a stored projection. Hits lists the strips of layers
// MinLayer..MaxLayer, lowest first.
type Projection struct {
	Idx          int    `json:"idx"`
	Tower        int    `json:"tower"`
	View         string `json:"view"`
	MinLayer     int    `json:"min_layer"`
	MaxLayer     int    `json:"max_layer"`
	NHits        int    `json:"nhits"`
	Intercept    int    `json:"intercept"`
	Slope        int    `json:"slope"`
	Layers       uint32 `json:"layers"`
	Interpolated uint32 `json:"interpolated"`
	AcdTopMask   uint32 `json:"acd_top_mask"`
	AcdSideMask  uint32 `json:"acd_side_mask"`
	SkirtMask    uint32 `json:"skirt_mask"`
	Hits         []int  `json:"hits"`
}

// EventStore persists per-event filter results.
type EventStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for retry backoff.
func (s *EventStore) SetClock(clk timeutil.Clock) {
	s.clock = clk
}

// InsertResult stores an event, its tower words, and its projections in
// one transaction.
func (s *EventStore) InsertResult(runID string, r *pipeline.Result) error {
	var towerMask uint16
	if r.Projections != nil {
		towerMask = r.Projections.TwrMsk
	}

	prjs := make([]Projection, 0, r.Count())
	if r.Projections != nil {
		for i, p := range r.Projections.All() {
			prjs = append(prjs, Projection{
				Idx:          i,
				Tower:        p.Tower,
				View:         p.View.String(),
				MinLayer:     p.Min,
				MaxLayer:     p.Max,
				NHits:        p.NHits,
				Intercept:    p.Intercept,
				Slope:        p.Slope,
				Layers:       p.Layers,
				Interpolated: p.Interpolated,
				AcdTopMask:   p.AcdTopMask,
				AcdSideMask:  p.AcdXMask | p.AcdYMask,
				SkirtMask:    p.SkirtMask,
				Hits:         append([]int(nil), p.Span()...),
			})
		}
	}
	hitsJSON := make([]string, len(prjs))
	for i := range prjs {
		b, err := sonnet.Marshal(prjs[i].Hits)
		if err != nil {
			return fmt.Errorf("marshal hits: %w", err)
		}
		hitsJSON[i] = string(b)
	}

	return retryOnBusy(s.clock, func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback()

		_, err = tx.Exec(`
			INSERT INTO filter_events (
				run_id, seq, energy_mev, status, status_name, veto,
				projection_count, tower_mask, elapsed_ns
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, int64(r.Seq), r.EnergyMeV, int(r.Status), r.Status.String(), r.Veto,
			r.Count(), int(towerMask), r.Elapsed.Nanoseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", r.Seq, err)
		}

		for tower := range r.Acd {
			if r.Acd[tower] == 0 && r.Skirt[tower] == 0 {
				continue
			}
			_, err = tx.Exec(`
				INSERT INTO filter_tower_words (run_id, seq, tower, acd, skirt)
				VALUES (?, ?, ?, ?, ?)`,
				runID, int64(r.Seq), tower, int64(r.Acd[tower]), int64(r.Skirt[tower]))
			if err != nil {
				return fmt.Errorf("insert tower words: %w", err)
			}
		}

		for i, p := range prjs {
			_, err = tx.Exec(`
				INSERT INTO filter_projections (
					run_id, seq, idx, tower, view, min_layer, max_layer, nhits,
					intercept, slope, layers, interpolated,
					acd_top_mask, acd_side_mask, skirt_mask, hits_json
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				runID, int64(r.Seq), p.Idx, p.Tower, p.View, p.MinLayer, p.MaxLayer, p.NHits,
				p.Intercept, p.Slope, int64(p.Layers), int64(p.Interpolated),
				int64(p.AcdTopMask), int64(p.AcdSideMask), int64(p.SkirtMask), hitsJSON[i],
			)
			if err != nil {
				return fmt.Errorf("insert projection %d: %w", i, err)
			}
		}
		return tx.Commit()
	})
}

const eventColumns = `run_id, seq, energy_mev, status, status_name, veto,
	       projection_count, tower_mask, elapsed_ns`

func scanEvent(row scanner) (*Event, error) {
	var (
		e      Event
		seq    int64
		status int
		mask   int
	)
	err := row.Scan(&e.RunID, &seq, &e.EnergyMeV, &status, &e.StatusName, &e.Veto,
		&e.ProjectionCount, &mask, &e.ElapsedNS)
	if err != nil {
		return nil, err
	}
	e.Seq = uint64(seq)
	e.Status = pipeline.Status(status)
	e.TowerMask = uint16(mask)
	return &e, nil
}

// GetEvent returns one event of a run.
func (s *EventStore) GetEvent(runID string, seq uint64) (*Event, error) {
	row := s.db.QueryRow(`SELECT `+eventColumns+` FROM filter_events
		WHERE run_id = ? AND seq = ?`, runID, int64(seq))
	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("event %d of run %s: %w", seq, runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

// ListEvents returns the events of a run in sequence order. With vetoOnly
// set only vetoed events are returned.
func (s *EventStore) ListEvents(runID string, vetoOnly bool) ([]*Event, error) {
	q := `SELECT ` + eventColumns + ` FROM filter_events WHERE run_id = ?`
	if vetoOnly {
		q += ` AND veto = 1`
	}
	q += ` ORDER BY seq`

	rows, err := s.db.Query(q, runID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// ListTowerWords returns the nonzero tower words of one event.
func (s *EventStore) ListTowerWords(runID string, seq uint64) ([]TowerWords, error) {
	rows, err := s.db.Query(`
		SELECT tower, acd, skirt FROM filter_tower_words
		WHERE run_id = ? AND seq = ?
		ORDER BY tower`, runID, int64(seq))
	if err != nil {
		return nil, fmt.Errorf("query tower words: %w", err)
	}
	defer rows.Close()

	var words []TowerWords
	for rows.Next() {
		var (
			w          TowerWords
			acd, skirt int64
		)
		if err := rows.Scan(&w.Tower, &acd, &skirt); err != nil {
			return nil, fmt.Errorf("scan tower words: %w", err)
		}
		w.Acd, w.Skirt = uint32(acd), uint32(skirt)
		words = append(words, w)
	}
	return words, rows.Err()
}

// ListProjections returns the projections of one event in creation order.
func (s *EventStore) ListProjections(runID string, seq uint64) ([]Projection, error) {
	rows, err := s.db.Query(`
		SELECT idx, tower, view, min_layer, max_layer, nhits, intercept, slope,
		       layers, interpolated, acd_top_mask, acd_side_mask, skirt_mask, hits_json
		FROM filter_projections
		WHERE run_id = ? AND seq = ?
		ORDER BY idx`, runID, int64(seq))
	if err != nil {
		return nil, fmt.Errorf("query projections: %w", err)
	}
	defer rows.Close()

	var prjs []Projection
	for rows.Next() {
		var (
			p                Projection
			layers, interp   int64
			top, side, skirt int64
			hits             string
		)
		err := rows.Scan(&p.Idx, &p.Tower, &p.View, &p.MinLayer, &p.MaxLayer, &p.NHits,
			&p.Intercept, &p.Slope, &layers, &interp, &top, &side, &skirt, &hits)
		if err != nil {
			return nil, fmt.Errorf("scan projection: %w", err)
		}
		p.Layers, p.Interpolated = uint32(layers), uint32(interp)
		p.AcdTopMask, p.AcdSideMask, p.SkirtMask = uint32(top), uint32(side), uint32(skirt)
		if err := sonnet.Unmarshal([]byte(hits), &p.Hits); err != nil {
			return nil, fmt.Errorf("decode hits of projection %d: %w", p.Idx, err)
		}
		prjs = append(prjs, p)
	}
	return prjs, rows.Err()
}

// StatusCounts returns the number of events of a run per status name.
func (s *EventStore) StatusCounts(runID string) (map[string]int, error) {
	rows, err := s.db.Query(`
		SELECT status_name, COUNT(*) FROM filter_events
		WHERE run_id = ?
		GROUP BY status_name`, runID)
	if err != nil {
		return nil, fmt.Errorf("query status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			name string
			n    int
		)
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}
