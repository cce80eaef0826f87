package pipeline

import (
	"fmt"
	"time"

	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/l2projections"
	"github.com/banshee-data/latfilter/internal/lat/l3veto"
	"github.com/banshee-data/latfilter/internal/monitoring"
	"github.com/banshee-data/latfilter/internal/timeutil"
)

// Result is the outcome of one event. It points into the storage of the
// Context that produced it and is overwritten by the next Run.
type Result struct {
	Seq       uint64
	EnergyMeV int

	Projections *l2projections.Collection

	// Acd and Skirt hold the AcdProject and SkirtProject words per tower.
	Acd   [l1hits.NumTowers]uint32
	Skirt [l1hits.NumTowers]uint32

	Status  Status
	Veto    bool
	Elapsed time.Duration
}

// Count returns the number of projections found in the event.
func (r *Result) Count() int {
	if r.Projections == nil {
		return 0
	}
	return r.Projections.Cur
}

// Context holds everything one event needs. Reuse it across events.
type Context struct {
	Geo        *geometry.Geometry
	Thresholds Thresholds

	finder *l2projections.Finder
	prjs   *l2projections.Collection
	result Result
	clock  timeutil.Clock
}

// NewContext returns a Context for the geometry registered under id.
func NewContext(id geometry.ID, th Thresholds) (*Context, error) {
	geo, err := geometry.Locate(id)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline context: %w", err)
	}
	return &Context{
		Geo:        geo,
		Thresholds: th,
		finder:     l2projections.NewFinder(geo),
		prjs:       l2projections.NewCollection(),
		clock:      timeutil.RealClock{},
	}, nil
}

// SetClock replaces the clock used to time events.
func (c *Context) SetClock(clk timeutil.Clock) {
	c.clock = clk
}

// SetMatchHook installs a callback receiving every cluster the finder
// accepts. Passing nil removes it.
func (c *Context) SetMatchHook(fn func(l2projections.Match)) {
	c.finder.OnMatch = fn
}

// Run filters one event. Cluster claims left by a previous run of the same
// event are released first, so an event can be replayed.
func (c *Context) Run(ev *l1hits.Event) (*Result, error) {
	start := c.clock.Now()

	ev.Reset()
	c.prjs.Reset()
	r := &c.result
	*r = Result{Seq: ev.Seq, EnergyMeV: ev.EnergyMeV, Projections: c.prjs}

	dispatch := l3veto.AcdProjectTemplate(ev.Acd)
	for tower := range ev.Towers {
		tw := &ev.Towers[tower]
		if !tw.HasHits() {
			continue
		}
		xCnt, yCnt, err := c.finder.FindTower(c.prjs, tower, tw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", ev.Seq, err)
		}
		if xCnt+yCnt == 0 {
			continue
		}
		x, y := c.prjs.Tower(tower)
		r.Acd[tower] = l3veto.AcdProject(c.Geo, tower, x, y, dispatch, ev.Acd)
		r.Skirt[tower] = l3veto.SkirtProject(c.Geo, tower, x, y)
	}

	r.Status = Classify(r, ev.EnergyMeV, c.Thresholds)
	r.Veto = r.Status.Vetoed()
	r.Elapsed = c.clock.Since(start)

	if monitoring.TraceEnabled() {
		monitoring.Tracef("event %d: %d projections towers %04x status %s veto=%t in %v",
			ev.Seq, r.Count(), c.prjs.TwrMsk, r.Status, r.Veto, r.Elapsed)
	}
	return r, nil
}
