package replay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/latfilter/internal/config"
	"github.com/banshee-data/latfilter/internal/lat/display"
	"github.com/banshee-data/latfilter/internal/lat/eventio"
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/pipeline"
	"github.com/banshee-data/latfilter/internal/lat/storage/sqlite"
	"github.com/banshee-data/latfilter/internal/monitoring"
	"github.com/banshee-data/latfilter/internal/timeutil"
	"github.com/banshee-data/latfilter/internal/version"
)

// ErrNoWorkers is returned when Options.Workers is below 1.
var ErrNoWorkers = errors.New("replay needs at least one worker")

// Options configure a Runner.
type Options struct {
	GeometryID       geometry.ID
	Thresholds       pipeline.Thresholds
	Workers          int
	ProgressInterval time.Duration

	// Source and ConfigJSON are recorded on the stored run.
	Source     string
	ConfigJSON string
}

// OptionsFromConfig builds Options from a tuning config.
func OptionsFromConfig(cfg *config.TuningConfig) Options {
	return Options{
		GeometryID:       geometry.ID(cfg.GetGeometryID()),
		Thresholds:       pipeline.ThresholdsFromConfig(cfg),
		Workers:          cfg.GetReplayWorkers(),
		ProgressInterval: cfg.GetProgressInterval(),
	}
}

// Runner replays event records through the filter.
type Runner struct {
	opts  Options
	clock timeutil.Clock

	runs    *sqlite.RunStore
	events  *sqlite.EventStore
	plotter *display.EventPlotter
}

// NewRunner creates a Runner.
func NewRunner(opts Options) *Runner {
	return &Runner{opts: opts, clock: timeutil.RealClock{}}
}

// SetClock replaces the clock used for timing and progress reports.
func (r *Runner) SetClock(clk timeutil.Clock) {
	r.clock = clk
}

// SetStores makes the runner record the run and every event result.
func (r *Runner) SetStores(runs *sqlite.RunStore, events *sqlite.EventStore) {
	r.runs, r.events = runs, events
}

// SetPlotter makes the runner plot every vetoed event.
func (r *Runner) SetPlotter(p *display.EventPlotter) {
	r.plotter = p
}

// slot is the per-worker state. A slot stays checked out from the pool
// until the writer has consumed its result.
type slot struct {
	pc *pipeline.Context
	ev l1hits.Event
}

type job struct {
	idx  int
	slot *slot
	res  *pipeline.Result
	err  error
	done chan struct{}
}

// Run filters every record and returns the summary. Results reach the
// stores and the plotter in record order whatever the number of workers.
func (r *Runner) Run(ctx context.Context, records []eventio.Record) (*Summary, error) {
	workers := r.opts.Workers
	if workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrNoWorkers, workers)
	}

	pool := make(chan *slot, workers)
	for i := 0; i < workers; i++ {
		pc, err := pipeline.NewContext(r.opts.GeometryID, r.opts.Thresholds)
		if err != nil {
			return nil, err
		}
		pc.SetClock(r.clock)
		pool <- &slot{pc: pc}
	}

	runID, err := r.startRun()
	if err != nil {
		return nil, err
	}

	start := r.clock.Now()
	t := newTally(len(records))
	var processed, vetoed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan *job, workers)

	var filters errgroup.Group
	filters.SetLimit(workers)

	// Dispatcher: hands records to free slots in order.
	g.Go(func() error {
		defer close(jobs)
		for i := range records {
			var s *slot
			select {
			case s = <-pool:
			case <-gctx.Done():
				return nil
			}
			j := &job{idx: i, slot: s, done: make(chan struct{})}
			filters.Go(func() error {
				defer close(j.done)
				if err := records[j.idx].Fill(&j.slot.ev); err != nil {
					j.err = err
					return nil
				}
				j.res, j.err = j.slot.pc.Run(&j.slot.ev)
				return nil
			})
			select {
			case jobs <- j:
			case <-gctx.Done():
				<-j.done
				return nil
			}
		}
		return nil
	})

	// Writer: consumes results in order and recycles slots.
	g.Go(func() error {
		for j := range jobs {
			<-j.done
			if j.err != nil {
				return fmt.Errorf("record %d: %w", j.idx, j.err)
			}
			if err := r.consume(runID, t, &j.slot.ev, j.res); err != nil {
				return err
			}
			processed.Add(1)
			if j.res.Veto {
				vetoed.Add(1)
			}
			pool <- j.slot
		}
		return nil
	})

	stopProgress := r.progress(len(records), &processed, &vetoed)
	err = g.Wait()
	filters.Wait()
	stopProgress()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	s := t.summary(runID, r.clock.Since(start))
	if r.runs != nil {
		if err := r.runs.Finish(runID, s.Events, s.Vetoed); err != nil {
			return nil, err
		}
	}
	monitoring.Logf("replay: %d events, %d vetoed in %v", s.Events, s.Vetoed, s.Wall)
	return s, nil
}

func (r *Runner) startRun() (string, error) {
	if r.runs == nil {
		return "", nil
	}
	run := &sqlite.Run{
		GeometryID: int(r.opts.GeometryID),
		Source:     r.opts.Source,
		ConfigJSON: r.opts.ConfigJSON,
		Version:    version.Version,
	}
	if err := r.runs.Insert(run); err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return run.RunID, nil
}

func (r *Runner) consume(runID string, t *tally, ev *l1hits.Event, res *pipeline.Result) error {
	t.add(res)
	if r.events != nil {
		if err := r.events.InsertResult(runID, res); err != nil {
			return fmt.Errorf("store event %d: %w", res.Seq, err)
		}
	}
	if r.plotter != nil && res.Veto {
		if _, err := r.plotter.PlotEvent(ev, res); err != nil {
			return fmt.Errorf("plot event %d: %w", res.Seq, err)
		}
	}
	return nil
}

// progress logs the processed count every ProgressInterval until the
// returned function is called.
func (r *Runner) progress(total int, processed, vetoed *atomic.Int64) func() {
	if r.opts.ProgressInterval <= 0 {
		return func() {}
	}
	ticker := r.clock.NewTicker(r.opts.ProgressInterval)
	quit := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ticker.C():
				monitoring.Logf("replay: %d/%d events, %d vetoed", processed.Load(), total, vetoed.Load())
			case <-quit:
				return
			}
		}
	}()
	return func() {
		ticker.Stop()
		close(quit)
		<-done
	}
}
