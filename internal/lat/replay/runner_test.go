package replay

import (
	"bytes"
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/latfilter/internal/config"
	"github.com/banshee-data/latfilter/internal/fsutil"
	"github.com/banshee-data/latfilter/internal/lat/display"
	"github.com/banshee-data/latfilter/internal/lat/eventio"
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/pipeline"
	"github.com/banshee-data/latfilter/internal/lat/storage/sqlite"
	"github.com/banshee-data/latfilter/internal/monitoring"
	"github.com/banshee-data/latfilter/internal/testutil"
	"github.com/banshee-data/latfilter/internal/timeutil"
)

func quietLogs(t *testing.T) {
	t.Helper()
	orig := monitoring.Logf
	monitoring.SetLogger(func(string, ...interface{}) {})
	t.Cleanup(func() { monitoring.SetLogger(orig) })
}

// records cycles through four event shapes:
//
//	seq%4 == 0  one track through tower 5
//	seq%4 == 1  vertical track into the skirt below tower 0 (veto)
//	seq%4 == 2  energetic event without tracks (veto)
//	seq%4 == 3  quiet empty event
func records(t *testing.T, n int) []eventio.Record {
	t.Helper()
	all := testutil.Layers(0, l1hits.NumLayers-1)
	out := make([]eventio.Record, 0, n)
	for i := 0; i < n; i++ {
		ev := &l1hits.Event{Seq: uint64(i)}
		switch i % 4 {
		case 0:
			testutil.Fill(t, ev, 5, l1hits.X, testutil.Vertical(800+i, all...))
			testutil.Fill(t, ev, 5, l1hits.Y, testutil.Vertical(900, all...))
		case 1:
			testutil.Fill(t, ev, 0, l1hits.X, testutil.Vertical(50, all...))
			testutil.Fill(t, ev, 0, l1hits.Y, testutil.Vertical(50, all...))
		case 2:
			ev.EnergyMeV = 1000
		}
		out = append(out, eventio.FromEvent(ev))
	}
	return out
}

func defaultOptions(workers int) Options {
	return Options{
		GeometryID: geometry.IDDefault,
		Thresholds: pipeline.DefaultThresholds(),
		Workers:    workers,
		Source:     "test",
	}
}

func TestRunner_Summary(t *testing.T) {
	quietLogs(t)
	s, err := NewRunner(defaultOptions(1)).Run(context.Background(), records(t, 40))
	require.NoError(t, err)

	assert.Equal(t, 40, s.Events)
	assert.Equal(t, 20, s.Vetoed)
	assert.InDelta(t, 0.5, s.VetoFraction(), 1e-9)
	assert.Equal(t, map[string]int{
		"one-track": 10,
		"skirt":     10,
		"no-tracks": 10,
		"none":      10,
	}, s.ByStatus)
	// Two projections in half the events, none in the rest.
	assert.InDelta(t, 1.0, s.MeanProjections, 1e-9)
	assert.InDelta(t, 1.0128, s.StdDevProjections, 1e-3)
	assert.Equal(t, 2, s.MaxProjections)
	assert.Empty(t, s.RunID)
}

func TestRunner_WorkersAgree(t *testing.T) {
	quietLogs(t)
	recs := records(t, 64)
	want, err := NewRunner(defaultOptions(1)).Run(context.Background(), recs)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 16} {
		got, err := NewRunner(defaultOptions(workers)).Run(context.Background(), recs)
		require.NoError(t, err)
		ignore := cmpopts.IgnoreFields(Summary{}, "Wall", "MeanFilterTime")
		if diff := cmp.Diff(want, got, ignore); diff != "" {
			t.Errorf("workers=%d summary mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestRunner_Stores(t *testing.T) {
	quietLogs(t)
	d := testutil.NewTestDB(t)
	runs, events := sqlite.NewRunStore(d.DB), sqlite.NewEventStore(d.DB)

	opts := defaultOptions(4)
	opts.ConfigJSON = `{"replay_workers":4}`
	r := NewRunner(opts)
	r.SetStores(runs, events)

	recs := records(t, 12)
	s, err := r.Run(context.Background(), recs)
	require.NoError(t, err)
	require.NotEmpty(t, s.RunID)

	run, err := runs.Get(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, "test", run.Source)
	assert.Equal(t, opts.ConfigJSON, run.ConfigJSON)
	assert.Equal(t, 12, run.EventCount)
	assert.Equal(t, 6, run.VetoCount)
	assert.NotZero(t, run.FinishedAt)

	stored, err := events.ListEvents(s.RunID, false)
	require.NoError(t, err)
	require.Len(t, stored, len(recs))
	for i, e := range stored {
		assert.Equal(t, uint64(i), e.Seq)
	}

	// Projections of event 4 come from its own event, not a neighbour's.
	prjs, err := events.ListProjections(s.RunID, 4)
	require.NoError(t, err)
	require.Len(t, prjs, 2)
	assert.Equal(t, 804, prjs[0].Intercept)

	counts, err := events.StatusCounts(s.RunID)
	require.NoError(t, err)
	assert.Equal(t, s.ByStatus, counts)
}

func TestRunner_PlotsVetoedEvents(t *testing.T) {
	quietLogs(t)
	g, err := geometry.Locate(geometry.IDDefault)
	require.NoError(t, err)
	fs := fsutil.NewMemoryFileSystem()

	r := NewRunner(defaultOptions(2))
	r.SetPlotter(display.NewEventPlotter(fs, g, "plots"))
	_, err = r.Run(context.Background(), records(t, 8))
	require.NoError(t, err)

	files, err := fs.Glob("plots/*.png")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"plots/event_000001_x.png", "plots/event_000001_y.png",
		"plots/event_000002_x.png", "plots/event_000002_y.png",
		"plots/event_000005_x.png", "plots/event_000005_y.png",
		"plots/event_000006_x.png", "plots/event_000006_y.png",
	}, files)
}

func TestRunner_BadRecord(t *testing.T) {
	quietLogs(t)
	recs := records(t, 8)
	recs[3].Layers = append(recs[3].Layers, eventio.LayerRecord{Tower: 0, View: "Z", Layer: 1, Strips: []int{1}})

	_, err := NewRunner(defaultOptions(3)).Run(context.Background(), recs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 3")
}

func TestRunner_NoWorkers(t *testing.T) {
	_, err := NewRunner(defaultOptions(0)).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoWorkers)
}

func TestRunner_UnknownGeometry(t *testing.T) {
	opts := defaultOptions(1)
	opts.GeometryID = 99
	_, err := NewRunner(opts).Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestRunner_Cancelled(t *testing.T) {
	quietLogs(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewRunner(defaultOptions(2)).Run(ctx, records(t, 100))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunner_Empty(t *testing.T) {
	quietLogs(t)
	s, err := NewRunner(defaultOptions(2)).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, s.Events)
	assert.Zero(t, s.MeanProjections)
	assert.Zero(t, s.VetoFraction())
}

func TestRunner_Progress(t *testing.T) {
	lines := make(chan string, 4)
	orig := monitoring.Logf
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines <- fmt.Sprintf(format, v...)
	})
	t.Cleanup(func() { monitoring.SetLogger(orig) })

	clk := timeutil.NewMockClock(time.Unix(0, 0))
	opts := defaultOptions(1)
	opts.ProgressInterval = time.Second
	r := NewRunner(opts)
	r.SetClock(clk)

	var processed, vetoed atomic.Int64
	processed.Store(3)
	vetoed.Store(1)
	stop := r.progress(10, &processed, &vetoed)
	clk.Advance(time.Second)

	select {
	case line := <-lines:
		assert.Equal(t, "replay: 3/10 events, 1 vetoed", line)
	case <-time.After(5 * time.Second):
		t.Fatal("no progress line")
	}
	stop()
}

func TestOptionsFromConfig(t *testing.T) {
	cfg, err := config.ParseTuningConfig([]byte(`{"geometry_id": 1, "replay_workers": 8, "progress_interval": "2s", "no_track_energy_min_mev": 100}`))
	require.NoError(t, err)

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, geometry.IDInitial, opts.GeometryID)
	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, 2*time.Second, opts.ProgressInterval)
	assert.Equal(t, 100, opts.Thresholds.NoTrackEnergyMinMeV)
}

func TestSummary_Print(t *testing.T) {
	s := &Summary{
		RunID:           "abc",
		Events:          4,
		Vetoed:          1,
		ByStatus:        map[string]int{"skirt": 1, "one-track": 3},
		MeanProjections: 1.5,
		MaxProjections:  2,
	}
	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()
	assert.Contains(t, out, "Run:          abc")
	assert.Contains(t, out, "Vetoed:       1 (25.0%)")
	assert.Contains(t, out, "  one-track    3\n  skirt        1\n")
}
