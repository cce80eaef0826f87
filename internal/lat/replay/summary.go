package replay

import (
	"fmt"
	"io"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/latfilter/internal/lat/pipeline"
)

// Summary describes a finished replay.
type Summary struct {
	RunID  string
	Events int
	Vetoed int
	// ByStatus counts events per Status.String().
	ByStatus map[string]int

	MeanProjections   float64
	StdDevProjections float64
	MaxProjections    int

	// MeanFilterTime is the mean time Context.Run spent per event.
	MeanFilterTime time.Duration
	Wall           time.Duration
}

type tally struct {
	byStatus    map[string]int
	vetoed      int
	projections []float64
	maxPrjs     int
	filterTime  time.Duration
}

func newTally(n int) *tally {
	return &tally{byStatus: make(map[string]int), projections: make([]float64, 0, n)}
}

func (t *tally) add(r *pipeline.Result) {
	t.byStatus[r.Status.String()]++
	if r.Veto {
		t.vetoed++
	}
	n := r.Count()
	t.projections = append(t.projections, float64(n))
	if n > t.maxPrjs {
		t.maxPrjs = n
	}
	t.filterTime += r.Elapsed
}

func (t *tally) summary(runID string, wall time.Duration) *Summary {
	s := &Summary{
		RunID:          runID,
		Events:         len(t.projections),
		Vetoed:         t.vetoed,
		ByStatus:       t.byStatus,
		MaxProjections: t.maxPrjs,
		Wall:           wall,
	}
	if s.Events > 0 {
		s.MeanProjections = stat.Mean(t.projections, nil)
		s.MeanFilterTime = t.filterTime / time.Duration(s.Events)
	}
	if s.Events > 1 {
		s.StdDevProjections = stat.StdDev(t.projections, nil)
	}
	return s
}

// VetoFraction returns the share of events vetoed.
func (s *Summary) VetoFraction() float64 {
	if s.Events == 0 {
		return 0
	}
	return float64(s.Vetoed) / float64(s.Events)
}

// Print writes a human readable report.
func (s *Summary) Print(w io.Writer) {
	if s.RunID != "" {
		fmt.Fprintf(w, "Run:          %s\n", s.RunID)
	}
	fmt.Fprintf(w, "Events:       %d\n", s.Events)
	fmt.Fprintf(w, "Vetoed:       %d (%.1f%%)\n", s.Vetoed, 100*s.VetoFraction())
	fmt.Fprintf(w, "Projections:  mean %.2f stddev %.2f max %d\n", s.MeanProjections, s.StdDevProjections, s.MaxProjections)
	fmt.Fprintf(w, "Filter time:  %v per event, %v wall\n", s.MeanFilterTime, s.Wall)

	names := make([]string, 0, len(s.ByStatus))
	for name := range s.ByStatus {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Status:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-12s %d\n", name, s.ByStatus[name])
	}
}
