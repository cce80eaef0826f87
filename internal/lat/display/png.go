package display

import (
	"fmt"
	"image/color"
	"io"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/latfilter/internal/fsutil"
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/pipeline"
)

var hitColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}

// EventPlotter writes one PNG per view and an HTML page for each event it
// is given.
type EventPlotter struct {
	fs        fsutil.FileSystem
	geo       *geometry.Geometry
	outputDir string

	Width, Height vg.Length
}

// NewEventPlotter creates a plotter writing below outputDir.
func NewEventPlotter(fs fsutil.FileSystem, geo *geometry.Geometry, outputDir string) *EventPlotter {
	return &EventPlotter{
		fs:        fs,
		geo:       geo,
		outputDir: outputDir,
		Width:     8 * vg.Inch,
		Height:    6 * vg.Inch,
	}
}

// PlotEvent saves event_<seq>_x.png, event_<seq>_y.png and
// event_<seq>.html and returns their paths.
func (ep *EventPlotter) PlotEvent(ev *l1hits.Event, r *pipeline.Result) ([]string, error) {
	if err := ep.fs.MkdirAll(ep.outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	views := Collect(ep.geo, ev, projections(r))

	files := make([]string, 0, 3)
	for v := l1hits.X; v <= l1hits.Y; v++ {
		title := fmt.Sprintf("Event %d %s view: %s", r.Seq, v, r.Status)
		p, err := ep.render(v, views[v], title)
		if err != nil {
			return files, fmt.Errorf("event %d view %s: %w", r.Seq, v, err)
		}
		name := filepath.Join(ep.outputDir, fmt.Sprintf("event_%06d_%s.png", r.Seq, lower(v)))
		if err := ep.save(p, name); err != nil {
			return files, err
		}
		files = append(files, name)
	}

	page := filepath.Join(ep.outputDir, fmt.Sprintf("event_%06d.html", r.Seq))
	err := SaveHTML(ep.fs, page, func(w io.Writer) error {
		return WriteEventHTML(w, ep.geo, ev, r)
	})
	if err != nil {
		return files, err
	}
	return append(files, page), nil
}

func (ep *EventPlotter) render(v l1hits.View, pts ViewPoints, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Strip"
	p.Y.Label.Text = "Z"
	p.X.Min, p.X.Max, p.Y.Min, p.Y.Max = bounds(ep.geo, v)
	p.Add(plotter.NewGrid())

	if len(pts.Hits) > 0 {
		s, err := plotter.NewScatter(pts.Hits)
		if err != nil {
			return nil, fmt.Errorf("hits: %w", err)
		}
		s.GlyphStyle.Color = hitColor
		s.GlyphStyle.Radius = vg.Points(1.5)
		p.Add(s)
	}

	for i, tr := range pts.Tracks {
		l, err := plotter.NewLine(tr.Points)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tr.Name, err)
		}
		l.Color = plotutil.Color(i)
		l.Width = vg.Points(1)
		p.Add(l)
		p.Legend.Add(tr.Name, l)
	}
	p.Legend.Top = true
	return p, nil
}

func (ep *EventPlotter) save(p *plot.Plot, name string) error {
	wt, err := p.WriterTo(ep.Width, ep.Height, "png")
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	f, err := ep.fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	return f.Close()
}

func lower(v l1hits.View) string {
	if v == l1hits.X {
		return "x"
	}
	return "y"
}
