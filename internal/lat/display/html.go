package display

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/latfilter/internal/fsutil"
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/pipeline"
)

func scatterData(xys plotter.XYs) []opts.ScatterData {
	data := make([]opts.ScatterData, 0, len(xys))
	for _, pt := range xys {
		data = append(data, opts.ScatterData{Value: []interface{}{pt.X, pt.Y}})
	}
	return data
}

func viewChart(geo *geometry.Geometry, v l1hits.View, pts ViewPoints, r *pipeline.Result) *charts.Scatter {
	xmin, xmax, zmin, zmax := bounds(geo, v)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("Event %d %s view", r.Seq, v),
			Subtitle: fmt.Sprintf("status=%s projections=%d energy=%dMeV", r.Status, r.Count(), r.EnergyMeV),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: xmin, Max: xmax, Name: "Strip", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: zmin, Max: zmax, Name: "Z", NameLocation: "middle", NameGap: 40}),
	)

	scatter.AddSeries("clusters", scatterData(pts.Hits), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	for _, tr := range pts.Tracks {
		scatter.AddSeries(tr.Name, scatterData(tr.Points), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	}
	return scatter
}

// WriteEventHTML renders both views of one event as a single HTML page.
func WriteEventHTML(w io.Writer, geo *geometry.Geometry, ev *l1hits.Event, r *pipeline.Result) error {
	views := Collect(geo, ev, projections(r))

	page := components.NewPage()
	page.PageTitle = fmt.Sprintf("Event %d", r.Seq)
	page.AddCharts(
		viewChart(geo, l1hits.X, views[l1hits.X], r),
		viewChart(geo, l1hits.Y, views[l1hits.Y], r),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render event %d: %w", r.Seq, err)
	}
	return nil
}

// WriteStatusHTML renders a bar chart of event counts per status.
func WriteStatusHTML(w io.Writer, title string, counts map[string]int) error {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	y := make([]opts.BarData, 0, len(names))
	for _, name := range names {
		y = append(y, opts.BarData{Value: counts[name]})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("events", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar.Render(w)
}

// SaveHTML writes the output of render to name.
func SaveHTML(fs fsutil.FileSystem, name string, render func(io.Writer) error) error {
	f, err := fs.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
