package display

import (
	"fmt"

	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/l2projections"
	"github.com/banshee-data/latfilter/internal/lat/pipeline"
)

// Track is the drawn form of one projection.
type Track struct {
	Name   string
	Points plotter.XYs
}

// ViewPoints holds everything drawn for one view.
type ViewPoints struct {
	Hits   plotter.XYs
	Tracks []Track
}

// Collect converts the clusters of ev and the projections prjs into plot
// coordinates, indexed by view.
func Collect(geo *geometry.Geometry, ev *l1hits.Event, prjs []l2projections.Projection) [2]ViewPoints {
	var out [2]ViewPoints
	for tower := range ev.Towers {
		tw := &ev.Towers[tower]
		for v := l1hits.X; v <= l1hits.Y; v++ {
			off := geo.Offset(int(v), tower)
			for layer := 0; layer < l1hits.NumLayers; layer++ {
				hs := tw.Layer(v, layer)
				for i := 0; i < hs.N; i++ {
					out[v].Hits = append(out[v].Hits, plotter.XY{
						X: float64(off + hs.Strips[i]),
						Y: float64(geo.Z[v][layer]),
					})
				}
			}
		}
	}

	for i := range prjs {
		p := &prjs[i]
		off := geo.Offset(int(p.View), p.Tower)
		pts := make(plotter.XYs, 0, p.Max-p.Min+1)
		for layer := p.Min; layer <= p.Max; layer++ {
			pts = append(pts, plotter.XY{
				X: float64(off + p.Hits[layer]),
				Y: float64(geo.Z[p.View][layer]),
			})
		}
		out[p.View].Tracks = append(out[p.View].Tracks, Track{
			Name:   fmt.Sprintf("twr %x %s #%d", p.Tower, p.View, i),
			Points: pts,
		})
	}
	return out
}

// bounds returns the strip range covered by the towers and the Z range of
// the layers of one view.
func bounds(geo *geometry.Geometry, v l1hits.View) (xmin, xmax, zmin, zmax float64) {
	xmin = float64(geo.Offsets[v][0])
	xmax = float64(geo.Offsets[v][3] + geo.Width)
	zmin = float64(geo.Z[v][0])
	zmax = float64(geo.Z[v][l1hits.NumLayers-1])
	return xmin, xmax, zmin, zmax
}

func projections(r *pipeline.Result) []l2projections.Projection {
	if r.Projections == nil {
		return nil
	}
	return r.Projections.All()
}
