// Package eventio reads and writes tracker events as JSON files.
//
// A file carries the geometry the events were recorded with and a list of
// events. Each event lists its ACD tiles and the clusters of every hit
// tower layer:
//
//	{"geometry_id": 2, "events": [{"seq": 1, "energy_mev": 0,
//	  "acd": {"top": 4096, "x": 0, "y": 0},
//	  "layers": [{"tower": 5, "view": "x", "layer": 17, "strips": [901]}]}]}
package eventio

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"

	"github.com/sugawarayuuta/sonnet"

	"github.com/banshee-data/latfilter/internal/fsutil"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

// MaxFileSize bounds a single event file.
const MaxFileSize = 64 * 1024 * 1024

// ErrGeometryMismatch is returned when files of one replay were recorded
// with different geometries.
var ErrGeometryMismatch = errors.New("event files use different geometries")

// File is the decoded form of an event file.
type File struct {
	GeometryID int      `json:"geometry_id"`
	Events     []Record `json:"events"`
}

// Record is one event.
type Record struct {
	Seq       uint64        `json:"seq"`
	EnergyMeV int           `json:"energy_mev"`
	Acd       AcdRecord     `json:"acd"`
	Layers    []LayerRecord `json:"layers"`
}

// AcdRecord mirrors l1hits.AcdHits.
type AcdRecord struct {
	Top uint32 `json:"top"`
	X   uint32 `json:"x"`
	Y   uint32 `json:"y"`
}

// LayerRecord lists the cluster strips of one tower layer.
type LayerRecord struct {
	Tower  int    `json:"tower"`
	View   string `json:"view"`
	Layer  int    `json:"layer"`
	Strips []int  `json:"strips"`
}

// Decode parses an event file.
func Decode(data []byte) (*File, error) {
	var f File
	if err := sonnet.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w", err)
	}
	if f.GeometryID < 0 {
		return nil, fmt.Errorf("invalid geometry_id %d", f.GeometryID)
	}
	return &f, nil
}

// Encode renders f as JSON.
func Encode(f *File) ([]byte, error) {
	data, err := sonnet.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("failed to encode events: %w", err)
	}
	return data, nil
}

// ReadFile reads one event file.
func ReadFile(fsys fsutil.FileSystem, path string) (*File, error) {
	path = filepath.Clean(path)
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat event file: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("event file %s too large: %d bytes (max %d)", path, info.Size(), MaxFileSize)
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	f, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ReadPath reads an event file, or every *.json file of a directory in
// name order. Events of a directory are concatenated; all files must
// share one geometry.
func ReadPath(fsys fsutil.FileSystem, path string) (*File, error) {
	info, err := fsys.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat events: %w", err)
	}
	if !info.IsDir() {
		return ReadFile(fsys, path)
	}

	names, err := fsys.Glob(filepath.Join(path, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no event files in %s: %w", path, fs.ErrNotExist)
	}

	var out *File
	for _, name := range names {
		f, err := ReadFile(fsys, name)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = f
			continue
		}
		if f.GeometryID != out.GeometryID {
			return nil, fmt.Errorf("%w: %s has %d, expected %d", ErrGeometryMismatch, name, f.GeometryID, out.GeometryID)
		}
		out.Events = append(out.Events, f.Events...)
	}
	return out, nil
}

// Fill clears ev and loads the record into it.
func (r *Record) Fill(ev *l1hits.Event) error {
	ev.Clear()
	ev.Seq = r.Seq
	ev.EnergyMeV = r.EnergyMeV
	ev.Acd = l1hits.AcdHits{Top: r.Acd.Top, X: r.Acd.X, Y: r.Acd.Y}

	for _, l := range r.Layers {
		v, err := l1hits.ParseView(l.View)
		if err != nil {
			return fmt.Errorf("event %d: %w", r.Seq, err)
		}
		for _, s := range l.Strips {
			if err := ev.AddHit(l.Tower, v, l.Layer, s); err != nil {
				return fmt.Errorf("event %d: %w", r.Seq, err)
			}
		}
	}
	return nil
}

// FromEvent builds the record of an event, one LayerRecord per non-empty
// layer in tower, view, layer order.
func FromEvent(ev *l1hits.Event) Record {
	r := Record{
		Seq:       ev.Seq,
		EnergyMeV: ev.EnergyMeV,
		Acd:       AcdRecord{Top: ev.Acd.Top, X: ev.Acd.X, Y: ev.Acd.Y},
	}
	for t := range ev.Towers {
		for v := range ev.Towers[t].Layers {
			view := l1hits.View(v)
			for layer := range ev.Towers[t].Layers[v] {
				lh := &ev.Towers[t].Layers[v][layer]
				if lh.N == 0 {
					continue
				}
				r.Layers = append(r.Layers, LayerRecord{
					Tower:  t,
					View:   viewName(view),
					Layer:  layer,
					Strips: slices.Clone(lh.Strips[:lh.N]),
				})
			}
		}
	}
	return r
}

func viewName(v l1hits.View) string {
	if v == l1hits.Y {
		return "y"
	}
	return "x"
}
