// Package testutil provides shared test utilities and fixtures.
//
// This package centralises common test helpers to reduce code duplication
// across test files and improve test maintainability.
package testutil

import (
	"math"
	"path/filepath"
	"slices"
	"testing"

	"github.com/banshee-data/latfilter/internal/db"
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t testing.TB, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t testing.TB, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Track returns the strips a straight track leaves in the given layers of
// one view: x0 strips at layer 0, slope strips per Z unit.
func Track(geo *geometry.Geometry, view l1hits.View, x0, slope float64, layers ...int) map[int][]int {
	out := make(map[int][]int, len(layers))
	for _, layer := range layers {
		v := x0 + slope*float64(geo.Z[view][layer]-geo.Z[view][0])
		out[layer] = append(out[layer], int(math.Round(v)))
	}
	return out
}

// Vertical returns the same strip in every given layer.
func Vertical(strip int, layers ...int) map[int][]int {
	out := make(map[int][]int, len(layers))
	for _, layer := range layers {
		out[layer] = []int{strip}
	}
	return out
}

// Layers returns lo..hi inclusive without the skipped layers.
func Layers(lo, hi int, skip ...int) []int {
	var out []int
	for l := lo; l <= hi; l++ {
		if !slices.Contains(skip, l) {
			out = append(out, l)
		}
	}
	return out
}

// Fill adds the strips of every map to one view of a tower, sorted per
// layer.
func Fill(t testing.TB, ev *l1hits.Event, tower int, view l1hits.View, hits ...map[int][]int) {
	t.Helper()
	merged := map[int][]int{}
	for _, h := range hits {
		for layer, strips := range h {
			merged[layer] = append(merged[layer], strips...)
		}
	}
	layers := make([]int, 0, len(merged))
	for layer := range merged {
		layers = append(layers, layer)
	}
	slices.Sort(layers)
	for _, layer := range layers {
		strips := merged[layer]
		slices.Sort(strips)
		for _, s := range strips {
			AssertNoError(t, ev.AddHit(tower, view, layer, s))
		}
	}
}

// NewTestDB opens a migrated SQLite database in a temporary directory and
// closes it when the test ends.
func NewTestDB(t testing.TB) *db.DB {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "latfilter.db"))
	AssertNoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}
