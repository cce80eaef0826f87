package l3veto

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/l2projections"
)

func TestSkirtTemplates(t *testing.T) {
	assert.Equal(t, uint32(0x29), uint32(skirtXLeft))
	assert.Equal(t, uint32(0x42), uint32(skirtXMid))
	assert.Equal(t, uint32(0x94), uint32(skirtXRight))
	assert.Equal(t, uint32(0x07), uint32(skirtYLeft))
	assert.Equal(t, uint32(0x18), uint32(skirtYMid))
	assert.Equal(t, uint32(0xe0), uint32(skirtYRight))
}

func TestRegionMask(t *testing.T) {
	edges := [4]int{-3685, -3195, 3195, 3685}
	tmpl := [3]uint32{1, 2, 4}
	tests := []struct {
		pos  int
		want uint32
	}{
		{-3686, 0},
		{-3685, 0},
		{-3684, 1},
		{-3195, 1},
		{-3194, 2},
		{3194, 2},
		{3195, 4},
		{3684, 4},
		{3685, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, regionMask(tt.pos, &edges, &tmpl), "pos %d", tt.pos)
	}
}

func TestSkirtProject(t *testing.T) {
	g := flight(t)
	tests := []struct {
		name  string
		tower int
		x, y  l2projections.Projection
		want  uint32
	}{
		// Tower 0 sits at -3255 in both views.
		{"corner", 0, line(l1hits.X, 2, 50, 0), line(l1hits.Y, 2, 50, 0), SkirtYMXM},
		{"on inner edge", 0, line(l1hits.X, 2, 60, 0), line(l1hits.Y, 2, 50, 0), SkirtYMXM},
		{"x centre", 0, line(l1hits.X, 2, 100, 0), line(l1hits.Y, 2, 50, 0), SkirtYMXC},
		{"slope pulls outward", 0, line(l1hits.X, 2, 80, 10), line(l1hits.Y, 2, 50, 0), SkirtYMXM},
		{"outside", 0, line(l1hits.X, 2, -500, 0), line(l1hits.Y, 2, 50, 0), 0},
		{"over calorimeter", 5, line(l1hits.X, 2, 700, 0), line(l1hits.Y, 2, 700, 0), 0},
		// Tower 3 sits at 1673 in X.
		{"x right", 3, line(l1hits.X, 2, 1600, 0), line(l1hits.Y, 2, 50, 0), SkirtYMXP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := []l2projections.Projection{tt.x}
			y := []l2projections.Projection{tt.y}
			assert.Equal(t, tt.want, SkirtProject(g, tt.tower, x, y))
			assert.Equal(t, tt.want, x[0].SkirtMask&y[0].SkirtMask)
		})
	}
}

func TestSkirtProject_NeedsBothViews(t *testing.T) {
	g := flight(t)
	x := []l2projections.Projection{line(l1hits.X, 2, 50, 0)}
	assert.Zero(t, SkirtProject(g, 0, x, nil))
	assert.Equal(t, uint32(skirtXLeft), x[0].SkirtMask)
}

func TestSkirtProject_OrderIndependent(t *testing.T) {
	g := flight(t)
	xs := []l2projections.Projection{
		line(l1hits.X, 2, 50, 0),
		line(l1hits.X, 2, 100, 0),
		line(l1hits.X, 2, -500, 0),
	}
	ys := []l2projections.Projection{
		line(l1hits.Y, 2, 50, 0),
		line(l1hits.Y, 2, 700, 0),
	}

	fwdX, fwdY := slices.Clone(xs), slices.Clone(ys)
	want := SkirtProject(g, 0, fwdX, fwdY)
	assert.Equal(t, SkirtYMXM|SkirtYMXC|SkirtYCXM, want)

	revX, revY := slices.Clone(xs), slices.Clone(ys)
	slices.Reverse(revX)
	slices.Reverse(revY)
	assert.Equal(t, want, SkirtProject(g, 0, revX, revY))
	assert.Equal(t, want, SkirtProject(g, 0, slices.Clone(revX), slices.Clone(fwdY)))

	for i := range fwdX {
		assert.Equal(t, fwdX[i].SkirtMask, revX[len(revX)-1-i].SkirtMask, "x %d", i)
	}
	for i := range fwdY {
		assert.Equal(t, fwdY[i].SkirtMask, revY[len(revY)-1-i].SkirtMask, "y %d", i)
	}
}
