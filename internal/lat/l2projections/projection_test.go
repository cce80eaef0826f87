package l2projections

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

func seeded() Projection {
	var p Projection
	p.seed(3, l1hits.Y, 10, 500, 480, 460, [3]int{0, 1, 2})
	return p
}

func TestProjection_Seed(t *testing.T) {
	p := seeded()
	require.NoError(t, p.Validate())
	assert.Equal(t, 500, p.Intercept)
	assert.Equal(t, 20, p.Slope)
	assert.Equal(t, []int{460, 480, 500}, p.Span())
	assert.True(t, p.Matched(9))
	assert.False(t, p.Matched(11))
	assert.False(t, p.Matched(-1))
}

func TestProjection_Extended(t *testing.T) {
	p := seeded()
	p.addInterpolated(11, 520)
	p.addHit(12, 540, 4)
	p.refreshTop()
	p.addHit(6, 440, 0)
	require.Error(t, p.Validate(), "layer 7 is neither matched nor interpolated")

	p.addInterpolated(7, 450)
	require.NoError(t, p.Validate())
	assert.Equal(t, 6, p.Min)
	assert.Equal(t, 12, p.Max)
	assert.Equal(t, 5, p.NHits)
	assert.Equal(t, 540, p.Intercept)
	assert.Equal(t, 20, p.Slope)
	assert.Equal(t, "twr 3 Y  6..12 n= 5 int=  540 slope=   20 [540 (520) 500 480 460 (450) 440]", p.String())
}

func TestProjection_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Projection)
	}{
		{"short", func(p *Projection) { p.NHits = 2 }},
		{"count mismatch", func(p *Projection) { p.NHits = 4 }},
		{"min mismatch", func(p *Projection) { p.Min = 7 }},
		{"max mismatch", func(p *Projection) { p.Max = 11 }},
		{"overlap", func(p *Projection) { p.Interpolated = 1 << 9 }},
		{"stale slope", func(p *Projection) { p.Slope = 0 }},
		{"stale intercept", func(p *Projection) { p.Intercept = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := seeded()
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestCollection_ValidateDetectsDoubleClaim(t *testing.T) {
	c := NewCollection()
	for i := 0; i < 2; i++ {
		p, err := c.reserve()
		require.NoError(t, err)
		p.seed(0, l1hits.X, 10, 500, 500, 500, [3]int{0, 0, 0})
	}
	c.Dir[0] = TowerDir{Idx: 0, XCnt: 2}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claimed twice")
}

func TestCollection_ValidateDirectory(t *testing.T) {
	c := NewCollection()
	p, err := c.reserve()
	require.NoError(t, err)
	p.seed(2, l1hits.X, 5, 10, 10, 10, [3]int{0, 0, 0})
	assert.Error(t, c.Validate(), "projection outside any directory entry")

	c.Dir[2] = TowerDir{Idx: 0, YCnt: 1}
	assert.Error(t, c.Validate(), "X projection filed as Y")

	c.Dir[2] = TowerDir{Idx: 0, XCnt: 1}
	assert.NoError(t, c.Validate())
}

func TestCollection_ResetAndDump(t *testing.T) {
	c := NewCollection()
	p, err := c.reserve()
	require.NoError(t, err)
	p.seed(1, l1hits.X, 4, 30, 20, 10, [3]int{0, 0, 0})
	c.Dir[1] = TowerDir{Idx: 0, XCnt: 1}
	c.TwrMsk = 0x4000

	var buf bytes.Buffer
	require.NoError(t, c.Dump(&buf))
	assert.Equal(t, "tower 1: 1 X, 0 Y\n  twr 1 X  2.. 4 n= 3 int=   30 slope=   10 [30 20 10]\n", buf.String())

	c.Reset()
	assert.Zero(t, c.Cur)
	assert.Zero(t, c.TwrMsk)
	assert.Empty(t, c.All())
	x, y := c.Tower(1)
	assert.Empty(t, x)
	assert.Empty(t, y)
}
