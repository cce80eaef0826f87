package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

func TestAssertHelpers(t *testing.T) {
	AssertNoError(t, nil)
	AssertError(t, errors.New("boom"))
}

func TestLayers(t *testing.T) {
	assert.Equal(t, []int{3, 4, 6}, Layers(3, 6, 5))
	assert.Empty(t, Layers(5, 4))
}

func TestTrack(t *testing.T) {
	g, err := geometry.Locate(geometry.IDCurrent)
	require.NoError(t, err)

	hits := Track(g, l1hits.X, 100, 0, 0, 17)
	assert.Equal(t, map[int][]int{0: {100}, 17: {100}}, hits)

	hits = Track(g, l1hits.Y, 0, 1, 0, 1)
	assert.Equal(t, []int{0}, hits[0])
	assert.Equal(t, []int{g.Z[l1hits.Y][1] - g.Z[l1hits.Y][0]}, hits[1])
}

func TestFill(t *testing.T) {
	var ev l1hits.Event
	Fill(t, &ev, 3, l1hits.Y, Vertical(900, 4, 5), Vertical(100, 5))

	l5 := ev.Towers[3].Layer(l1hits.Y, 5)
	assert.Equal(t, 2, l5.N)
	assert.Equal(t, []int{100, 900}, l5.Strips[:l5.N])
	assert.Equal(t, uint16(0x8000>>3), ev.TowerMask())
}

func TestNewTestDB(t *testing.T) {
	d := NewTestDB(t)
	require.NoError(t, d.Ping())
}
