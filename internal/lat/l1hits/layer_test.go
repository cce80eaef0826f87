package l1hits

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerHitSet_AddAndClaim(t *testing.T) {
	var l LayerHitSet
	require.NoError(t, l.Add(100))
	require.NoError(t, l.Add(250))
	require.NoError(t, l.Add(900))

	assert.Equal(t, 3, l.N)
	assert.Equal(t, 3, l.Avail.Count())
	assert.True(t, l.Available())

	l.Claim(1)
	assert.False(t, l.Avail.Test(1))
	assert.Equal(t, 250, l.Strips[1], "claiming keeps the strip")

	l.Claim(0)
	l.Claim(2)
	assert.False(t, l.Available())

	l.Reset()
	assert.Equal(t, 3, l.Avail.Count())
	require.NoError(t, l.Validate())
}

func TestLayerHitSet_AddKeepsStripOrder(t *testing.T) {
	tests := []struct {
		name  string
		order []int
	}{
		{"ascending", []int{100, 250, 900}},
		{"descending", []int{900, 250, 100}},
		{"middle last", []int{100, 900, 250}},
		{"duplicate", []int{250, 100, 250}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l LayerHitSet
			for _, s := range tt.order {
				require.NoError(t, l.Add(s))
			}
			want := slices.Clone(tt.order)
			slices.Sort(want)
			assert.Equal(t, want, l.Strips[:l.N])
			assert.Equal(t, firstN(l.N), l.Avail)
			require.NoError(t, l.Validate())
		})
	}
}

func TestLayerHitSet_AddShiftsClaims(t *testing.T) {
	var l LayerHitSet
	require.NoError(t, l.Add(100))
	require.NoError(t, l.Add(900))
	l.Claim(1)

	require.NoError(t, l.Add(250))
	assert.Equal(t, []int{100, 250, 900}, l.Strips[:l.N])
	assert.True(t, l.Avail.Test(0))
	assert.True(t, l.Avail.Test(1), "new cluster is available")
	assert.False(t, l.Avail.Test(2), "claim follows strip 900")
}

func TestLayerHitSet_ValidateRejectsUnordered(t *testing.T) {
	var l LayerHitSet
	require.NoError(t, l.Add(100))
	require.NoError(t, l.Add(250))
	l.Strips[0] = 300
	assert.Error(t, l.Validate())
}

func TestLayerHitSet_CapacityExceeded(t *testing.T) {
	var l LayerHitSet
	for i := 0; i < MaxHits; i++ {
		require.NoError(t, l.Add(i*10))
	}
	err := l.Add(9999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCapacityExceeded))
	assert.Equal(t, MaxHits, l.N)
	assert.Equal(t, MaxHits, l.Avail.Count())
}

func TestLayerHitSet_ValidateRejectsStrayBits(t *testing.T) {
	var l LayerHitSet
	require.NoError(t, l.Add(5))
	l.Avail.Add(4)
	assert.Error(t, l.Validate())
}

func TestTower_AddHitAndMask(t *testing.T) {
	var tw Tower
	require.NoError(t, tw.AddHit(X, 10, 400))
	require.NoError(t, tw.AddHit(X, 9, 410))
	require.NoError(t, tw.AddHit(Y, 0, 12))

	assert.Equal(t, uint32(1<<10|1<<9), tw.LayerMask(X))
	assert.Equal(t, uint32(1), tw.LayerMask(Y))
	assert.True(t, tw.HasHits())

	tw.Layer(X, 9).Claim(0)
	assert.Equal(t, uint32(1<<10), tw.LayerMask(X))

	tw.Reset()
	assert.Equal(t, uint32(1<<10|1<<9), tw.LayerMask(X))

	tw.Clear()
	assert.False(t, tw.HasHits())
}

func TestTower_AddHitInvalid(t *testing.T) {
	var tw Tower
	tests := []struct {
		name  string
		view  View
		layer int
	}{
		{"negative layer", X, -1},
		{"layer past top", Y, NumLayers},
		{"bad view", View(2), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tw.AddHit(tt.view, tt.layer, 1)
			assert.True(t, errors.Is(err, ErrInvalidLayer), "got %v", err)
		})
	}
}

func TestTower_AddHitInvalidStrip(t *testing.T) {
	var tw Tower
	for _, strip := range []int{-1, -5, MaxStrip, 1 << 20} {
		err := tw.AddHit(X, 4, strip)
		assert.True(t, errors.Is(err, ErrInvalidStrip), "strip %d: got %v", strip, err)
	}
	assert.False(t, tw.HasHits())

	require.NoError(t, tw.AddHit(X, 4, 0))
	require.NoError(t, tw.AddHit(X, 4, MaxStrip-1))
}

func TestEvent_TowerMask(t *testing.T) {
	var ev Event
	require.NoError(t, ev.AddHit(0, X, 3, 10))
	require.NoError(t, ev.AddHit(15, Y, 17, 10))
	assert.Equal(t, uint16(0x8001), ev.TowerMask())

	assert.True(t, errors.Is(ev.AddHit(16, X, 0, 1), ErrInvalidLayer))

	ev.Clear()
	assert.Equal(t, uint16(0), ev.TowerMask())
}

func TestParseView(t *testing.T) {
	v, err := ParseView("y")
	require.NoError(t, err)
	assert.Equal(t, Y, v)
	assert.Equal(t, "Y", v.String())

	_, err = ParseView("z")
	assert.Error(t, err)
	assert.Equal(t, "View(7)", View(7).String())
}
