package l1hits

import "fmt"

const (
	// NumLayers is the number of tracker layers per view, 0 nearest the
	// calorimeter.
	NumLayers = 18

	// NumTowers is the number of towers in the 4x4 grid.
	NumTowers = 16
)

// View selects the X or Y measuring planes of a tower.
type View int

const (
	X View = iota
	Y
)

func (v View) String() string {
	switch v {
	case X:
		return "X"
	case Y:
		return "Y"
	}
	return fmt.Sprintf("View(%d)", int(v))
}

// ParseView maps "x"/"X"/"y"/"Y" to a View.
func ParseView(s string) (View, error) {
	switch s {
	case "x", "X":
		return X, nil
	case "y", "Y":
		return Y, nil
	}
	return 0, fmt.Errorf("%w: unknown view %q", ErrInvalidLayer, s)
}

// Tower holds the layers of both views of one tower.
type Tower struct {
	Layers [2][NumLayers]LayerHitSet
}

// Layer returns the hit set of one layer.
func (t *Tower) Layer(v View, layer int) *LayerHitSet {
	return &t.Layers[v][layer]
}

// AddHit adds a cluster to a layer after validating the address.
func (t *Tower) AddHit(v View, layer, strip int) error {
	if v != X && v != Y {
		return fmt.Errorf("%w: view %d", ErrInvalidLayer, int(v))
	}
	if layer < 0 || layer >= NumLayers {
		return fmt.Errorf("%w: layer %d", ErrInvalidLayer, layer)
	}
	if strip < 0 || strip >= MaxStrip {
		return fmt.Errorf("%s layer %d: %w: %d", v, layer, ErrInvalidStrip, strip)
	}
	if err := t.Layers[v][layer].Add(strip); err != nil {
		return fmt.Errorf("%s layer %d: %w", v, layer, err)
	}
	return nil
}

// LayerMask returns a mask with bit L set when layer L of the view has
// unclaimed clusters.
func (t *Tower) LayerMask(v View) uint32 {
	var m uint32
	for l := range t.Layers[v] {
		if t.Layers[v][l].Available() {
			m |= 1 << uint(l)
		}
	}
	return m
}

// HasHits reports whether any layer of either view holds a cluster.
func (t *Tower) HasHits() bool {
	for v := range t.Layers {
		for l := range t.Layers[v] {
			if t.Layers[v][l].N > 0 {
				return true
			}
		}
	}
	return false
}

// Reset makes every cluster of the tower available again.
func (t *Tower) Reset() {
	for v := range t.Layers {
		for l := range t.Layers[v] {
			t.Layers[v][l].Reset()
		}
	}
}

// Clear drops every cluster of the tower.
func (t *Tower) Clear() {
	for v := range t.Layers {
		for l := range t.Layers[v] {
			t.Layers[v][l].Clear()
		}
	}
}

// Validate checks every layer of the tower.
func (t *Tower) Validate() error {
	for v := range t.Layers {
		for l := range t.Layers[v] {
			if err := t.Layers[v][l].Validate(); err != nil {
				return fmt.Errorf("%s layer %d: %w", View(v), l, err)
			}
		}
	}
	return nil
}
