package geometry

import (
	"errors"
	"fmt"
	"slices"
)

// ID selects a built-in geometry.
type ID int

const (
	IDDefault ID = 0
	IDInitial ID = 1
	IDV1R13P0 ID = 2

	// IDCurrent is what IDDefault resolves to.
	IDCurrent = IDV1R13P0
)

func (id ID) String() string {
	switch id {
	case IDDefault:
		return "default"
	case IDInitial:
		return "initial"
	case IDV1R13P0:
		return "v1r13p0"
	}
	return fmt.Sprintf("ID(%d)", int(id))
}

// ErrNotFound is returned by Locate for an unknown id.
var ErrNotFound = errors.New("geometry not found")

var registry = map[ID]*Geometry{}

func init() {
	register(IDInitial, InitialLayout())
	register(IDV1R13P0, V1R13P0Layout())
}

func register(id ID, l Layout) {
	g := Build(id, l)
	registry[id] = &g
}

// Locate returns the geometry registered under id.
func Locate(id ID) (*Geometry, error) {
	if id == IDDefault {
		id = IDCurrent
	}
	g, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, int(id))
	}
	return g, nil
}

// IDs lists the registered geometries in ascending order.
func IDs() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
