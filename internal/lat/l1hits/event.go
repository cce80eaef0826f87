package l1hits

import "fmt"

// AcdHits lists the struck ACD tiles of an event.
//
// Top holds the 5x5 top tiles, bit 5*row+col. X carries the -X face rows in
// its low 16 bits and the +X face in the high 16 bits; Y likewise for the
// -Y and +Y faces.
type AcdHits struct {
	Top uint32
	X   uint32
	Y   uint32
}

// Event is the unpacked input of one trigger.
type Event struct {
	Seq       uint64
	EnergyMeV int
	Acd       AcdHits
	Towers    [NumTowers]Tower
}

// TowerMask returns bit 0x8000>>t for every tower t holding clusters.
func (e *Event) TowerMask() uint16 {
	var m uint16
	for t := range e.Towers {
		if e.Towers[t].HasHits() {
			m |= 0x8000 >> uint(t)
		}
	}
	return m
}

// AddHit adds a cluster to one tower layer.
func (e *Event) AddHit(tower int, v View, layer, strip int) error {
	if tower < 0 || tower >= NumTowers {
		return fmt.Errorf("%w: tower %d", ErrInvalidLayer, tower)
	}
	if err := e.Towers[tower].AddHit(v, layer, strip); err != nil {
		return fmt.Errorf("tower %d: %w", tower, err)
	}
	return nil
}

// Reset makes every cluster available again so the event can be replayed.
func (e *Event) Reset() {
	for t := range e.Towers {
		e.Towers[t].Reset()
	}
}

// Clear empties the event for reuse.
func (e *Event) Clear() {
	e.Seq = 0
	e.EnergyMeV = 0
	e.Acd = AcdHits{}
	for t := range e.Towers {
		e.Towers[t].Clear()
	}
}

// Validate checks every tower of the event.
func (e *Event) Validate() error {
	for t := range e.Towers {
		if err := e.Towers[t].Validate(); err != nil {
			return fmt.Errorf("tower %d: %w", t, err)
		}
	}
	return nil
}
