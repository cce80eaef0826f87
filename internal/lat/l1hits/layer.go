package l1hits

import (
	"errors"
	"fmt"
)

var (
	// ErrCapacityExceeded is returned when a layer would hold more than
	// MaxHits clusters.
	ErrCapacityExceeded = errors.New("layer cluster capacity exceeded")

	// ErrInvalidLayer is returned for layer, view or tower numbers outside
	// the tracker.
	ErrInvalidLayer = errors.New("invalid tracker layer")

	// ErrInvalidStrip is returned for strip addresses outside
	// [0, MaxStrip).
	ErrInvalidStrip = errors.New("invalid strip address")
)

// MaxStrip bounds the strip address of a cluster within one tower layer.
const MaxStrip = 2048

// LayerHitSet holds the clusters of one tracker layer of one view.
// Strips[:N] is kept in non-decreasing order whatever order clusters are
// added in.
type LayerHitSet struct {
	Strips [MaxHits]int
	N      int
	Avail  Set
}

// Add inserts a cluster in strip order and marks it available. Slots at
// or above the insertion point move up by one, claims included.
func (l *LayerHitSet) Add(strip int) error {
	if l.N >= MaxHits {
		return fmt.Errorf("%w: %d clusters already present", ErrCapacityExceeded, l.N)
	}
	i := l.N
	for i > 0 && l.Strips[i-1] > strip {
		l.Strips[i] = l.Strips[i-1]
		i--
	}
	l.Strips[i] = strip

	below := Set(1)<<uint(i) - 1
	l.Avail = l.Avail&below | (l.Avail&^below)<<1
	l.Avail.Add(i)
	l.N++
	return nil
}

// Claim marks slot i as used by a projection.
func (l *LayerHitSet) Claim(i int) {
	l.Avail.Clear(i)
}

// Available reports whether any cluster is still unclaimed.
func (l *LayerHitSet) Available() bool {
	return !l.Avail.IsEmpty()
}

// Reset makes every stored cluster available again.
func (l *LayerHitSet) Reset() {
	l.Avail = firstN(l.N)
}

// Clear drops every cluster.
func (l *LayerHitSet) Clear() {
	l.N = 0
	l.Avail = 0
}

// Validate checks that the strips are ordered and that no slot beyond N
// is marked available.
func (l *LayerHitSet) Validate() error {
	if l.N < 0 || l.N > MaxHits {
		return fmt.Errorf("%w: cluster count %d", ErrCapacityExceeded, l.N)
	}
	if l.Avail&^firstN(l.N) != 0 {
		return fmt.Errorf("availability mask %#08x has slots beyond %d clusters", l.Avail.Uint32(), l.N)
	}
	for i := 1; i < l.N; i++ {
		if l.Strips[i] < l.Strips[i-1] {
			return fmt.Errorf("strip %d in slot %d is below strip %d in slot %d", l.Strips[i], i, l.Strips[i-1], i-1)
		}
	}
	return nil
}
