package l2projections

import (
	"errors"
	"fmt"
	"io"

	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

// Capacity is the number of projections one event can hold.
const Capacity = 1000

// ErrCapacityExceeded is returned when an event needs more than Capacity
// projections.
var ErrCapacityExceeded = errors.New("projection capacity exceeded")

// TowerDir locates the projections of one tower: XCnt X projections start
// at Idx and are followed by YCnt Y projections.
type TowerDir struct {
	Idx  int
	XCnt int
	YCnt int
}

// Collection is the per-event projection arena.
type Collection struct {
	Prjs   [Capacity]Projection
	Cur    int
	Dir    [l1hits.NumTowers]TowerDir
	TwrMsk uint16
}

// NewCollection returns an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Reset empties the collection without releasing storage.
func (c *Collection) Reset() {
	c.Cur = 0
	c.Dir = [l1hits.NumTowers]TowerDir{}
	c.TwrMsk = 0
}

func (c *Collection) reserve() (*Projection, error) {
	if c.Cur >= Capacity {
		return nil, fmt.Errorf("%w: %d in use", ErrCapacityExceeded, c.Cur)
	}
	p := &c.Prjs[c.Cur]
	c.Cur++
	return p, nil
}

// All returns every stored projection in creation order.
func (c *Collection) All() []Projection {
	return c.Prjs[:c.Cur]
}

// Tower returns the X and Y projections of a tower.
func (c *Collection) Tower(tower int) (x, y []Projection) {
	d := c.Dir[tower]
	x = c.Prjs[d.Idx : d.Idx+d.XCnt]
	y = c.Prjs[d.Idx+d.XCnt : d.Idx+d.XCnt+d.YCnt]
	return x, y
}

// Validate checks every projection, the directory, and that no cluster is
// claimed by two projections.
func (c *Collection) Validate() error {
	var claimed [l1hits.NumTowers][2][l1hits.NumLayers]l1hits.Set

	next := 0
	for t, d := range c.Dir {
		if d.XCnt == 0 && d.YCnt == 0 {
			continue
		}
		if d.Idx != next {
			return fmt.Errorf("tower %d: directory starts at %d, expected %d", t, d.Idx, next)
		}
		next += d.XCnt + d.YCnt
		x, y := c.Tower(t)
		for i := range x {
			if x[i].View != l1hits.X || x[i].Tower != t {
				return fmt.Errorf("tower %d: X entry %d is %s of tower %d", t, i, x[i].View, x[i].Tower)
			}
		}
		for i := range y {
			if y[i].View != l1hits.Y || y[i].Tower != t {
				return fmt.Errorf("tower %d: Y entry %d is %s of tower %d", t, i, y[i].View, y[i].Tower)
			}
		}
	}
	if next != c.Cur {
		return fmt.Errorf("directory covers %d projections, collection holds %d", next, c.Cur)
	}

	for i := range c.All() {
		p := &c.Prjs[i]
		if err := p.Validate(); err != nil {
			return fmt.Errorf("projection %d (%s): %w", i, p, err)
		}
		for layer := p.Min; layer <= p.Max; layer++ {
			if !p.Matched(layer) {
				continue
			}
			s := &claimed[p.Tower][p.View][layer]
			slot := int(p.Slots[layer])
			if s.Test(slot) {
				return fmt.Errorf("tower %d %s layer %d slot %d claimed twice", p.Tower, p.View, layer, slot)
			}
			s.Add(slot)
		}
	}
	return nil
}

// Dump writes one line per projection, grouped by tower.
func (c *Collection) Dump(w io.Writer) error {
	for t, d := range c.Dir {
		if d.XCnt == 0 && d.YCnt == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "tower %x: %d X, %d Y\n", t, d.XCnt, d.YCnt); err != nil {
			return err
		}
		x, y := c.Tower(t)
		for _, views := range [][]Projection{x, y} {
			for i := range views {
				if _, err := fmt.Fprintf(w, "  %s\n", &views[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
