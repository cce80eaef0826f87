package l2projections

import (
	"fmt"
	"math/bits"
	"strings"

	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

// MinHits is the size of a seed.
const MinHits = 3

// Projection is a candidate track in one view of one tower.
//
// Hits is indexed by absolute layer number and is defined for every layer
// in [Min, Max]: layers in Layers carry a matched cluster, layers in
// Interpolated carry a strip synthesised across a skipped layer.
// Intercept is the strip at Max and Slope the difference between the
// strips at Max and Max-1.
type Projection struct {
	Tower int
	View  l1hits.View

	Intercept int
	Slope     int
	Min       int
	Max       int
	NHits     int

	Layers       uint32
	Interpolated uint32
	Hits         [l1hits.NumLayers]int
	// Slots records the cluster slot matched in each layer of Layers.
	Slots [l1hits.NumLayers]uint8

	AcdTopMask uint32
	AcdXMask   uint32
	AcdYMask   uint32
	SkirtMask  uint32
}

// seed initialises p from three hits with top in layer top.
func (p *Projection) seed(tower int, view l1hits.View, top int, topStrip, midStrip, botStrip int, slots [3]int) {
	*p = Projection{
		Tower:     tower,
		View:      view,
		Intercept: topStrip,
		Slope:     topStrip - midStrip,
		Min:       top - 2,
		Max:       top,
		NHits:     MinHits,
		Layers:    7 << uint(top-2),
	}
	p.Hits[top] = topStrip
	p.Hits[top-1] = midStrip
	p.Hits[top-2] = botStrip
	p.Slots[top] = uint8(slots[0])
	p.Slots[top-1] = uint8(slots[1])
	p.Slots[top-2] = uint8(slots[2])
}

func (p *Projection) addHit(layer, strip, slot int) {
	p.Hits[layer] = strip
	p.Slots[layer] = uint8(slot)
	p.Layers |= 1 << uint(layer)
	p.NHits++
	if layer < p.Min {
		p.Min = layer
	}
	if layer > p.Max {
		p.Max = layer
	}
}

func (p *Projection) addInterpolated(layer, strip int) {
	p.Hits[layer] = strip
	p.Interpolated |= 1 << uint(layer)
}

// refreshTop recomputes the line parameters after the top has moved.
func (p *Projection) refreshTop() {
	p.Intercept = p.Hits[p.Max]
	p.Slope = p.Hits[p.Max] - p.Hits[p.Max-1]
}

// Span returns the strips of layers Min..Max, lowest layer first.
func (p *Projection) Span() []int {
	return p.Hits[p.Min : p.Max+1]
}

// Matched reports whether layer holds a matched cluster.
func (p *Projection) Matched(layer int) bool {
	return layer >= 0 && layer < l1hits.NumLayers && p.Layers&(1<<uint(layer)) != 0
}

// Validate checks the internal consistency of the projection.
func (p *Projection) Validate() error {
	if p.NHits < MinHits {
		return fmt.Errorf("nhits %d below %d", p.NHits, MinHits)
	}
	if p.Layers>>l1hits.NumLayers != 0 {
		return fmt.Errorf("layer mask %#x outside the tracker", p.Layers)
	}
	if n := bits.OnesCount32(p.Layers); n != p.NHits {
		return fmt.Errorf("layer mask %#05x has %d layers, nhits %d", p.Layers, n, p.NHits)
	}
	if lo := bits.TrailingZeros32(p.Layers); lo != p.Min {
		return fmt.Errorf("lowest layer %d, min %d", lo, p.Min)
	}
	if hi := 31 - bits.LeadingZeros32(p.Layers); hi != p.Max {
		return fmt.Errorf("highest layer %d, max %d", hi, p.Max)
	}
	if p.Layers&p.Interpolated != 0 {
		return fmt.Errorf("layers %#05x both matched and interpolated", p.Layers&p.Interpolated)
	}
	span := uint32(1)<<uint(p.Max+1) - uint32(1)<<uint(p.Min)
	if p.Layers|p.Interpolated != span {
		return fmt.Errorf("layers %#05x leave gaps in [%d,%d]", p.Layers|p.Interpolated, p.Min, p.Max)
	}
	if p.Intercept != p.Hits[p.Max] || p.Slope != p.Hits[p.Max]-p.Hits[p.Max-1] {
		return fmt.Errorf("intercept %d slope %d do not match top hits", p.Intercept, p.Slope)
	}
	return nil
}

func (p *Projection) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "twr %x %s %2d..%2d n=%2d int=%5d slope=%5d [",
		p.Tower, p.View, p.Min, p.Max, p.NHits, p.Intercept, p.Slope)
	for layer := p.Max; layer >= p.Min; layer-- {
		if layer != p.Max {
			b.WriteByte(' ')
		}
		if p.Interpolated&(1<<uint(layer)) != 0 {
			fmt.Fprintf(&b, "(%d)", p.Hits[layer])
		} else {
			fmt.Fprintf(&b, "%d", p.Hits[layer])
		}
	}
	b.WriteByte(']')
	return b.String()
}
