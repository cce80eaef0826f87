package l2projections

import (
	"fmt"
	"math/bits"

	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/monitoring"
)

// Stage names the step of the search that produced a match.
type Stage int

const (
	StageSeed Stage = iota
	StageImproveTop
	StageExtendUp
	StageExtendDown
)

func (s Stage) String() string {
	switch s {
	case StageSeed:
		return "seed"
	case StageImproveTop:
		return "improve-top"
	case StageExtendUp:
		return "extend-up"
	case StageExtendDown:
		return "extend-down"
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Match describes one accepted cluster.
type Match struct {
	Tower      int
	View       l1hits.View
	Layer      int
	Stage      Stage
	Prediction int
	Strip      int
	Tolerance  int
}

// Residual is the distance of the accepted strip from the prediction.
func (m Match) Residual() int {
	return m.Strip - m.Prediction
}

// Finder runs the projection search over the towers of an event.
type Finder struct {
	Geo *geometry.Geometry

	// OnMatch, when set, is called for every accepted cluster.
	OnMatch func(Match)
}

// NewFinder returns a Finder using geo.
func NewFinder(geo *geometry.Geometry) *Finder {
	return &Finder{Geo: geo}
}

// FindTower finds the projections of one tower, X view first, appending
// them to c and filling c.Dir[tower]. Clusters are claimed in t as they
// are used.
func (f *Finder) FindTower(c *Collection, tower int, t *l1hits.Tower) (xCnt, yCnt int, err error) {
	if tower < 0 || tower >= l1hits.NumTowers {
		return 0, 0, fmt.Errorf("%w: tower %d", l1hits.ErrInvalidLayer, tower)
	}
	c.Dir[tower] = TowerDir{Idx: c.Cur}

	xCnt, err = f.findView(c, tower, t, l1hits.X)
	c.Dir[tower].XCnt = xCnt
	if err != nil {
		return xCnt, 0, fmt.Errorf("tower %d X: %w", tower, err)
	}
	yCnt, err = f.findView(c, tower, t, l1hits.Y)
	c.Dir[tower].YCnt = yCnt
	if err != nil {
		return xCnt, yCnt, fmt.Errorf("tower %d Y: %w", tower, err)
	}
	if xCnt+yCnt > 0 {
		c.TwrMsk |= 0x8000 >> uint(tower)
	}
	return xCnt, yCnt, nil
}

// viewFinder carries the state of the search in one view of one tower.
type viewFinder struct {
	f       *Finder
	c       *Collection
	tower   int
	view    l1hits.View
	hits    *[l1hits.NumLayers]l1hits.LayerHitSet
	zfind   int
	zextend uint32
}

func (f *Finder) findView(c *Collection, tower int, t *l1hits.Tower, view l1hits.View) (int, error) {
	vf := viewFinder{
		f:     f,
		c:     c,
		tower: tower,
		view:  view,
		hits:  &t.Layers[view],
	}

	cnt := 0
	layers := t.LayerMask(view)
	for {
		seeds := layers & (layers << 1) & (layers << 2)
		if seeds == 0 {
			return cnt, nil
		}
		top := 31 - bits.LeadingZeros32(seeds)
		vf.zfind, vf.zextend = f.Geo.Factors(int(view), top)

		n, err := vf.findProjection(top)
		cnt += n
		if err != nil {
			return cnt, err
		}
		if n > 0 && monitoring.TraceEnabled() {
			monitoring.Tracef("tower %x %s top %2d: %d projections", tower, view, top, n)
		}
		layers = (layers &^ (1 << uint(top))) & t.LayerMask(view)
	}
}

func (vf *viewFinder) report(layer int, stage Stage, prediction, strip, tolerance int) {
	if vf.f.OnMatch == nil {
		return
	}
	vf.f.OnMatch(Match{
		Tower:      vf.tower,
		View:       vf.view,
		Layer:      layer,
		Stage:      stage,
		Prediction: prediction,
		Strip:      strip,
		Tolerance:  tolerance,
	})
}
