package l2projections

import (
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
)

// extendDown walks p toward layer 0 starting below p.Min, where prev and
// near are the strips of layers Min+1 and Min.
func (vf *viewFinder) extendDown(p *Projection, prev, near int) {
	vf.extend(p, -1, p.Min, prev, near, vf.zextend, StageExtendDown)
}

// extendUp walks p toward layer 17 starting above p.Max, where prev and
// near are the strips of layers Max-1 and Max. The gap ratios are read in
// the opposite phase from the downward walk, since the first gap above
// the seed pairs with the gap below its middle. The flight code reuses the
// downward word here, which misplaces upward predictions by up to about
// 15% of the step.
func (vf *viewFinder) extendUp(p *Projection, near, prev int) {
	vf.extend(p, +1, p.Max, prev, near, geometry.SwapHalves(vf.zextend), StageExtendUp)
	p.refreshTop()
}

// extend adds hits to p in direction dir (+1 up, -1 down) from edge, the
// outermost matched layer. zextend holds the ratio of the next gap to the
// current one in its low half and the following ratio in its high half.
//
// Each step looks one layer out when that layer has unclaimed clusters,
// otherwise two layers out. A miss one layer out is retried two layers
// out. The walk stops at the first miss two layers out or at the edge of
// the tracker.
func (vf *viewFinder) extend(p *Projection, dir, edge, prev, near int, zextend uint32, stage Stage) {
	z1, z2 := int(zextend&0xffff), int(zextend>>16)

	for {
		avail1 := vf.available(edge + dir)
		avail2 := vf.available(edge + 2*dir)
		if !avail1 && !avail2 {
			return
		}

		dx := near - prev
		pred := projectDx(near, dx, z1)
		skip, tol := 1, ToleranceExtend1
		if !avail1 {
			skip, tol = 2, ToleranceExtend2
			pred += dx
		}

		target := edge + skip*dir
		m := findMatch(&vf.hits[target], vf.hits[target].Avail, pred, tol)
		if !m.Found && skip == 1 && avail2 {
			skip, tol = 2, ToleranceExtend2
			pred += dx
			target = edge + 2*dir
			m = findMatch(&vf.hits[target], vf.hits[target].Avail, pred, tol)
		}
		if !m.Found {
			return
		}
		vf.report(target, stage, pred, m.Strip, tol)

		vf.hits[target].Claim(m.Index)
		p.addHit(target, m.Strip, m.Index)
		if skip == 1 {
			z1, z2 = z2, z1
			prev, near = near, m.Strip
		} else {
			interp := projectMid(near, m.Strip, z1)
			p.addInterpolated(target-dir, interp)
			prev, near = interp, m.Strip
		}
		edge = target
	}
}

func (vf *viewFinder) available(layer int) bool {
	return layer >= 0 && layer < l1hits.NumLayers && vf.hits[layer].Available()
}
