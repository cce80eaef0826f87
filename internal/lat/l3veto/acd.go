package l3veto

import (
	"fmt"

	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l1hits"
	"github.com/banshee-data/latfilter/internal/lat/l2projections"
)

// Face identifies an ACD face, or the skip-one-tower variant of a side
// face.
type Face int

const (
	FaceXM Face = iota
	FaceXP
	FaceYM
	FaceYP
	FaceTop
	FaceXMS
	FaceXPS
	FaceYMS
	FaceYPS
)

var faceNames = [...]string{"X-", "X+", "Y-", "Y+", "TOP", "X-S", "X+S", "Y-S", "Y+S"}

func (f Face) String() string {
	if f >= 0 && int(f) < len(faceNames) {
		return faceNames[f]
	}
	return fmt.Sprintf("Face(%d)", int(f))
}

// Bit returns the dispatch bit of the face.
func (f Face) Bit() uint32 {
	return 1 << uint(f)
}

const (
	xFaces = 1<<FaceXM | 1<<FaceXP | 1<<FaceXMS | 1<<FaceXPS
	yFaces = 1<<FaceYM | 1<<FaceYP | 1<<FaceYMS | 1<<FaceYPS

	// topTemplateX covers column 0 of the 5x5 top tiles, topTemplateY
	// row 0.
	topTemplateX = 1<<20 | 1<<15 | 1<<10 | 1<<5 | 1<<0
	topTemplateY = 0x1f

	// MinTopLayer is the lowest top layer projected to the top face.
	MinTopLayer = 8

	// minSkipDeltaXY is the strip displacement over two layers a track
	// needs before it is projected across a neighbouring tower.
	minSkipDeltaXY = 2 * 1536 / 3

	coincidenceMask = 1<<28 - 1
)

// towerFaces lists the faces each tower can see. Corner towers see two
// side faces, edge towers one face and one skip variant, centre towers two
// skip variants.
var towerFaces = [l1hits.NumTowers]uint32{
	1<<FaceTop | 1<<FaceYM | 1<<FaceXM,
	1<<FaceTop | 1<<FaceYM | 1<<FaceXMS,
	1<<FaceTop | 1<<FaceYM | 1<<FaceXPS,
	1<<FaceTop | 1<<FaceYM | 1<<FaceXP,
	1<<FaceTop | 1<<FaceXM | 1<<FaceYMS,
	1<<FaceTop | 1<<FaceXMS | 1<<FaceYMS,
	1<<FaceTop | 1<<FaceXPS | 1<<FaceYMS,
	1<<FaceTop | 1<<FaceXP | 1<<FaceYMS,
	1<<FaceTop | 1<<FaceXM | 1<<FaceYPS,
	1<<FaceTop | 1<<FaceXMS | 1<<FaceYPS,
	1<<FaceTop | 1<<FaceXPS | 1<<FaceYPS,
	1<<FaceTop | 1<<FaceXP | 1<<FaceYPS,
	1<<FaceTop | 1<<FaceYP | 1<<FaceXM,
	1<<FaceTop | 1<<FaceYP | 1<<FaceXMS,
	1<<FaceTop | 1<<FaceYP | 1<<FaceXPS,
	1<<FaceTop | 1<<FaceYP | 1<<FaceXP,
}

// TowerFaces returns the dispatch bits of the faces tower can see.
func TowerFaces(tower int) uint32 {
	return towerFaces[tower&0xf]
}

// AcdProjectTemplate returns the faces worth projecting to given the
// struck tiles of an event.
func AcdProjectTemplate(acd l1hits.AcdHits) uint32 {
	var dispatch uint32
	if acd.Top != 0 {
		dispatch |= FaceTop.Bit()
	}
	if acd.X>>16 != 0 {
		dispatch |= FaceXP.Bit() | FaceXPS.Bit()
	}
	if acd.Y>>16 != 0 {
		dispatch |= FaceYP.Bit() | FaceYPS.Bit()
	}
	if acd.X&0xffff != 0 {
		dispatch |= FaceXM.Bit() | FaceXMS.Bit()
	}
	if acd.Y&0xffff != 0 {
		dispatch |= FaceYM.Bit() | FaceYMS.Bit()
	}
	return dispatch
}

// FaceOf returns the face encoded in a word returned by AcdProject.
// Skip variants are reported as their side face.
func FaceOf(word uint32) Face {
	return Face(word >> 28)
}

// Coincidence returns the tile mask encoded in a word returned by
// AcdProject.
func Coincidence(word uint32) uint32 {
	return word & coincidenceMask
}

// AcdProject projects the X and Y projections of a tower to the ACD faces
// allowed by dispatch and returns face<<28 | tiles for the first face, in
// priority order, whose projected tiles coincide with struck tiles. It
// returns 0 when nothing coincides.
func AcdProject(geo *geometry.Geometry, tower int, x, y []l2projections.Projection, dispatch uint32, acd l1hits.AcdHits) uint32 {
	dispatch &= TowerFaces(tower)
	if len(x) == 0 {
		dispatch &^= xFaces | FaceTop.Bit()
	}
	if len(y) == 0 {
		dispatch &^= yFaces | FaceTop.Bit()
	}

	xm, xp := acd.X&0xffff, acd.X>>16
	ym, yp := acd.Y&0xffff, acd.Y>>16

	checks := [...]struct {
		face   Face
		report Face
		struck uint32
	}{
		{FaceTop, FaceTop, acd.Top},
		{FaceXM, FaceXM, xm},
		{FaceXP, FaceXP, xp},
		{FaceYM, FaceYM, ym},
		{FaceYP, FaceYP, yp},
		{FaceXMS, FaceXM, xm},
		{FaceXPS, FaceXP, xp},
		{FaceYMS, FaceYM, ym},
		{FaceYPS, FaceYP, yp},
	}
	for _, c := range checks {
		if dispatch&c.face.Bit() == 0 {
			continue
		}
		var mask uint32
		switch c.face {
		case FaceTop:
			mask = projectTop(geo, tower, x, y)
		case FaceXM, FaceXP, FaceXMS, FaceXPS:
			mask = projectSides(geo, c.face, x, l1hits.X)
		default:
			mask = projectSides(geo, c.face, y, l1hits.Y)
		}
		if coincidence := mask & c.struck; coincidence != 0 {
			return uint32(c.report)<<28 | coincidence
		}
	}
	return 0
}

// projectTop returns the top tiles crossed by the extension of both an X
// and a Y projection.
func projectTop(geo *geometry.Geometry, tower int, x, y []l2projections.Projection) uint32 {
	var maskX, maskY uint32
	for i := range x {
		m := topMask(geo, tower, &x[i], topTemplateX, 1)
		x[i].AcdTopMask = m
		maskX |= m
	}
	for i := range y {
		m := topMask(geo, tower, &y[i], topTemplateY, 5)
		y[i].AcdTopMask = m
		maskY |= m
	}
	return maskX & maskY
}

func topMask(geo *geometry.Geometry, tower int, p *l2projections.Projection, template uint32, shift uint) uint32 {
	if p.Max < MinTopLayer {
		return 0
	}
	v := int(p.View)
	acd := p.Intercept + geo.Offset(v, tower) + geo.AcdTopProj[v][p.Max]*p.Slope/geometry.Scale
	return findTopMask(acd, template, shift, &geo.AcdTopEdges[v])
}

// findTopMask maps a coordinate at the top face to a row or column of
// tiles. A coordinate on an edge belongs to the tile above the edge.
func findTopMask(acd int, template uint32, shift uint, edges *[6]int) uint32 {
	if acd < edges[0] {
		return 0
	}
	mask := template
	for _, e := range edges[1:5] {
		if acd < e {
			return mask
		}
		mask <<= shift
	}
	if acd > edges[5] {
		return 0
	}
	return mask
}

// projectSides projects the projections of one view to a side face and
// records the result on each.
func projectSides(geo *geometry.Geometry, face Face, prjs []l2projections.Projection, view l1hits.View) uint32 {
	var all uint32
	for i := range prjs {
		p := &prjs[i]
		m := sideMask(geo, face, p)
		if view == l1hits.X {
			p.AcdXMask = m
		} else {
			p.AcdYMask = m
		}
		all |= m
	}
	return all
}

func sideMask(geo *geometry.Geometry, face Face, p *l2projections.Projection) uint32 {
	v := int(p.View)
	top := p.Hits[p.Max]
	z := geo.Z[v][p.Max]
	offsets := &geo.Offsets[v]

	var minus, plus int
	if v == geometry.ViewX {
		minus, plus = geo.AcdFaces[geometry.FaceXM], geo.AcdFaces[geometry.FaceXP]
	} else {
		minus, plus = geo.AcdFaces[geometry.FaceYM], geo.AcdFaces[geometry.FaceYP]
	}

	switch face {
	case FaceXM, FaceYM:
		if p.Slope >= 0 {
			return 0
		}
		dxy := top - p.Hits[p.Max-2]
		if dxy == 0 || top+dxy >= 0 {
			return 0
		}
		toFace := minus - offsets[0] - top
		return findSideMask(z+toFace*geo.AcdZNominal/dxy, &geo.AcdSideZ)

	case FaceXP, FaceYP:
		if p.Slope <= 0 {
			return 0
		}
		dxy := top - p.Hits[p.Max-2]
		if dxy == 0 || top+dxy <= geo.Width {
			return 0
		}
		toFace := plus - offsets[3] - top
		return findSideMask(z+toFace*geo.AcdZNominal/dxy, &geo.AcdSideZ)

	case FaceXMS, FaceYMS:
		dxy := p.Hits[p.Max-2] - top
		if dxy <= minSkipDeltaXY {
			return 0
		}
		toFace := minus - offsets[1] - top
		return findSideMask(z+toFace*-geo.AcdZNominal/dxy, &geo.AcdSideZ)

	case FaceXPS, FaceYPS:
		dxy := top - p.Hits[p.Max-2]
		if dxy <= minSkipDeltaXY {
			return 0
		}
		toFace := plus - offsets[2] - top
		return findSideMask(z+toFace*geo.AcdZNominal/dxy, &geo.AcdSideZ)
	}
	return 0
}

// findSideMask maps the Z where a track crosses a side face to the row of
// side tiles at that height. zs holds the tops of the four rows followed
// by the bottom of the last one.
func findSideMask(z int, zs *[5]int) uint32 {
	switch {
	case z >= zs[0]:
		return 0
	case z >= zs[1]:
		return 0x1f
	case z >= zs[2]:
		return 0x1f << 5
	case z >= zs[3]:
		return 0x1f << 10
	case z >= zs[4]:
		return 0x1f << 15
	}
	return 0
}
