package l3veto

import (
	"github.com/banshee-data/latfilter/internal/lat/geometry"
	"github.com/banshee-data/latfilter/internal/lat/l2projections"
)

// Skirt regions surround the calorimeter at the skirt plane: three along
// the Y- side, one on each X side of the centre row, three along the Y+
// side.
const (
	SkirtYMXM uint32 = 1 << iota
	SkirtYMXC
	SkirtYMXP
	SkirtYCXM
	SkirtYCXP
	SkirtYPXM
	SkirtYPXC
	SkirtYPXP
)

// Regions selected by an X coordinate (left, centre, right column) and by
// a Y coordinate (bottom, centre, top row).
const (
	skirtXLeft  = SkirtYMXM | SkirtYCXM | SkirtYPXM
	skirtXMid   = SkirtYMXC | SkirtYPXC
	skirtXRight = SkirtYMXP | SkirtYCXP | SkirtYPXP

	skirtYLeft  = SkirtYMXM | SkirtYMXC | SkirtYMXP
	skirtYMid   = SkirtYCXM | SkirtYCXP
	skirtYRight = SkirtYPXM | SkirtYPXC | SkirtYPXP
)

var skirtTemplates = [2][3]uint32{
	{skirtXLeft, skirtXMid, skirtXRight},
	{skirtYLeft, skirtYMid, skirtYRight},
}

// SkirtProject extends every projection of a tower down to the skirt plane
// and returns the regions crossed by both an X and a Y projection.
func SkirtProject(geo *geometry.Geometry, tower int, x, y []l2projections.Projection) uint32 {
	var maskX, maskY uint32
	for i := range x {
		m := skirtMask(geo, tower, &x[i])
		x[i].SkirtMask = m
		maskX |= m
	}
	for i := range y {
		m := skirtMask(geo, tower, &y[i])
		y[i].SkirtMask = m
		maskY |= m
	}
	return maskX & maskY
}

func skirtMask(geo *geometry.Geometry, tower int, p *l2projections.Projection) uint32 {
	v := int(p.View)
	bot := p.Hits[p.Min]
	slope := bot - p.Hits[p.Min+1]
	pos := bot + geo.Offset(v, tower) + geo.SkirtProj[v][p.Min]*slope/geometry.Scale
	return regionMask(pos, &geo.SkirtEdges[v], &skirtTemplates[v])
}

// regionMask classifies pos against the four skirt edges. The middle
// region is open at both ends, the outer regions are closed toward the
// middle.
func regionMask(pos int, edges *[4]int, templates *[3]uint32) uint32 {
	if pos > edges[1] {
		switch {
		case pos < edges[2]:
			return templates[1]
		case pos < edges[3]:
			return templates[2]
		}
		return 0
	}
	if pos > edges[0] {
		return templates[0]
	}
	return 0
}
