package geometry

import "fmt"

const (
	// NumLayers is the number of tracker layers per view.
	NumLayers = 18

	// Scale is the fixed-point scale of every Z ratio.
	Scale = 2048

	// ZScale converts millimetres to absolute Z units.
	ZScale = 10
)

// View indices into the per-view tables.
const (
	ViewX = 0
	ViewY = 1
)

// ACD face indices into Geometry.AcdFaces.
const (
	FaceXM = iota
	FaceXP
	FaceYM
	FaceYP
)

// Layout is the millimetre description of one tracker geometry.
type Layout struct {
	Name    string
	StripMM float64

	// TowerBegMM is the start of the active area of each column (X) or
	// row (Y) of towers.
	TowerBegMM   [2][4]float64
	TowerWidthMM float64

	LayerZMM   [2][NumLayers]float64
	ZNominalMM float64
	ZDeltaMM   float64

	AcdTopZMM     float64
	AcdTopEdgesMM [2][6]float64
	AcdFacesMM    [4]float64
	// AcdSideZMM holds the top of each of the four side tile rows
	// followed by the bottom of the last row.
	AcdSideZMM [5]float64

	SkirtZMM   float64
	CalEdgesMM [2]float64
}

// Geometry is the integer form of a Layout. Values are shared between
// callers and must be treated as read-only.
type Geometry struct {
	ID   ID
	Name string

	Offsets [2][4]int
	Width   int
	Z       [2][NumLayers]int

	// ZFindMaxMin packs the seed interpolation ratios, MAX in the high
	// half and MIN in the low half.
	ZFindMaxMin uint32
	// ZExtendMaxMin packs the extension ratios the same way.
	ZExtendMaxMin uint32

	AcdTopProj  [2][NumLayers]int
	AcdTopEdges [2][6]int
	AcdFaces    [4]int
	AcdSideZ    [5]int
	AcdZNominal int

	SkirtProj  [2][NumLayers]int
	SkirtEdges [2][4]int
}

// Build derives the integer tables of l.
func Build(id ID, l Layout) Geometry {
	g := Geometry{ID: id, Name: l.Name}

	for v := 0; v < 2; v++ {
		for i := range l.TowerBegMM[v] {
			g.Offsets[v][i] = XY(l.TowerBegMM[v][i], l.StripMM)
		}
		for i := range l.AcdTopEdgesMM[v] {
			g.AcdTopEdges[v][i] = XY(l.AcdTopEdgesMM[v][i], l.StripMM)
		}
		for layer, z := range l.LayerZMM[v] {
			g.Z[v][layer] = ZAbs(z)
		}
	}
	g.Width = XY(l.TowerWidthMM, l.StripMM)

	g.ZFindMaxMin = pack(zFind(l.ZNominalMM+l.ZDeltaMM, l.ZNominalMM), zFind(l.ZNominalMM-l.ZDeltaMM, l.ZNominalMM))
	g.ZExtendMaxMin = pack(zRatio(l.ZNominalMM+l.ZDeltaMM, l.ZNominalMM-l.ZDeltaMM), zRatio(l.ZNominalMM-l.ZDeltaMM, l.ZNominalMM+l.ZDeltaMM))

	for i, mm := range l.AcdFacesMM {
		g.AcdFaces[i] = XY(mm, l.StripMM)
	}
	for i, mm := range l.AcdSideZMM {
		g.AcdSideZ[i] = ZAbs(mm)
	}
	g.AcdZNominal = ZAbs(l.ZNominalMM * 2)

	for v := 0; v < 2; v++ {
		z := &l.LayerZMM[v]
		for layer := 2; layer < NumLayers; layer++ {
			g.AcdTopProj[v][layer] = zRatio(l.AcdTopZMM-z[layer], z[layer]-z[layer-1])
		}
		for layer := 0; layer < NumLayers-2; layer++ {
			g.SkirtProj[v][layer] = zRatio(z[layer]-l.SkirtZMM, z[layer+1]-z[layer])
		}
	}

	g.SkirtEdges[ViewX] = [4]int{
		g.AcdFaces[FaceXM],
		XY(l.CalEdgesMM[0], l.StripMM),
		XY(l.CalEdgesMM[1], l.StripMM),
		g.AcdFaces[FaceXP],
	}
	g.SkirtEdges[ViewY] = [4]int{
		g.AcdFaces[FaceYM],
		XY(l.CalEdgesMM[0], l.StripMM),
		XY(l.CalEdgesMM[1], l.StripMM),
		g.AcdFaces[FaceYP],
	}
	return g
}

// XY converts millimetres to strips, rounding half away from zero.
func XY(mm, strip float64) int {
	if mm > 0 {
		return int(mm/strip + 0.5)
	}
	return -int(-mm/strip + 0.5)
}

// ZAbs converts millimetres to absolute Z units.
func ZAbs(mm float64) int {
	return int(mm*ZScale + 0.5)
}

// zFind is the fraction of a two-gap span covered by a gap of span/2 mm.
func zFind(span, nominal float64) int {
	return int((span/2)*Scale/nominal + 0.5)
}

func zRatio(num, den float64) int {
	return int(num/den*Scale + 0.5)
}

func pack(hi, lo int) uint32 {
	return uint32(hi)<<16 | uint32(lo)&0xffff
}

// SwapHalves exchanges the two 16-bit ratios of a packed word.
func SwapHalves(w uint32) uint32 {
	return w<<16 | w>>16
}

// Factors returns the seed ratio and the packed extension ratios for a
// seed whose top layer is top. Adjacent layer gaps alternate between wide
// and narrow with opposite phase in the two views, so the choice depends
// on the view and the parity of the layer.
func (g *Geometry) Factors(view, top int) (zfind int, zextend uint32) {
	narrowBelow := top&1 == 1
	if view == ViewY {
		narrowBelow = !narrowBelow
	}
	if narrowBelow {
		return int(g.ZFindMaxMin & 0xffff), g.ZExtendMaxMin
	}
	return int(g.ZFindMaxMin >> 16), SwapHalves(g.ZExtendMaxMin)
}

// Offset returns the strip offset of the tower's column (X) or row (Y).
func (g *Geometry) Offset(view, tower int) int {
	if view == ViewX {
		return g.Offsets[ViewX][tower&3]
	}
	return g.Offsets[ViewY][(tower>>2)&3]
}

func (g *Geometry) String() string {
	return fmt.Sprintf("%s (id %d)", g.Name, int(g.ID))
}
