package l2projections

import "github.com/banshee-data/latfilter/internal/lat/l1hits"

const (
	// Scale is the fixed-point scale of the Z ratios.
	Scale = 2048

	ToleranceFind    = 32
	ToleranceExtend1 = 32
	ToleranceExtend2 = 64
)

// MatchResult is the outcome of a search for the cluster nearest a
// predicted strip. The zero value means no cluster was within tolerance.
type MatchResult struct {
	Found    bool
	Index    int // slot in the layer
	Residual int // Strip - prediction
	Strip    int
}

// NoMatch is the empty MatchResult.
var NoMatch = MatchResult{}

// findMatch returns the candidate of l closest to prediction with an
// absolute residual strictly below tolerance. Candidates are visited in
// slot order, which LayerHitSet.Add keeps in increasing strip order, so
// the scan stops at the first cluster at or beyond the prediction.
func findMatch(l *l1hits.LayerHitSet, candidates l1hits.Set, prediction, tolerance int) MatchResult {
	best := NoMatch
	bestAbs := tolerance
	for w := candidates; !w.IsEmpty(); {
		i, _ := w.First()
		w.Clear(i)

		strip := l.Strips[i]
		residual := strip - prediction
		if a := abs(residual); a < bestAbs {
			best = MatchResult{Found: true, Index: i, Residual: residual, Strip: strip}
			bestAbs = a
		}
		if residual >= 0 {
			break
		}
	}
	return best
}

// project interpolates between a top and a bottom strip.
func project(top, bot, zfind int) int {
	return top + ((bot-top)*zfind+Scale/2)/Scale
}

// projectDx extrapolates from p0 by dx scaled by the ratio of layer gaps.
func projectDx(p0, dx, zextend int) int {
	return p0 + (dx*zextend+Scale/2)/Scale
}

// projectMid estimates the strip of a layer skipped between near and far.
// It weights the two ends by the extension ratio rather than by the true
// layer gaps, so the result can be off by a strip or two on steep tracks.
// The approximation is kept for bit compatibility with the flight tables.
func projectMid(near, far, zextend int) int {
	return (far*Scale + near*zextend) / (zextend + Scale)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
