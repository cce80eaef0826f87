package l2projections

// findProjection searches for seeds with the top hit in layer L and the
// other two in L-1 and L-2, extending each one found. It returns the
// number of projections created.
//
// A claimed top hit is never reused: after a seed is built the search
// moves on to the next top hit.
func (vf *viewFinder) findProjection(L int) (int, error) {
	top, mid, bot := &vf.hits[L], &vf.hits[L-1], &vf.hits[L-2]

	cnt := 0
	tops := top.Avail
	for !tops.IsEmpty() {
		ti, _ := tops.First()
		tops.Clear(ti)
		tStrip := top.Strips[ti]

		for bots := bot.Avail; !bots.IsEmpty(); {
			bi, _ := bots.First()
			bots.Clear(bi)
			bStrip := bot.Strips[bi]

			pred := project(tStrip, bStrip, vf.zfind)
			m := findMatch(mid, mid.Avail, pred, ToleranceFind)
			if !m.Found {
				continue
			}
			vf.report(L-1, StageSeed, pred, m.Strip, ToleranceFind)

			// A positive residual means the top hit pulled the prediction
			// away from the middle; look for a top that lines up better
			// with the middle and bottom.
			if m.Residual > 0 && !tops.IsEmpty() {
				better := projectDx(m.Strip, m.Strip-bStrip, int(vf.zextend&0xffff))
				if t := findMatch(top, tops, better, m.Residual); t.Found {
					vf.report(L, StageImproveTop, better, t.Strip, m.Residual)
					tops.Add(ti)
					ti, tStrip = t.Index, t.Strip
					tops.Clear(ti)
				}
			}

			p, err := vf.c.reserve()
			if err != nil {
				return cnt, err
			}
			top.Claim(ti)
			mid.Claim(m.Index)
			bot.Claim(bi)
			p.seed(vf.tower, vf.view, L, tStrip, m.Strip, bStrip, [3]int{ti, m.Index, bi})

			vf.extendUp(p, tStrip, m.Strip)
			vf.extendDown(p, m.Strip, bStrip)
			cnt++

			if !top.Available() || !mid.Available() || !bot.Available() {
				return cnt, nil
			}
			break
		}
	}
	return cnt, nil
}
