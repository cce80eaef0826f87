package geometry

const stripMM = 0.228

// InitialLayout is the design geometry the filter was first tuned on:
// ideal tower pitch and uniformly staggered layers.
func InitialLayout() Layout {
	const (
		pitch   = 374.5
		active  = 358.6 - 1.948
		zOffset = -65.804
		zNom    = 32.402
		zDelta  = 2.400
		faceMM  = 847.816
		calEdge = 728.5
	)
	l := Layout{
		Name:         "initial",
		StripMM:      stripMM,
		TowerWidthMM: active,
		ZNominalMM:   zNom,
		ZDeltaMM:     zDelta,
		AcdTopZMM:    575.248,
		AcdFacesMM:   [4]float64{-faceMM, faceMM, -faceMM, faceMM},
		SkirtZMM:     -149.446,
		CalEdgesMM:   [2]float64{-calEdge, calEdge},
	}

	beg2 := (pitch - active) / 2
	for v := 0; v < 2; v++ {
		l.TowerBegMM[v] = [4]float64{beg2 - 2*pitch, beg2 - pitch, beg2, beg2 + pitch}
	}

	for layer := 0; layer < NumLayers; layer++ {
		half := zDelta / 2
		if layer&1 == 1 {
			half = -half
		}
		base := zNom*float64(layer) + zOffset
		l.LayerZMM[ViewX][layer] = base + half
		l.LayerZMM[ViewY][layer] = base - half
	}

	widths := [5]float64{327.126, 337.126, 337.126, 337.126, 347.126}
	centers := [5]float64{-679.253, -347.126, -1.000, 327.126, 669.253}
	l.AcdTopEdgesMM[ViewX] = edgesFromCenters(widths, centers, 23.0)
	l.AcdTopEdgesMM[ViewY] = edgesFromCenters(widths, centers, 17.9)

	l.AcdSideZMM = sideRowsFromCenters(
		[4]float64{267.5, 200.0, 150.0, 150.0},
		[4]float64{482.323, 248.574, 73.573, -76.427},
	)
	return l
}

// V1R13P0Layout is the flight geometry with surveyed layer positions.
func V1R13P0Layout() Layout {
	const (
		width   = 360.6
		faceMM  = 840.14
		calEdge = 728.5
	)
	l := Layout{
		Name:         "v1r13p0",
		StripMM:      stripMM,
		TowerWidthMM: width,
		ZNominalMM:   29.775,
		ZDeltaMM:     2.127,
		AcdTopZMM:    754.6,
		AcdFacesMM:   [4]float64{-faceMM, faceMM, -faceMM, faceMM},
		SkirtZMM:     -48.21,
		CalEdgesMM:   [2]float64{-calEdge, calEdge},
		LayerZMM: [2][NumLayers]float64{
			{
				44.765, 74.335, 108.965, 139.538, 175.165, 205.738,
				241.365, 271.140, 305.965, 335.740, 370.565, 400.340,
				435.165, 464.940, 499.765, 529.540, 564.365, 594.140,
			},
			{
				42.315, 76.885, 106.435, 142.065, 172.638, 208.265,
				238.838, 273.665, 303.440, 338.265, 368.040, 402.865,
				432.640, 467.465, 497.240, 532.065, 561.840, 596.665,
			},
		},
	}

	mids := [4]float64{-561.75, -187.25, 187.25, 561.75}
	for v := 0; v < 2; v++ {
		for i, m := range mids {
			l.TowerBegMM[v][i] = m - width/2
		}
	}

	// X tiles overlap by 20 mm, Y tiles leave a 2 mm gap.
	l.AcdTopEdgesMM[ViewX] = edgesFromWidths([5]float64{355, 344, 344, 344, 355}, -20)
	l.AcdTopEdgesMM[ViewY] = edgesFromWidths([5]float64{329.67, 332, 332, 332, 329.67}, 2)

	l.AcdSideZMM = sideRowsFromTop(802.60, [4]float64{366.0, 199.46, 150.0, 135.35})
	return l
}

// edgesFromCenters returns the five tile starts and the end of the last
// tile for tiles placed at centers shifted by offset.
func edgesFromCenters(widths, centers [5]float64, offset float64) [6]float64 {
	var e [6]float64
	for i := range widths {
		e[i] = centers[i] + offset - widths[i]/2
	}
	e[5] = centers[4] + offset + widths[4]/2
	return e
}

// edgesFromWidths lays five tiles symmetrically about zero. adjust is
// added to each inner tile width and half of it to the two end tiles.
func edgesFromWidths(widths [5]float64, adjust float64) [6]float64 {
	var ew [5]float64
	for i, w := range widths {
		if i == 0 || i == 4 {
			ew[i] = w + adjust/2
		} else {
			ew[i] = w + adjust
		}
	}
	var e [6]float64
	e[2] = -ew[2] / 2
	e[3] = ew[2] / 2
	e[1] = e[2] - ew[1]
	e[0] = e[1] - ew[0]
	e[4] = e[3] + ew[3]
	e[5] = e[4] + ew[4]
	return e
}

func sideRowsFromCenters(widths, centers [4]float64) [5]float64 {
	var z [5]float64
	for i := range widths {
		z[i] = centers[i] + widths[i]/2
	}
	z[4] = centers[3] - widths[3]/2
	return z
}

func sideRowsFromTop(top float64, widths [4]float64) [5]float64 {
	var z [5]float64
	z[0] = top
	for i, w := range widths {
		z[i+1] = z[i] - w
	}
	return z
}
