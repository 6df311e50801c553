package interpolation

// catmullRomSegments derives one cubic per segment from tangents estimated
// out of neighbouring node spacing. The boundary segments only have one
// neighbour and use a one-sided ratio. Requires len(xs) >= 3.
func catmullRomSegments(xs, ys []float64) []segment {
	n := len(xs)
	segs := make([]segment, 0, n-1)

	beta := (xs[1] - xs[0]) / (xs[2] - xs[0])
	segs = append(segs, segment{
		a: (1-beta)*ys[0] - ys[1] + beta*ys[2],
		b: (beta-1)*ys[0] + ys[1] - beta*ys[2],
		c: ys[1] - ys[0],
		e: ys[0],
	})

	for i := 1; i < n-2; i++ {
		alpha := (xs[i+1] - xs[i]) / (xs[i+1] - xs[i-1])
		beta := (xs[i+1] - xs[i]) / (xs[i+2] - xs[i])

		segs = append(segs, segment{
			a: -alpha*ys[i-1] + (2-beta)*ys[i] + (alpha-2)*ys[i+1] + beta*ys[i+2],
			b: 2*alpha*ys[i-1] + (beta-3)*ys[i] + (3-2*alpha)*ys[i+1] - beta*ys[i+2],
			c: -alpha*ys[i-1] + alpha*ys[i+1],
			e: ys[i],
		})
	}

	alpha := (xs[n-1] - xs[n-2]) / (xs[n-1] - xs[n-3])
	segs = append(segs, segment{
		a: -alpha*ys[n-3] + ys[n-2] + (alpha-1)*ys[n-1],
		b: 2*alpha*ys[n-3] - 2*ys[n-2] + (2-2*alpha)*ys[n-1],
		c: -alpha*ys[n-3] + alpha*ys[n-1],
		e: ys[n-2],
	})

	return segs
}
