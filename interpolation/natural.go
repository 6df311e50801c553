package interpolation

import (
	"errors"
	"fmt"
)

var errSingular = errors.New("singular tridiagonal system")

// naturalSegments solves for the second derivatives m at every node with
// m[0] = m[n-1] = 0 and rewrites each segment's cubic in its local
// parameter d = (x - xs[i]) / h:
//
//	s(d) = h^2(m1-m0)/6 d^3 + h^2 m0/2 d^2 + (y1 - y0 - h^2 m0/3 - h^2 m1/6) d + y0
func naturalSegments(xs, ys []float64) ([]segment, error) {
	n := len(xs)
	m := make([]float64, n)

	as, bs := make([]float64, n-2), make([]float64, n-2)
	cs, rs := make([]float64, n-2), make([]float64, n-2)
	for i := range rs {
		// j indexes into xs and ys.
		j := i + 1

		as[i] = (xs[j] - xs[j-1]) / 6
		bs[i] = (xs[j+1] - xs[j-1]) / 3
		cs[i] = (xs[j+1] - xs[j]) / 6
		rs[i] = (ys[j+1]-ys[j])/(xs[j+1]-xs[j]) - (ys[j]-ys[j-1])/(xs[j]-xs[j-1])
	}
	if err := triDiagAt(as, bs, cs, rs, m[1:n-1]); err != nil {
		return nil, fmt.Errorf("interpolation: natural spline: %w", err)
	}

	segs := make([]segment, n-1)
	for i := range segs {
		h := xs[i+1] - xs[i]
		h2 := h * h
		m0, m1 := m[i], m[i+1]
		segs[i] = segment{
			a: h2 * (m1 - m0) / 6,
			b: h2 * m0 / 2,
			c: ys[i+1] - ys[i] - h2*m0/3 - h2*m1/6,
			e: ys[i],
		}
	}
	return segs, nil
}

// triDiagAt solves the tridiagonal system
//
//	| b0 c0          |   | out0 |   | r0 |
//	| a1 b1 c1       |   | out1 |   | r1 |
//	|    ..          | * | ..   | = | .. |
//	|          an bn |   | outn |   | rn |
//
// in place in out. as[0] and cs[n] are ignored.
func triDiagAt(as, bs, cs, rs, out []float64) error {
	if len(as) != len(bs) || len(as) != len(cs) ||
		len(as) != len(out) || len(as) != len(rs) {
		return fmt.Errorf("tridiagonal argument lengths differ")
	}
	if len(out) == 0 {
		return nil
	}

	tmp := make([]float64, len(as))

	beta := bs[0]
	if beta == 0 {
		return errSingular
	}
	out[0] = rs[0] / beta

	for i := 1; i < len(out); i++ {
		tmp[i] = cs[i-1] / beta
		beta = bs[i] - as[i]*tmp[i]
		if beta == 0 {
			return errSingular
		}
		out[i] = (rs[i] - as[i]*out[i-1]) / beta
	}

	for i := len(out) - 2; i >= 0; i-- {
		out[i] -= tmp[i+1] * out[i+1]
	}
	return nil
}
