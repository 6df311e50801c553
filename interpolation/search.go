package interpolation

import (
	"fmt"
	"sort"
)

// locate returns the index of the first node with x coordinate >= x.
//
// Returns (0, BelowRange) when x is left of the first node and
// (len(xs), AboveRange) when it is right of the last one. An exact hit on the
// first node is in range.
func locate(xs []float64, x float64) (int, Extrapolation) {
	idx := sort.Search(len(xs), func(i int) bool {
		return xs[i] >= x
	})

	if idx >= len(xs) {
		return idx, AboveRange
	}
	if idx == 0 && xs[0] != x {
		return 0, BelowRange
	}
	return idx, InRange
}

// fraction returns the local position of x inside segment [xs[i-1], xs[i]].
func fraction(xs []float64, i int, x float64) float64 {
	return (x - xs[i-1]) / (xs[i] - xs[i-1])
}

func validate(xs, ys []float64) error {
	if len(xs) != len(ys) {
		return fmt.Errorf("interpolation: %d x values, %d y values: %w", len(xs), len(ys), ErrLengthMismatch)
	}
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return fmt.Errorf("interpolation: x[%d]=%g after x[%d]=%g: %w", i, xs[i], i-1, xs[i-1], ErrNotAscending)
		}
	}
	return nil
}

// insertSorted places (x, y) so xs stays ascending; ys moves in lock-step.
func insertSorted(xs, ys []float64, x, y float64) ([]float64, []float64, int, error) {
	idx := sort.SearchFloat64s(xs, x)
	if idx < len(xs) && xs[idx] == x {
		return xs, ys, -1, fmt.Errorf("interpolation: insert x=%g: %w", x, ErrDuplicateNode)
	}

	xs = append(xs, 0)
	copy(xs[idx+1:], xs[idx:])
	xs[idx] = x

	ys = append(ys, 0)
	copy(ys[idx+1:], ys[idx:])
	ys[idx] = y

	return xs, ys, idx, nil
}

func copyFloats(in []float64) []float64 {
	if in == nil {
		return nil
	}
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

func toNodes(xs, ys []float64) []Node {
	out := make([]Node, len(xs))
	for i := range xs {
		out[i] = Node{X: xs[i], Y: ys[i]}
	}
	return out
}

// linearAt is the two-point blend shared by Linear and degenerate splines.
// It assumes xs is non-empty.
func linearAt(xs, ys []float64, x float64) (float64, Extrapolation) {
	i, ext := locate(xs, x)
	switch {
	case ext == BelowRange:
		return ys[0], ext
	case ext == AboveRange:
		return ys[len(ys)-1], ext
	case i == 0:
		return ys[0], ext
	}
	alpha := fraction(xs, i, x)
	return (1-alpha)*ys[i-1] + alpha*ys[i], ext
}

// linearWeight is d linearAt / d ys[k].
func linearWeight(xs []float64, x float64, k int) float64 {
	if len(xs) == 1 {
		return 1
	}
	i, ext := locate(xs, x)
	switch {
	case ext == BelowRange || i == 0:
		return indicator(k == 0)
	case ext == AboveRange:
		return indicator(k == len(xs)-1)
	}
	alpha := fraction(xs, i, x)
	switch k {
	case i - 1:
		return 1 - alpha
	case i:
		return alpha
	default:
		return 0
	}
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
