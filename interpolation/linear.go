package interpolation

import "fmt"

// Linear is a piecewise-linear interpolator with flat extrapolation.
type Linear struct {
	xs, ys []float64
}

// NewLinear creates a piecewise-linear interpolator over strictly ascending
// xs. Both slices are copied.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if err := validate(xs, ys); err != nil {
		return nil, err
	}
	return &Linear{xs: copyFloats(xs), ys: copyFloats(ys)}, nil
}

func (lin *Linear) Kind() Kind    { return PiecewiseLinear }
func (lin *Linear) Len() int      { return len(lin.xs) }
func (lin *Linear) Nodes() []Node { return toNodes(lin.xs, lin.ys) }

func (lin *Linear) Eval(x float64) (float64, Extrapolation, error) {
	if len(lin.xs) == 0 {
		return 0, InRange, ErrEmpty
	}
	v, ext := linearAt(lin.xs, lin.ys, x)
	return v, ext, nil
}

// Sensitivity is (1-alpha) for the lower bracketing node, alpha for the upper
// one and zero elsewhere. With a single node it is 1.
func (lin *Linear) Sensitivity(x float64, index int) (float64, error) {
	if len(lin.xs) == 0 {
		return 0, ErrEmpty
	}
	if index < 0 || index >= len(lin.xs) {
		return 0, fmt.Errorf("interpolation: sensitivity index %d of %d nodes: %w", index, len(lin.xs), ErrIndexOutOfRange)
	}
	return linearWeight(lin.xs, x, index), nil
}

func (lin *Linear) Insert(x, y float64) (int, error) {
	xs, ys, idx, err := insertSorted(lin.xs, lin.ys, x, y)
	if err != nil {
		return -1, err
	}
	lin.xs, lin.ys = xs, ys
	return idx, nil
}

func (lin *Linear) Clone() Interpolator {
	return &Linear{xs: copyFloats(lin.xs), ys: copyFloats(lin.ys)}
}
