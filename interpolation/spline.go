package interpolation

import "fmt"

// segment holds the cubic a*d^3 + b*d^2 + c*d + e of one spline segment in
// its local parameter d in [0, 1].
type segment struct {
	a, b, c, e float64
}

func (s segment) at(d float64) float64 {
	return ((s.a*d+s.b)*d+s.c)*d + s.e
}

// Spline is a cubic spline interpolator. Catmull-Rom and natural cubic
// splines share evaluation; they differ only in how segments are derived.
//
// Below 3 nodes no segments can be derived and the spline evaluates as a
// piecewise-linear curve. NewCatmullRom and NewNaturalSpline refuse such
// input; Empty followed by Insert passes through it.
type Spline struct {
	kind   Kind
	xs, ys []float64
	segs   []segment
}

// NewCatmullRom creates a Catmull-Rom spline through at least 3 nodes.
func NewCatmullRom(xs, ys []float64) (*Spline, error) {
	return newSpline(CatmullRomSpline, xs, ys)
}

// NewNaturalSpline creates a natural cubic spline (zero second derivative at
// both ends) through at least 3 nodes.
func NewNaturalSpline(xs, ys []float64) (*Spline, error) {
	return newSpline(NaturalCubicSpline, xs, ys)
}

func newSpline(kind Kind, xs, ys []float64) (*Spline, error) {
	if err := validate(xs, ys); err != nil {
		return nil, err
	}
	if len(xs) < 3 {
		return nil, fmt.Errorf("interpolation: %s with %d nodes: %w", kind, len(xs), ErrTooFewNodes)
	}
	sp := &Spline{kind: kind, xs: copyFloats(xs), ys: copyFloats(ys)}
	if err := sp.derive(); err != nil {
		return nil, err
	}
	return sp, nil
}

func (sp *Spline) Kind() Kind    { return sp.kind }
func (sp *Spline) Len() int      { return len(sp.xs) }
func (sp *Spline) Nodes() []Node { return toNodes(sp.xs, sp.ys) }

func (sp *Spline) Eval(x float64) (float64, Extrapolation, error) {
	if len(sp.xs) == 0 {
		return 0, InRange, ErrEmpty
	}
	if sp.segs == nil {
		v, ext := linearAt(sp.xs, sp.ys, x)
		return v, ext, nil
	}
	v, ext := evalSegments(sp.xs, sp.ys, sp.segs, x)
	return v, ext, nil
}

// Sensitivity derives the segments over the unit vector e_index and evaluates
// them at x. Both schemes are linear in the node values, so this is the exact
// partial derivative.
func (sp *Spline) Sensitivity(x float64, index int) (float64, error) {
	if len(sp.xs) == 0 {
		return 0, ErrEmpty
	}
	if index < 0 || index >= len(sp.xs) {
		return 0, fmt.Errorf("interpolation: sensitivity index %d of %d nodes: %w", index, len(sp.xs), ErrIndexOutOfRange)
	}
	if sp.segs == nil {
		return linearWeight(sp.xs, x, index), nil
	}

	unit := make([]float64, len(sp.xs))
	unit[index] = 1
	segs, err := deriveSegments(sp.kind, sp.xs, unit)
	if err != nil {
		return 0, err
	}
	v, _ := evalSegments(sp.xs, unit, segs, x)
	return v, nil
}

func (sp *Spline) Insert(x, y float64) (int, error) {
	xs, ys, idx, err := insertSorted(sp.xs, sp.ys, x, y)
	if err != nil {
		return -1, err
	}
	sp.xs, sp.ys = xs, ys
	if err := sp.derive(); err != nil {
		return -1, err
	}
	return idx, nil
}

func (sp *Spline) Clone() Interpolator {
	out := &Spline{kind: sp.kind, xs: copyFloats(sp.xs), ys: copyFloats(sp.ys)}
	if sp.segs != nil {
		out.segs = make([]segment, len(sp.segs))
		copy(out.segs, sp.segs)
	}
	return out
}

func (sp *Spline) derive() error {
	if len(sp.xs) < 3 {
		sp.segs = nil
		return nil
	}
	segs, err := deriveSegments(sp.kind, sp.xs, sp.ys)
	if err != nil {
		return err
	}
	sp.segs = segs
	return nil
}

func deriveSegments(kind Kind, xs, ys []float64) ([]segment, error) {
	switch kind {
	case CatmullRomSpline:
		return catmullRomSegments(xs, ys), nil
	case NaturalCubicSpline:
		return naturalSegments(xs, ys)
	default:
		return nil, fmt.Errorf("interpolation: %s is not a spline", kind)
	}
}

func evalSegments(xs, ys []float64, segs []segment, x float64) (float64, Extrapolation) {
	i, ext := locate(xs, x)
	switch {
	case ext == BelowRange:
		return ys[0], ext
	case ext == AboveRange:
		return ys[len(ys)-1], ext
	case xs[i] == x:
		return ys[i], ext
	}
	return segs[i-1].at(fraction(xs, i, x)), ext
}
