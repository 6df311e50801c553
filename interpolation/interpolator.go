package interpolation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmpty is returned when an interpolator without nodes is evaluated.
	ErrEmpty = errors.New("empty interpolator")
	// ErrLengthMismatch is returned when x and y coordinates differ in length.
	ErrLengthMismatch = errors.New("x and y coordinates must have the same length")
	// ErrNotAscending is returned when x coordinates are not strictly ascending.
	ErrNotAscending = errors.New("x coordinates must be strictly ascending")
	// ErrDuplicateNode is returned when inserting an x coordinate that already exists.
	ErrDuplicateNode = errors.New("duplicate x coordinate")
	// ErrIndexOutOfRange is returned for a sensitivity request on a missing node.
	ErrIndexOutOfRange = errors.New("node index out of range")
	// ErrTooFewNodes is returned when a spline is built directly from fewer than 3 nodes.
	ErrTooFewNodes = errors.New("spline requires at least 3 nodes")
)

// Kind selects the interpolation scheme.
type Kind int

const (
	PiecewiseLinear Kind = iota
	CatmullRomSpline
	NaturalCubicSpline
)

func (k Kind) String() string {
	switch k {
	case PiecewiseLinear:
		return "pwl"
	case CatmullRomSpline:
		return "catmull-rom"
	case NaturalCubicSpline:
		return "natural-spline"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Valid reports whether k names a known scheme.
func (k Kind) Valid() bool {
	return k >= PiecewiseLinear && k <= NaturalCubicSpline
}

// ParseKind maps a configuration name to a Kind. Unrecognised names resolve to
// PiecewiseLinear with ok == false so the caller can report the fallback.
func ParseKind(name string) (kind Kind, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pwl", "linear", "piecewise-linear":
		return PiecewiseLinear, true
	case "catmull-rom", "catmullrom":
		return CatmullRomSpline, true
	case "natural-spline", "natural", "natural-cubic-spline":
		return NaturalCubicSpline, true
	default:
		return PiecewiseLinear, false
	}
}

// Extrapolation tells whether an evaluation fell inside the node range.
type Extrapolation int

const (
	InRange Extrapolation = iota
	// BelowRange means x was left of the first node; the first value was used.
	BelowRange
	// AboveRange means x was right of the last node; the last value was used.
	AboveRange
)

func (e Extrapolation) String() string {
	switch e {
	case InRange:
		return "in-range"
	case BelowRange:
		return "below-range"
	case AboveRange:
		return "above-range"
	default:
		return fmt.Sprintf("Extrapolation(%d)", int(e))
	}
}

// Node is a single (tenor, value) control point.
type Node struct {
	X float64
	Y float64
}

// Interpolator evaluates a one-dimensional curve through ordered nodes.
//
// Implementations are not safe for concurrent mutation. Clone returns a deep
// copy whose node storage and coefficients are independent of the receiver.
type Interpolator interface {
	Kind() Kind
	Len() int
	Nodes() []Node

	// Eval returns the interpolated value at x. Outside the node range the
	// nearest boundary value is returned together with the side it fell on.
	Eval(x float64) (float64, Extrapolation, error)

	// Sensitivity returns the partial derivative of Eval(x) with respect to
	// the value of the node at index.
	Sensitivity(x float64, index int) (float64, error)

	// Insert adds a node keeping x ascending and returns the index it landed at.
	Insert(x, y float64) (int, error)

	Clone() Interpolator
}

var (
	_ Interpolator = &Linear{}
	_ Interpolator = &Spline{}
)

// New builds an interpolator of the given kind from explicit coordinates.
// The slices are copied.
func New(kind Kind, xs, ys []float64) (Interpolator, error) {
	switch kind {
	case PiecewiseLinear:
		return NewLinear(xs, ys)
	case CatmullRomSpline:
		return NewCatmullRom(xs, ys)
	case NaturalCubicSpline:
		return NewNaturalSpline(xs, ys)
	default:
		return nil, fmt.Errorf("interpolation: unknown kind %s", kind)
	}
}

// Empty returns an interpolator of the given kind without nodes, meant to be
// grown with Insert. Spline kinds evaluate linearly until they hold 3 nodes.
func Empty(kind Kind) Interpolator {
	switch kind {
	case CatmullRomSpline, NaturalCubicSpline:
		return &Spline{kind: kind}
	default:
		return &Linear{}
	}
}
