package curve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/config"
	"github.com/meenmo/termstructure/interpolation"
)

var (
	ErrLengthMismatch     = errors.New("tenors and rates mismatch")
	ErrEmptyCurve         = errors.New("empty curve")
	ErrNoBonds            = errors.New("no bonds to bootstrap")
	ErrDuplicateMaturity  = errors.New("bonds share a maturity")
	ErrInvalidCompounding = errors.New("invalid compounding")
	ErrInvalidTenor       = errors.New("tenor must be positive")
	ErrIndexOutOfRange    = errors.New("bump index out of range")
)

// YieldCurve is a zero curve: continuously compounded rates at ordered
// tenors (years) and the interpolator built from exactly those nodes.
//
// A YieldCurve is immutable once constructed; shifts return new curves.
type YieldCurve struct {
	kind   interpolation.Kind
	tenors []float64
	rates  []float64
	interp interpolation.Interpolator
	log    logrus.FieldLogger
}

type options struct {
	kind   interpolation.Kind
	solver config.Solver
	log    logrus.FieldLogger
}

// Option customises curve construction.
type Option func(*options)

// WithKind selects the interpolation scheme for Bootstrap.
func WithKind(kind interpolation.Kind) Option {
	return func(o *options) { o.kind = kind }
}

// WithSolver overrides the Newton-Raphson settings used by Bootstrap.
func WithSolver(cfg config.Solver) Option {
	return func(o *options) { o.solver = cfg }
}

// WithLogger routes warnings and solver traces to log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) { o.log = log }
}

func buildOptions(opts []Option) options {
	o := options{
		kind:   interpolation.PiecewiseLinear,
		solver: config.DefaultConfig.Solver,
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New builds a curve directly from tenors and rates. An unknown kind falls
// back to piecewise-linear with a warning.
func New(tenors, rates []float64, kind interpolation.Kind, opts ...Option) (*YieldCurve, error) {
	o := buildOptions(opts)
	if len(tenors) != len(rates) {
		return nil, fmt.Errorf("curve: %d tenors, %d rates: %w", len(tenors), len(rates), ErrLengthMismatch)
	}
	if len(tenors) == 0 {
		return nil, fmt.Errorf("curve: %w", ErrEmptyCurve)
	}
	if !kind.Valid() {
		o.log.WithField("kind", kind.String()).Warn("invalid interpolator, using pwl")
		kind = interpolation.PiecewiseLinear
	}

	ts := append([]float64(nil), tenors...)
	rs := append([]float64(nil), rates...)
	ip, err := interpolation.New(kind, ts, rs)
	if err != nil {
		return nil, fmt.Errorf("curve: %w", err)
	}
	return &YieldCurve{kind: kind, tenors: ts, rates: rs, interp: ip, log: o.log}, nil
}

// Bootstrap builds a curve from bonds, one maturity at a time. Each bond
// contributes the zero rate at its maturity that reprices it to face value
// given all nodes solved before it.
//
// Bonds are ordered by maturity with a stable sort, so ties keep submission
// order; a tie is still rejected with ErrDuplicateMaturity because one tenor
// carries one rate. Any failing step aborts the whole construction.
func Bootstrap(bonds []*bond.Bond, opts ...Option) (*YieldCurve, error) {
	o := buildOptions(opts)
	if len(bonds) == 0 {
		return nil, fmt.Errorf("curve: %w", ErrNoBonds)
	}
	if !o.kind.Valid() {
		o.log.WithField("kind", o.kind.String()).Warn("invalid interpolator, using pwl")
		o.kind = interpolation.PiecewiseLinear
	}

	order, err := maturityOrder(bonds)
	if err != nil {
		return nil, err
	}

	solver := NewSolver(o.solver, o.log)
	acc := bootstrapState{interp: interpolation.Empty(o.kind)}
	for _, i := range order {
		acc, err = acc.extend(solver, bonds[i])
		if err != nil {
			return nil, fmt.Errorf("curve: bootstrap bond %d (maturity %g): %w", i, bonds[i].Maturity(), err)
		}
		o.log.WithFields(logrus.Fields{
			"bond":     i,
			"maturity": bonds[i].Maturity(),
			"rate":     acc.rates[len(acc.rates)-1],
		}).Debug("bootstrapped node")
	}

	return &YieldCurve{
		kind:   o.kind,
		tenors: acc.tenors,
		rates:  acc.rates,
		interp: acc.interp,
		log:    o.log,
	}, nil
}

// bootstrapState is the accumulator folded over the maturity-sorted bonds.
type bootstrapState struct {
	interp interpolation.Interpolator
	tenors []float64
	rates  []float64
}

func (s bootstrapState) extend(solver *Solver, b *bond.Bond) (bootstrapState, error) {
	res, err := solver.Solve(s.interp, b)
	if err != nil {
		return s, err
	}

	next := s.interp.Clone()
	if _, err := next.Insert(b.Maturity(), res.Rate); err != nil {
		return s, err
	}
	return bootstrapState{
		interp: next,
		tenors: append(append([]float64(nil), s.tenors...), b.Maturity()),
		rates:  append(append([]float64(nil), s.rates...), res.Rate),
	}, nil
}

// maturityOrder returns bond indices sorted by maturity, stable on ties.
func maturityOrder(bonds []*bond.Bond) ([]int, error) {
	order := make([]int, len(bonds))
	for i, b := range bonds {
		if b == nil {
			return nil, fmt.Errorf("curve: bond %d is nil", i)
		}
		if b.Addressing() != bond.Relative {
			return nil, fmt.Errorf("curve: bond %d is %s: %w", i, b.Addressing(), bond.ErrNotImplemented)
		}
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return bonds[order[a]].Maturity() < bonds[order[b]].Maturity()
	})

	for k := 1; k < len(order); k++ {
		prev, cur := order[k-1], order[k]
		if bonds[prev].Maturity() == bonds[cur].Maturity() {
			return nil, fmt.Errorf("curve: bonds %d and %d at %g: %w", prev, cur, bonds[cur].Maturity(), ErrDuplicateMaturity)
		}
	}
	return order, nil
}

// Yield returns the continuously compounded zero rate at tenor t. Outside the
// node range the nearest node's rate is used and the returned Extrapolation
// says which side; the condition is also logged.
func (c *YieldCurve) Yield(t float64) (float64, interpolation.Extrapolation, error) {
	if c.Len() == 0 {
		return 0, interpolation.InRange, ErrEmptyCurve
	}
	y, ext, err := c.interp.Eval(t)
	if err != nil {
		return 0, ext, err
	}
	if ext != interpolation.InRange {
		c.log.WithFields(logrus.Fields{
			"tenor": t,
			"range": ext.String(),
		}).Warn("extrapolating out of range")
	}
	return y, ext, nil
}

// DiscountFactor returns exp(-yield(t) * t).
func (c *YieldCurve) DiscountFactor(t float64) (float64, interpolation.Extrapolation, error) {
	y, ext, err := c.Yield(t)
	if err != nil {
		return 0, ext, err
	}
	return math.Exp(-y * t), ext, nil
}

// SpotRate converts the discount factor at t to a rate in percent.
//
//	compounding == 0: simple,   100 * (1/DF - 1) / t
//	compounding  > 0: periodic, 100 * (DF^(-1/(c*t)) - 1) * c
func (c *YieldCurve) SpotRate(t float64, compounding int) (float64, interpolation.Extrapolation, error) {
	if compounding < 0 {
		return 0, interpolation.InRange, fmt.Errorf("curve: compounding %d: %w", compounding, ErrInvalidCompounding)
	}
	if !(t > 0) {
		return 0, interpolation.InRange, fmt.Errorf("curve: spot rate at %g: %w", t, ErrInvalidTenor)
	}
	df, ext, err := c.DiscountFactor(t)
	if err != nil {
		return 0, ext, err
	}
	if compounding == 0 {
		return 100 * (1/df - 1) / t, ext, nil
	}
	m := float64(compounding)
	return 100 * (math.Pow(df, -1/(m*t)) - 1) * m, ext, nil
}

// ShiftRates returns a new curve with delta/100 added to every rate. delta
// is in percent, so 1 moves every rate by 0.01 and 0.01 by one basis point.
func (c *YieldCurve) ShiftRates(delta float64) (*YieldCurve, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCurve
	}
	shifted := make([]float64, len(c.rates))
	for i, r := range c.rates {
		shifted[i] = r + delta/100
	}
	return c.rebuild(shifted)
}

// ShiftRate returns a new curve with delta/100 added to the rate at index.
func (c *YieldCurve) ShiftRate(delta float64, index int) (*YieldCurve, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCurve
	}
	if index < 0 || index >= len(c.rates) {
		return nil, fmt.Errorf("curve: index %d of %d nodes: %w", index, len(c.rates), ErrIndexOutOfRange)
	}
	shifted := append([]float64(nil), c.rates...)
	shifted[index] += delta / 100
	return c.rebuild(shifted)
}

// rebuild makes a curve of the same kind over c's tenors. Bootstrapped spline
// curves may hold fewer than 3 nodes, so those are grown node by node.
func (c *YieldCurve) rebuild(rates []float64) (*YieldCurve, error) {
	tenors := append([]float64(nil), c.tenors...)

	var ip interpolation.Interpolator
	if c.kind == interpolation.PiecewiseLinear || len(tenors) >= 3 {
		var err error
		ip, err = interpolation.New(c.kind, tenors, rates)
		if err != nil {
			return nil, fmt.Errorf("curve: %w", err)
		}
	} else {
		ip = interpolation.Empty(c.kind)
		for i := range tenors {
			if _, err := ip.Insert(tenors[i], rates[i]); err != nil {
				return nil, fmt.Errorf("curve: %w", err)
			}
		}
	}
	return &YieldCurve{kind: c.kind, tenors: tenors, rates: rates, interp: ip, log: c.log}, nil
}

// Clone returns an independent copy.
func (c *YieldCurve) Clone() *YieldCurve {
	if c == nil {
		return nil
	}
	return &YieldCurve{
		kind:   c.kind,
		tenors: append([]float64(nil), c.tenors...),
		rates:  append([]float64(nil), c.rates...),
		interp: c.interp.Clone(),
		log:    c.log,
	}
}

// Len is the number of nodes; zero for a nil curve.
func (c *YieldCurve) Len() int {
	if c == nil {
		return 0
	}
	return len(c.tenors)
}

func (c *YieldCurve) Kind() interpolation.Kind { return c.kind }

// Tenors returns a copy of the node tenors.
func (c *YieldCurve) Tenors() []float64 { return append([]float64(nil), c.tenors...) }

// Rates returns a copy of the node rates.
func (c *YieldCurve) Rates() []float64 { return append([]float64(nil), c.rates...) }

// MaxTenor is the last node's tenor.
func (c *YieldCurve) MaxTenor() float64 {
	if c.Len() == 0 {
		return 0
	}
	return c.tenors[len(c.tenors)-1]
}
