package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/config"
	"github.com/meenmo/termstructure/interpolation"
)

// ErrNonConvergent is returned when the Newton iteration cannot produce a
// rate: the derivative vanished, a value went non-finite, or the iteration
// cap was exhausted.
var ErrNonConvergent = errors.New("newton iteration did not converge")

// SolveResult is the outcome of one bootstrap step.
type SolveResult struct {
	// Rate is the continuously compounded zero rate at the bond's maturity.
	Rate float64
	// Iterations is the number of Newton-Raphson steps taken.
	Iterations int
}

// Solver finds the zero rate at a bond's maturity that reprices the bond to
// its face value on top of an existing set of nodes.
type Solver struct {
	cfg config.Solver
	log logrus.FieldLogger
}

// NewSolver returns a solver using cfg. A nil logger means the standard
// logrus logger.
func NewSolver(cfg config.Solver, log logrus.FieldLogger) *Solver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Solver{cfg: cfg, log: log}
}

// Solve runs Newton-Raphson on
//
//	f(x)  = Σ exp(−r(tᵢ,x)·tᵢ)·payᵢ − face
//	f′(x) = −Σ s(tᵢ,k)·tᵢ·exp(−r(tᵢ,x)·tᵢ)·payᵢ
//
// where r and s come from a clone of base extended with (maturity, x) and k
// is the index of that node. base is never modified.
func (s *Solver) Solve(base interpolation.Interpolator, b *bond.Bond) (SolveResult, error) {
	face, err := b.FaceValue()
	if err != nil {
		return SolveResult{}, err
	}
	if b.Addressing() != bond.Relative {
		return SolveResult{}, fmt.Errorf("curve: bootstrap from %s bond: %w", b.Addressing(), bond.ErrNotImplemented)
	}

	times, payments := b.Times(), b.Payments()
	maturity := b.Maturity()

	x := s.cfg.InitialGuess
	for iter := 0; iter < s.cfg.MaxIterations; iter++ {
		f, fPrime, err := parResidual(base, maturity, x, times, payments, face)
		if err != nil {
			return SolveResult{}, err
		}

		if math.IsNaN(fPrime) || math.IsInf(fPrime, 0) || math.Abs(fPrime) <= s.cfg.DerivativeThreshold {
			return SolveResult{}, fmt.Errorf("curve: derivative %g at x=%g, iter %d: %w", fPrime, x, iter, ErrNonConvergent)
		}

		next := x - f/fPrime
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return SolveResult{}, fmt.Errorf("curve: non-finite step from x=%g, iter %d: %w", x, iter, ErrNonConvergent)
		}

		s.log.WithFields(logrus.Fields{
			"maturity": maturity,
			"iter":     iter,
			"x":        x,
			"f":        f,
			"next":     next,
		}).Debug("newton step")

		if math.Abs(next-x) < s.cfg.Tolerance {
			return SolveResult{Rate: next, Iterations: iter + 1}, nil
		}
		x = next
	}

	return SolveResult{}, fmt.Errorf("curve: maturity %g after %d iterations: %w", maturity, s.cfg.MaxIterations, ErrNonConvergent)
}

// parResidual returns f(x) and f'(x) from one hypothetical curve.
func parResidual(base interpolation.Interpolator, maturity, x float64, times, payments []float64, face float64) (float64, float64, error) {
	trial := base.Clone()
	k, err := trial.Insert(maturity, x)
	if err != nil {
		return 0, 0, fmt.Errorf("curve: candidate node at %g: %w", maturity, err)
	}

	f, fPrime := -face, 0.0
	for i, t := range times {
		r, _, err := trial.Eval(t)
		if err != nil {
			return 0, 0, err
		}
		sens, err := trial.Sensitivity(t, k)
		if err != nil {
			return 0, 0, err
		}

		pv := math.Exp(-r*t) * payments[i]
		f += pv
		fPrime -= sens * t * pv
	}
	return f, fPrime, nil
}
