package bond

import (
	"fmt"
	"math"
)

// ---------------------------------------------------------------------------
// Yield to maturity (Newton-Raphson)
// ---------------------------------------------------------------------------

const (
	yieldTolerance      = 1e-6
	yieldMaxIter        = 100
	derivativeThreshold = 1e-15
)

// YieldToMaturityAtFace is YieldToMaturity priced at the bond's face value.
func (b *Bond) YieldToMaturityAtFace() (float64, error) {
	face, err := b.FaceValue()
	if err != nil {
		return 0, fmt.Errorf("bond: yield at face: %w", err)
	}
	return b.YieldToMaturity(face)
}

// YieldToMaturity returns the annualised yield in percent that discounts the
// schedule to price.
//
// Compounding frequency is inferred from the spacing of the first two
// payments. A single payment is solved in closed form with continuous
// compounding: -100 * ln(price/payment) / t.
func (b *Bond) YieldToMaturity(price float64) (float64, error) {
	if b.addressing == Absolute {
		return 0, fmt.Errorf("bond: yield of %s bonds: %w", b.addressing, ErrNotImplemented)
	}
	if price <= 0 || math.IsNaN(price) {
		return 0, fmt.Errorf("bond: price %g must be positive", price)
	}

	cfs := b.cashflows
	if len(cfs) == 1 {
		return -100 * math.Log(price/cfs[0].Amount()) / cfs[0].Time, nil
	}

	freq := math.Round(1 / (cfs[1].Time - cfs[0].Time))
	if freq < 1 {
		freq = 1
	}

	y, _, err := solveYield(price, freq, cfs)
	if err != nil {
		return 0, err
	}
	return y * 100, nil
}

// solveYield finds y such that priceAndDeriv(y) == target.
func solveYield(target, freq float64, cfs []Cashflow) (float64, int, error) {
	y := 0.0
	for iter := 0; iter < yieldMaxIter; iter++ {
		price, dPdy := priceAndDeriv(y, freq, cfs)
		if math.Abs(dPdy) < derivativeThreshold || math.IsNaN(dPdy) {
			return y, iter + 1, fmt.Errorf("bond: derivative vanished at iter %d: %w", iter, ErrNonConvergent)
		}

		next := y - (price-target)/dPdy
		if math.Abs(next-y) < yieldTolerance {
			return next, iter + 1, nil
		}
		y = next
	}
	return y, yieldMaxIter, fmt.Errorf("bond: no convergence after %d iterations: %w", yieldMaxIter, ErrNonConvergent)
}

// priceAndDeriv returns (price, dPrice/dy) under periodic compounding:
//
//	price = Σ CF_k / (1+y/f)^(f t_k)
//	dP/dy = Σ −t_k · CF_k / (1+y/f)^(f t_k + 1)
func priceAndDeriv(y, freq float64, cfs []Cashflow) (float64, float64) {
	var price, deriv float64
	base := 1 + y/freq
	for _, cf := range cfs {
		amt := cf.Amount()
		price += amt / math.Pow(base, freq*cf.Time)
		deriv -= cf.Time * amt / math.Pow(base, freq*cf.Time+1)
	}
	return price, deriv
}
