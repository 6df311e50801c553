package bonds

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/meenmo/termstructure/bond"
)

// CashflowCents mirrors a cash-flow feed where coupon/principal are stored as
// integer minor units (e.g., cents for EUR) against a year offset.
type CashflowCents struct {
	Time           float64
	CouponCents    int64
	PrincipalCents int64
}

// MinorUnits is the number of minor units per currency unit for the feed.
type MinorUnits int32

const (
	Cents       MinorUnits = 2 // 1/100
	BasisPoints MinorUnits = 4 // 1/10 000, per-100 price feeds
)

func (c CashflowCents) ToCashflow(units MinorUnits) bond.Cashflow {
	exp := -int32(units)
	coupon, _ := decimal.New(c.CouponCents, exp).Float64()
	principal, _ := decimal.New(c.PrincipalCents, exp).Float64()
	return bond.Cashflow{
		Time:      c.Time,
		Coupon:    coupon,
		Principal: principal,
	}
}

func ToCashflows(in []CashflowCents, units MinorUnits) []bond.Cashflow {
	out := make([]bond.Cashflow, 0, len(in))
	for _, cf := range in {
		out = append(out, cf.ToCashflow(units))
	}
	return out
}

// FaceValue sums the principal of the feed in currency units.
func FaceValue(in []CashflowCents, units MinorUnits) float64 {
	total := decimal.Zero
	for _, cf := range in {
		total = total.Add(decimal.New(cf.PrincipalCents, -int32(units)))
	}
	f, _ := total.Float64()
	return f
}

// ToBond builds a Relative bond from the feed with the face value taken from
// its principal payments.
func ToBond(in []CashflowCents, units MinorUnits) (*bond.Bond, error) {
	b, err := bond.FromCashflows(ToCashflows(in, units))
	if err != nil {
		return nil, err
	}
	face := FaceValue(in, units)
	if face <= 0 {
		return nil, fmt.Errorf("bonds: feed carries no principal: %w", bond.ErrMissingFaceValue)
	}
	if err := b.SetFaceValue(face); err != nil {
		return nil, err
	}
	return b, nil
}
