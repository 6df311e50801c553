package bond

import (
	"errors"
	"time"

	"github.com/meenmo/termstructure/interpolation"
)

var (
	ErrLengthMismatch    = errors.New("times and payments must have the same length")
	ErrEmptySchedule     = errors.New("empty payment schedule")
	ErrNotAscending      = errors.New("payment times must be strictly ascending")
	ErrNegativeFrequency = errors.New("negative payment frequency")
	ErrMissingFaceValue  = errors.New("missing face value")
	ErrFaceValueSet      = errors.New("face value already set")
	ErrNotImplemented    = errors.New("not implemented")
	ErrNonConvergent     = errors.New("yield solver did not converge")
)

// Addressing tells how cash-flow times are expressed.
type Addressing int

const (
	// Relative bonds carry times as year offsets from the valuation date.
	Relative Addressing = iota
	// Absolute bonds carry calendar dates. Pricing them is not implemented.
	Absolute
)

func (a Addressing) String() string {
	if a == Absolute {
		return "absolute"
	}
	return "relative"
}

// Cashflow is a single cash payment for a bond.
//
// Relative bonds use Time (years); Absolute bonds use Date. Amounts are in
// currency units, not price-per-100.
type Cashflow struct {
	Time      float64
	Date      time.Time
	Coupon    float64
	Principal float64
}

func (c Cashflow) Amount() float64 {
	return c.Coupon + c.Principal
}

// Discounter supplies discount factors for year offsets.
type Discounter interface {
	DiscountFactor(t float64) (float64, interpolation.Extrapolation, error)
}
