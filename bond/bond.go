package bond

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Bond is a fixed cash-flow schedule with a face value used as the repricing
// target. The schedule is immutable; the face value may be set once after
// construction if it was not known at build time.
type Bond struct {
	addressing Addressing
	cashflows  []Cashflow
	face       float64
	hasFace    bool
}

// New builds a Relative bond from explicit payment times and amounts. Each
// amount is stored as a coupon; callers folding redemption into the last
// payment should pass the sum.
func New(times, payments []float64) (*Bond, error) {
	if len(times) != len(payments) {
		return nil, fmt.Errorf("bond: %d times, %d payments: %w", len(times), len(payments), ErrLengthMismatch)
	}
	cfs := make([]Cashflow, len(times))
	for i := range times {
		cfs[i] = Cashflow{Time: times[i], Coupon: payments[i]}
	}
	return FromCashflows(cfs)
}

// FromCashflows builds a Relative bond from cash flows that keep coupon and
// principal apart.
func FromCashflows(cfs []Cashflow) (*Bond, error) {
	if len(cfs) == 0 {
		return nil, fmt.Errorf("bond: %w", ErrEmptySchedule)
	}
	for i := 1; i < len(cfs); i++ {
		if !(cfs[i].Time > cfs[i-1].Time) {
			return nil, fmt.Errorf("bond: time[%d]=%g after time[%d]=%g: %w", i, cfs[i].Time, i-1, cfs[i-1].Time, ErrNotAscending)
		}
	}
	out := make([]Cashflow, len(cfs))
	copy(out, cfs)
	return &Bond{addressing: Relative, cashflows: out}, nil
}

// NewAbsolute builds a calendar-dated bond. The schedule is validated and
// stored, but Price and the curve bootstrap reject it.
func NewAbsolute(dates []time.Time, payments []float64) (*Bond, error) {
	if len(dates) != len(payments) {
		return nil, fmt.Errorf("bond: %d dates, %d payments: %w", len(dates), len(payments), ErrLengthMismatch)
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("bond: %w", ErrEmptySchedule)
	}
	cfs := make([]Cashflow, len(dates))
	for i := range dates {
		if i > 0 && !dates[i].After(dates[i-1]) {
			return nil, fmt.Errorf("bond: date[%d]=%s: %w", i, dates[i].Format("2006-01-02"), ErrNotAscending)
		}
		cfs[i] = Cashflow{Date: dates[i], Coupon: payments[i]}
	}
	return &Bond{addressing: Absolute, cashflows: cfs}, nil
}

// scheduleEpsilon absorbs float noise when stepping back from maturity.
const scheduleEpsilon = 1e-9

// NewCoupon builds a flat-coupon bond.
//
// ratePercent is the annual coupon in percent (e.g. 2.5 for 2.5%) and
// frequency the number of coupons per year. Payment times step back from
// maturity by 1/frequency while they stay above zero. A zero frequency gives
// a zero-coupon bond paying the face value at maturity.
func NewCoupon(maturity, face, ratePercent float64, frequency int) (*Bond, error) {
	if frequency < 0 {
		return nil, fmt.Errorf("bond: frequency %d: %w", frequency, ErrNegativeFrequency)
	}
	if !(maturity > 0) {
		return nil, fmt.Errorf("bond: maturity %g must be positive", maturity)
	}

	if frequency == 0 {
		b, err := FromCashflows([]Cashflow{{Time: maturity, Principal: face}})
		if err != nil {
			return nil, err
		}
		b.face, b.hasFace = face, true
		return b, nil
	}

	period := 1 / float64(frequency)
	var times []float64
	for k := 0; ; k++ {
		t := maturity - float64(k)*period
		if t <= scheduleEpsilon {
			break
		}
		times = append(times, t)
	}
	sort.Float64s(times)

	coupon := (ratePercent / 100) * face / float64(frequency)
	cfs := make([]Cashflow, len(times))
	for i, t := range times {
		cfs[i] = Cashflow{Time: t, Coupon: coupon}
	}
	cfs[len(cfs)-1].Principal = face

	b, err := FromCashflows(cfs)
	if err != nil {
		return nil, err
	}
	b.face, b.hasFace = face, true
	return b, nil
}

func (b *Bond) Addressing() Addressing { return b.addressing }

// Cashflows returns a copy of the schedule.
func (b *Bond) Cashflows() []Cashflow {
	out := make([]Cashflow, len(b.cashflows))
	copy(out, b.cashflows)
	return out
}

// Payments returns the total amount paid at each time.
func (b *Bond) Payments() []float64 {
	out := make([]float64, len(b.cashflows))
	for i, cf := range b.cashflows {
		out[i] = cf.Amount()
	}
	return out
}

func (b *Bond) Times() []float64 {
	out := make([]float64, len(b.cashflows))
	for i, cf := range b.cashflows {
		out[i] = cf.Time
	}
	return out
}

// Maturity is the time of the last payment.
func (b *Bond) Maturity() float64 {
	return b.cashflows[len(b.cashflows)-1].Time
}

func (b *Bond) FaceValue() (float64, error) {
	if !b.hasFace {
		return 0, ErrMissingFaceValue
	}
	return b.face, nil
}

// SetFaceValue sets the face value once.
func (b *Bond) SetFaceValue(face float64) error {
	if b.hasFace {
		return ErrFaceValueSet
	}
	b.face, b.hasFace = face, true
	return nil
}

// Price returns the present value at year offset at of every payment made on
// or after at, discounted on curve.
func (b *Bond) Price(curve Discounter, at float64) (float64, error) {
	if b.addressing == Absolute {
		return 0, fmt.Errorf("bond: pricing %s bonds: %w", b.addressing, ErrNotImplemented)
	}

	pv := 0.0
	for _, cf := range b.cashflows {
		if cf.Time < at {
			continue
		}
		df, _, err := curve.DiscountFactor(cf.Time - at)
		if err != nil {
			return 0, fmt.Errorf("bond: discount factor at %g: %w", cf.Time-at, err)
		}
		pv += df * cf.Amount()
	}
	if math.IsNaN(pv) {
		return 0, fmt.Errorf("bond: price is NaN")
	}
	return pv, nil
}
