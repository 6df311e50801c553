package bond_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/interpolation"
)

// flatCurve discounts at a single continuously compounded rate.
type flatCurve float64

func (r flatCurve) DiscountFactor(t float64) (float64, interpolation.Extrapolation, error) {
	return math.Exp(-float64(r) * t), interpolation.InRange, nil
}

func TestNewCoupon_Schedule(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(2, 100, 4, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 1, 1.5, 2}, b.Times())
	assert.Equal(t, []float64{2, 2, 2, 102}, b.Payments())
	assert.Equal(t, 2.0, b.Maturity())

	face, err := b.FaceValue()
	require.NoError(t, err)
	assert.Equal(t, 100.0, face)
}

func TestNewCoupon_QuarterlyHasNoStubNearZero(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(1, 100, 2, 4)
	require.NoError(t, err)

	times := b.Times()
	require.Len(t, times, 4)
	assert.InDelta(t, 0.25, times[0], 1e-12)
	assert.Equal(t, 1.0, times[3])
}

func TestNewCoupon_BrokenFirstPeriod(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(1.75, 100, 3, 1)
	require.NoError(t, err)

	times := b.Times()
	require.Len(t, times, 2)
	assert.InDelta(t, 0.75, times[0], 1e-12)
	assert.Equal(t, 1.75, times[1])
}

func TestNewCoupon_ZeroFrequency(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(3, 100, 5, 0)
	require.NoError(t, err)

	assert.Equal(t, []float64{3}, b.Times())
	assert.Equal(t, []float64{100}, b.Payments())
}

func TestNewCoupon_NegativeFrequency(t *testing.T) {
	t.Parallel()

	_, err := bond.NewCoupon(3, 100, 5, -1)
	assert.ErrorIs(t, err, bond.ErrNegativeFrequency)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := bond.New([]float64{1, 2}, []float64{5})
	assert.ErrorIs(t, err, bond.ErrLengthMismatch)

	_, err = bond.New([]float64{2, 1}, []float64{5, 105})
	assert.ErrorIs(t, err, bond.ErrNotAscending)

	_, err = bond.New(nil, nil)
	assert.ErrorIs(t, err, bond.ErrEmptySchedule)
}

func TestFaceValue_SetOnce(t *testing.T) {
	t.Parallel()

	b, err := bond.New([]float64{1, 2}, []float64{5, 105})
	require.NoError(t, err)

	_, err = b.FaceValue()
	assert.ErrorIs(t, err, bond.ErrMissingFaceValue)

	require.NoError(t, b.SetFaceValue(100))
	face, err := b.FaceValue()
	require.NoError(t, err)
	assert.Equal(t, 100.0, face)

	assert.ErrorIs(t, b.SetFaceValue(99), bond.ErrFaceValueSet)
}

func TestPrice_FlatCurve(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(2, 100, 4, 1)
	require.NoError(t, err)

	r := 0.03
	pv, err := b.Price(flatCurve(r), 0)
	require.NoError(t, err)
	want := 4*math.Exp(-r) + 104*math.Exp(-2*r)
	assert.InDelta(t, want, pv, 1e-12)

	// Payments before the valuation offset are skipped.
	pv, err = b.Price(flatCurve(r), 1.5)
	require.NoError(t, err)
	assert.InDelta(t, 104*math.Exp(-0.5*r), pv, 1e-12)
}

func TestAbsolute_NotImplemented(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)
	b, err := bond.NewAbsolute([]time.Time{d1, d2}, []float64{3, 103})
	require.NoError(t, err)
	assert.Equal(t, bond.Absolute, b.Addressing())

	_, err = b.Price(flatCurve(0.02), 0)
	assert.ErrorIs(t, err, bond.ErrNotImplemented)

	_, err = bond.NewAbsolute([]time.Time{d2, d1}, []float64{3, 103})
	assert.ErrorIs(t, err, bond.ErrNotAscending)
}

func TestYieldToMaturity_ParBond(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(3, 100, 5, 2)
	require.NoError(t, err)

	y, err := b.YieldToMaturityAtFace()
	require.NoError(t, err)
	assert.InDelta(t, 5.0, y, 1e-6)

	y, err = b.YieldToMaturity(100)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, y, 1e-6)
}

func TestYieldToMaturity_NonPositivePrice(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(3, 100, 5, 2)
	require.NoError(t, err)

	_, err = b.YieldToMaturity(0)
	assert.ErrorContains(t, err, "must be positive")

	_, err = b.YieldToMaturity(-1)
	assert.Error(t, err)
}

func TestYieldToMaturity_SinglePayment(t *testing.T) {
	t.Parallel()

	b, err := bond.NewCoupon(2, 100, 0, 0)
	require.NoError(t, err)

	y, err := b.YieldToMaturity(95)
	require.NoError(t, err)
	assert.InDelta(t, -100*math.Log(0.95)/2, y, 1e-12)
}
