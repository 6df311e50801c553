package curve_test

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/config"
	"github.com/meenmo/termstructure/curve"
	"github.com/meenmo/termstructure/interpolation"
)

const repriceTol = 1e-6

func quietLogger() *logrus.Logger {
	log, _ := logtest.NewNullLogger()
	return log
}

func mustCoupon(t *testing.T, maturity, face, rate float64, freq int) *bond.Bond {
	t.Helper()
	b, err := bond.NewCoupon(maturity, face, rate, freq)
	require.NoError(t, err)
	return b
}

func ladder(t *testing.T) []*bond.Bond {
	t.Helper()
	return []*bond.Bond{
		mustCoupon(t, 0.5, 100, 1.8, 2),
		mustCoupon(t, 1, 100, 2.0, 2),
		mustCoupon(t, 2, 100, 2.4, 2),
		mustCoupon(t, 3, 100, 2.7, 2),
		mustCoupon(t, 5, 100, 3.1, 2),
		mustCoupon(t, 7, 100, 3.3, 1),
		mustCoupon(t, 10, 100, 3.5, 1),
	}
}

func TestNew_RoundTripAtNodes(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 2, 5}, []float64{0.01, 0.02, 0.03}, interpolation.PiecewiseLinear, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	for i, tenor := range []float64{1, 2, 5} {
		y, ext, err := crv.Yield(tenor)
		require.NoError(t, err)
		assert.Equal(t, interpolation.InRange, ext)
		assert.Equal(t, []float64{0.01, 0.02, 0.03}[i], y)
	}
}

func TestNew_LengthMismatchLeavesNoCurve(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 2, 5}, []float64{0.01, 0.02}, interpolation.PiecewiseLinear)
	assert.ErrorIs(t, err, curve.ErrLengthMismatch)
	assert.Nil(t, crv)
	assert.Equal(t, 0, crv.Len())
}

func TestNew_InvalidKindFallsBack(t *testing.T) {
	t.Parallel()

	log, hook := logtest.NewNullLogger()
	crv, err := curve.New([]float64{1, 2}, []float64{0.01, 0.02}, interpolation.Kind(42), curve.WithLogger(log))
	require.NoError(t, err)

	assert.Equal(t, interpolation.PiecewiseLinear, crv.Kind())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestYield_FlatExtrapolationIsReported(t *testing.T) {
	t.Parallel()

	log, hook := logtest.NewNullLogger()
	crv, err := curve.New([]float64{1, 2, 5}, []float64{0.01, 0.02, 0.03}, interpolation.PiecewiseLinear, curve.WithLogger(log))
	require.NoError(t, err)

	y5, ext, err := crv.Yield(5)
	require.NoError(t, err)
	assert.Equal(t, interpolation.InRange, ext)
	assert.Empty(t, hook.AllEntries())

	y10, ext, err := crv.Yield(10)
	require.NoError(t, err)
	assert.Equal(t, interpolation.AboveRange, ext)
	assert.Equal(t, y5, y10)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, 10.0, hook.LastEntry().Data["tenor"])
}

func TestBootstrap_SingleBondRepricesToFace(t *testing.T) {
	t.Parallel()

	b1 := mustCoupon(t, 1, 100, 2, 1)
	crv, err := curve.Bootstrap([]*bond.Bond{b1}, curve.WithLogger(quietLogger()))
	require.NoError(t, err)
	require.Equal(t, 1, crv.Len())

	df, _, err := crv.DiscountFactor(1)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, 102*df, repriceTol)
	assert.InDelta(t, math.Log(1.02), crv.Rates()[0], 1e-10)

	pv, err := b1.Price(crv, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, pv, repriceTol)
}

func TestBootstrap_ZeroCouponParBondSolvesToZero(t *testing.T) {
	t.Parallel()

	zero, err := bond.New([]float64{4}, []float64{100})
	require.NoError(t, err)
	require.NoError(t, zero.SetFaceValue(100))

	res, err := curve.NewSolver(config.DefaultConfig.Solver, quietLogger()).Solve(interpolation.Empty(interpolation.PiecewiseLinear), zero)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.Rate, repriceTol)
	assert.Equal(t, 1, res.Iterations)
}

func TestBootstrap_LinearRepricesEveryBond(t *testing.T) {
	t.Parallel()

	bonds := ladder(t)
	crv, err := curve.Bootstrap(bonds, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, []float64{0.5, 1, 2, 3, 5, 7, 10}, crv.Tenors())
	for i, b := range bonds {
		pv, err := b.Price(crv, 0)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, pv, repriceTol, "bond %d", i)
	}
}

func TestBootstrap_SplinesRepriceLastBond(t *testing.T) {
	t.Parallel()

	for _, kind := range []interpolation.Kind{interpolation.CatmullRomSpline, interpolation.NaturalCubicSpline} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			t.Parallel()

			bonds := ladder(t)
			crv, err := curve.Bootstrap(bonds, curve.WithKind(kind), curve.WithLogger(quietLogger()))
			require.NoError(t, err)
			assert.Equal(t, kind, crv.Kind())
			assert.Equal(t, len(bonds), crv.Len())

			// Later nodes reshape earlier spline segments, so only the bond
			// solved last is guaranteed to be at par on the final curve.
			pv, err := bonds[len(bonds)-1].Price(crv, 0)
			require.NoError(t, err)
			assert.InDelta(t, 100.0, pv, repriceTol)

			for _, r := range crv.Rates() {
				assert.Greater(t, r, 0.0)
				assert.Less(t, r, 0.05)
			}
		})
	}
}

func TestBootstrap_OrderIndependent(t *testing.T) {
	t.Parallel()

	sorted := ladder(t)
	shuffled := []*bond.Bond{sorted[4], sorted[0], sorted[6], sorted[2], sorted[1], sorted[5], sorted[3]}

	a, err := curve.Bootstrap(sorted, curve.WithLogger(quietLogger()))
	require.NoError(t, err)
	b, err := curve.Bootstrap(shuffled, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	assert.Equal(t, a.Tenors(), b.Tenors())
	assert.Equal(t, a.Rates(), b.Rates())
}

func TestBootstrap_DuplicateMaturityRejected(t *testing.T) {
	t.Parallel()

	bonds := []*bond.Bond{
		mustCoupon(t, 2, 100, 3, 1),
		mustCoupon(t, 1, 100, 2, 1),
		mustCoupon(t, 2, 100, 2.5, 2),
	}
	crv, err := curve.Bootstrap(bonds, curve.WithLogger(quietLogger()))
	assert.ErrorIs(t, err, curve.ErrDuplicateMaturity)
	assert.Contains(t, err.Error(), "bonds 0 and 2")
	assert.Nil(t, crv)
}

func TestBootstrap_ZeroDerivativeIsNonConvergent(t *testing.T) {
	t.Parallel()

	worthless, err := bond.New([]float64{1}, []float64{0})
	require.NoError(t, err)
	require.NoError(t, worthless.SetFaceValue(100))

	bonds := []*bond.Bond{mustCoupon(t, 0.5, 100, 2, 2), worthless}
	crv, err := curve.Bootstrap(bonds, curve.WithLogger(quietLogger()))
	assert.ErrorIs(t, err, curve.ErrNonConvergent)
	assert.Contains(t, err.Error(), "bootstrap bond 1")
	assert.Equal(t, 0, crv.Len())
}

func TestBootstrap_IterationCap(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig.Solver
	cfg.MaxIterations = 1

	_, err := curve.Bootstrap([]*bond.Bond{mustCoupon(t, 5, 100, 4, 1)}, curve.WithSolver(cfg), curve.WithLogger(quietLogger()))
	assert.ErrorIs(t, err, curve.ErrNonConvergent)
}

func TestBootstrap_InputErrors(t *testing.T) {
	t.Parallel()

	_, err := curve.Bootstrap(nil)
	assert.ErrorIs(t, err, curve.ErrNoBonds)

	noFace, err := bond.New([]float64{1}, []float64{102})
	require.NoError(t, err)
	_, err = curve.Bootstrap([]*bond.Bond{noFace}, curve.WithLogger(quietLogger()))
	assert.ErrorIs(t, err, bond.ErrMissingFaceValue)
}

func TestSolver_DoesNotTouchBase(t *testing.T) {
	t.Parallel()

	base, err := interpolation.New(interpolation.PiecewiseLinear, []float64{1, 2}, []float64{0.02, 0.025})
	require.NoError(t, err)

	_, err = curve.NewSolver(config.DefaultConfig.Solver, quietLogger()).Solve(base, mustCoupon(t, 3, 100, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, base.Len())
}

func TestSpotRate_Conventions(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 5}, []float64{0.03, 0.03}, interpolation.PiecewiseLinear, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	simple, _, err := crv.SpotRate(2, 0)
	require.NoError(t, err)
	assert.InDelta(t, 100*(math.Exp(0.06)-1)/2, simple, 1e-12)

	semi, _, err := crv.SpotRate(2, 2)
	require.NoError(t, err)
	assert.InDelta(t, 100*(math.Exp(0.015)-1)*2, semi, 1e-12)

	_, _, err = crv.SpotRate(2, -1)
	assert.ErrorIs(t, err, curve.ErrInvalidCompounding)

	_, _, err = crv.SpotRate(0, 1)
	assert.ErrorIs(t, err, curve.ErrInvalidTenor)
}

func TestShiftRates_Parallel(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 2, 5}, []float64{0.01, 0.02, 0.03}, interpolation.NaturalCubicSpline, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	up, err := crv.ShiftRates(1)
	require.NoError(t, err)
	assert.Equal(t, interpolation.NaturalCubicSpline, up.Kind())

	for _, tenor := range []float64{1, 1.5, 3, 5} {
		base, _, err := crv.Yield(tenor)
		require.NoError(t, err)
		shifted, _, err := up.Yield(tenor)
		require.NoError(t, err)
		assert.InDelta(t, base+0.01, shifted, 1e-12, "tenor %g", tenor)
	}

	// The base curve is untouched.
	assert.Equal(t, []float64{0.01, 0.02, 0.03}, crv.Rates())
}

func TestShiftRate_SingleNode(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 2, 5}, []float64{0.01, 0.02, 0.03}, interpolation.PiecewiseLinear, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	bumped, err := crv.ShiftRate(0.5, 1)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.01, 0.025, 0.03}, bumped.Rates(), 1e-15)

	_, err = crv.ShiftRate(0.5, 3)
	assert.ErrorIs(t, err, curve.ErrIndexOutOfRange)
}

func TestShiftRates_BootstrappedSplineWithTwoNodes(t *testing.T) {
	t.Parallel()

	bonds := []*bond.Bond{mustCoupon(t, 1, 100, 2, 1), mustCoupon(t, 2, 100, 2.5, 1)}
	crv, err := curve.Bootstrap(bonds, curve.WithKind(interpolation.CatmullRomSpline), curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	up, err := crv.ShiftRates(-25)
	require.NoError(t, err)
	assert.Equal(t, 2, up.Len())

	y, _, err := up.Yield(2)
	require.NoError(t, err)
	assert.InDelta(t, crv.Rates()[1]-0.25, y, 1e-12)
}

func TestClone_Independent(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 2}, []float64{0.01, 0.02}, interpolation.PiecewiseLinear, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	cp := crv.Clone()
	rates := cp.Rates()
	rates[0] = 1
	assert.Equal(t, []float64{0.01, 0.02}, crv.Rates())
	assert.Equal(t, crv.Tenors(), cp.Tenors())
}

func TestSample(t *testing.T) {
	t.Parallel()

	crv, err := curve.New([]float64{1, 2}, []float64{0.01, 0.02}, interpolation.PiecewiseLinear, curve.WithLogger(quietLogger()))
	require.NoError(t, err)

	pts, err := crv.Sample(0, 0.5)
	require.NoError(t, err)
	require.Len(t, pts, 4)
	assert.True(t, pts[0].Extrapolated)
	assert.InDelta(t, 0.015, pts[2].Yield, 1e-15)
	assert.InDelta(t, math.Exp(-0.02*2), pts[3].DiscountFactor, 1e-15)
}

func TestParseTenor(t *testing.T) {
	t.Parallel()

	cases := map[interface{}]float64{
		"3M":  0.25,
		"10Y": 10,
		"2W":  14.0 / 365.0,
		"2.5": 2.5,
		5:     5,
		7.5:   7.5,
	}
	for in, want := range cases {
		got, err := curve.ParseTenor(in)
		require.NoError(t, err, "%v", in)
		assert.InDelta(t, want, got, 1e-15, "%v", in)
	}

	_, err := curve.ParseTenor("XY")
	assert.Error(t, err)
	_, err = curve.ParseTenor("")
	assert.Error(t, err)
}
