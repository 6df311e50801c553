package main

import (
	"fmt"
	"log"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/curve"
	"github.com/meenmo/termstructure/interpolation"
)

func main() {
	// Par coupons (percent) by maturity, semi-annual.
	quotes := []struct {
		maturity float64
		coupon   float64
	}{
		{0.5, 2.5524458035},
		{1, 2.7225000000},
		{2, 2.8075000000},
		{3, 2.8882142857},
		{5, 3.0189285714},
		{7, 3.0889285714},
		{10, 3.1578571429},
		{15, 3.1757142857},
		{20, 3.0946428571},
	}

	bonds := make([]*bond.Bond, 0, len(quotes))
	for _, q := range quotes {
		b, err := bond.NewCoupon(q.maturity, 100, q.coupon, 2)
		if err != nil {
			log.Fatal(err)
		}
		bonds = append(bonds, b)
	}

	crv, err := curve.Bootstrap(bonds, curve.WithKind(interpolation.NaturalCubicSpline))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%8s %10s %10s %10s\n", "tenor", "zero %", "DF", "spot s.a.")
	for _, t := range []float64{0.5, 1, 2, 3, 4, 5, 7, 10, 12, 15, 20} {
		y, _, err := crv.Yield(t)
		if err != nil {
			log.Fatal(err)
		}
		df, _, err := crv.DiscountFactor(t)
		if err != nil {
			log.Fatal(err)
		}
		spot, _, err := crv.SpotRate(t, 2)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%8.2f %10.6f %10.6f %10.6f\n", t, 100*y, df, spot)
	}

	up, err := crv.ShiftRates(0.01)
	if err != nil {
		log.Fatal(err)
	}
	ten := bonds[6]
	pv, err := ten.Price(crv, 0)
	if err != nil {
		log.Fatal(err)
	}
	pvUp, err := ten.Price(up, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("10Y PV: %.6f  +1bp: %.6f  DV01: %.6f\n", pv, pvUp, pv-pvUp)
}
