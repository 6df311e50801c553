package curve

import (
	"fmt"
	"math"

	"github.com/meenmo/termstructure/interpolation"
)

// Point is one sampled tenor of a curve.
type Point struct {
	Tenor          float64 `json:"tenor"`
	Yield          float64 `json:"yield"`
	DiscountFactor float64 `json:"discount_factor"`
	Extrapolated   bool    `json:"extrapolated,omitempty"`
}

// Sample evaluates the curve every step years from step up to maxTenor. A
// non-positive maxTenor means the last node's tenor.
func (c *YieldCurve) Sample(maxTenor, step float64) ([]Point, error) {
	if c.Len() == 0 {
		return nil, ErrEmptyCurve
	}
	if !(step > 0) {
		return nil, fmt.Errorf("curve: sample step %g must be positive", step)
	}
	if maxTenor <= 0 {
		maxTenor = c.MaxTenor()
	}

	n := int(math.Floor(maxTenor/step + 1e-9))
	out := make([]Point, 0, n)
	for i := 1; i <= n; i++ {
		t := float64(i) * step
		y, ext, err := c.interp.Eval(t)
		if err != nil {
			return nil, err
		}
		out = append(out, Point{
			Tenor:          t,
			Yield:          y,
			DiscountFactor: math.Exp(-y * t),
			Extrapolated:   ext != interpolation.InRange,
		})
	}
	return out, nil
}
