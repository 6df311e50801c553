// Package input decodes curvebuild's YAML documents into bonds and curve
// nodes.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/meenmo/termstructure/bond"
	"github.com/meenmo/termstructure/curve"
	"github.com/meenmo/termstructure/instruments/bonds"
	"github.com/meenmo/termstructure/interpolation"
)

const defaultFace = 100

var ErrEmptyInput = errors.New("empty input")

// Document is one curvebuild input. Bonds drive bootstrap; Curve gives nodes
// directly. Tenor fields take numbers in years or strings such as "6M".
//
//	interpolation: natural-spline
//	bonds:
//	  - {maturity: 1Y, rate: 2.0, frequency: 2}
//	  - {times: [1, 2], payments: [3, 103], face: 100}
//	  - cents: {units: 2, flows: [{time: 3, coupon: 300, principal: 10000}]}
//	  - {dates: [2026-03-15, 2027-03-15], payments: [3, 103], face: 100,
//	     settlement: 2025-09-15, day_count: 30E/360}
//	spot: {tenors: [1, 3Y], compounding: 2}
//	price: {maturity: 5, rate: 3, frequency: 2}
type Document struct {
	Interpolation string     `yaml:"interpolation"`
	Bonds         []BondSpec `yaml:"bonds"`
	Curve         *CurveSpec `yaml:"curve"`
	Spot          *SpotSpec  `yaml:"spot"`
	Price         *BondSpec  `yaml:"price"`
}

// BondSpec describes one bond in one of four forms: a flat coupon
// (maturity, rate, frequency), an explicit schedule (times, payments), a
// dated schedule (dates, payments, settlement, day_count) or a minor-unit
// cash-flow feed (cents).
type BondSpec struct {
	Maturity   interface{}   `yaml:"maturity"`
	Face       float64       `yaml:"face"`
	Rate       float64       `yaml:"rate"`
	Frequency  int           `yaml:"frequency"`
	Times      []interface{} `yaml:"times"`
	Dates      []string      `yaml:"dates"`
	Settlement string        `yaml:"settlement"`
	DayCount   string        `yaml:"day_count"`
	Payments   []float64     `yaml:"payments"`
	Cents      *CentsSpec    `yaml:"cents"`
}

type CentsSpec struct {
	Units int32      `yaml:"units"`
	Flows []FlowSpec `yaml:"flows"`
}

type FlowSpec struct {
	Time      interface{} `yaml:"time"`
	Coupon    int64       `yaml:"coupon"`
	Principal int64       `yaml:"principal"`
}

type CurveSpec struct {
	Tenors []interface{} `yaml:"tenors"`
	Rates  []interface{} `yaml:"rates"`
}

type SpotSpec struct {
	Tenors      []interface{} `yaml:"tenors"`
	Compounding int           `yaml:"compounding"`
}

// Read returns the file at path, or all of stdin when path is empty.
func Read(path string, stdin io.Reader) ([]byte, error) {
	if strings.TrimSpace(path) != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

func Parse(raw []byte) (*Document, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyInput
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &doc, nil
}

// Kind resolves the interpolation scheme: override, then the document, then
// fallback. An unknown or empty name resolves to PiecewiseLinear with ok false;
// name is the one that was looked up.
func (d *Document) Kind(override, fallback string) (kind interpolation.Kind, name string, ok bool) {
	name = override
	if name == "" {
		name = d.Interpolation
	}
	if name == "" {
		name = fallback
	}
	kind, ok = interpolation.ParseKind(name)
	return kind, name, ok
}

func (d *Document) BuildBonds() ([]*bond.Bond, error) {
	out := make([]*bond.Bond, 0, len(d.Bonds))
	for i, spec := range d.Bonds {
		b, err := spec.Build()
		if err != nil {
			return nil, fmt.Errorf("bonds[%d]: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s BondSpec) Build() (*bond.Bond, error) {
	switch {
	case s.Cents != nil:
		return s.Cents.build()
	case len(s.Times) > 0:
		times, err := tenors(s.Times)
		if err != nil {
			return nil, err
		}
		b, err := bond.New(times, s.Payments)
		if err != nil {
			return nil, err
		}
		if s.Face > 0 {
			if err := b.SetFaceValue(s.Face); err != nil {
				return nil, err
			}
		}
		return b, nil
	case len(s.Dates) > 0:
		return s.dated()
	default:
		if s.Maturity == nil {
			return nil, errors.New("bond needs maturity, times, dates or cents")
		}
		maturity, err := curve.ParseTenor(s.Maturity)
		if err != nil {
			return nil, err
		}
		face := s.Face
		if face == 0 {
			face = defaultFace
		}
		return bond.NewCoupon(maturity, face, s.Rate, s.Frequency)
	}
}

func (s BondSpec) dated() (*bond.Bond, error) {
	dates := make([]time.Time, len(s.Dates))
	for i, d := range s.Dates {
		t, err := bond.ParseDate(d)
		if err != nil {
			return nil, err
		}
		dates[i] = t
	}
	settlement, err := bond.ParseDate(s.Settlement)
	if err != nil {
		return nil, fmt.Errorf("settlement: %w", err)
	}
	dc, err := bond.ParseDayCount(s.DayCount)
	if err != nil {
		return nil, err
	}

	abs, err := bond.NewAbsolute(dates, s.Payments)
	if err != nil {
		return nil, err
	}
	if s.Face > 0 {
		if err := abs.SetFaceValue(s.Face); err != nil {
			return nil, err
		}
	}
	return abs.ToRelative(settlement, dc)
}

func (c *CentsSpec) build() (*bond.Bond, error) {
	units := bonds.MinorUnits(c.Units)
	if units == 0 {
		units = bonds.Cents
	}
	flows := make([]bonds.CashflowCents, len(c.Flows))
	for i, f := range c.Flows {
		t, err := curve.ParseTenor(f.Time)
		if err != nil {
			return nil, fmt.Errorf("flows[%d]: %w", i, err)
		}
		flows[i] = bonds.CashflowCents{Time: t, CouponCents: f.Coupon, PrincipalCents: f.Principal}
	}
	return bonds.ToBond(flows, units)
}

// Values returns the curve nodes in years and decimal rates.
func (c *CurveSpec) Values() ([]float64, []float64, error) {
	ts, err := tenors(c.Tenors)
	if err != nil {
		return nil, nil, err
	}
	rs := make([]float64, len(c.Rates))
	for i, v := range c.Rates {
		r, err := cast.ToFloat64E(v)
		if err != nil {
			return nil, nil, fmt.Errorf("rates[%d]: %w", i, err)
		}
		rs[i] = r
	}
	return ts, rs, nil
}

func (s *SpotSpec) Values() ([]float64, error) { return tenors(s.Tenors) }

func tenors(in []interface{}) ([]float64, error) {
	out := make([]float64, len(in))
	for i, v := range in {
		t, err := curve.ParseTenor(v)
		if err != nil {
			return nil, fmt.Errorf("tenor[%d]: %w", i, err)
		}
		out[i] = t
	}
	return out, nil
}
