package bond

import (
	"fmt"
	"strings"
	"time"
)

// DayCount is a day count convention for turning dates into year offsets.
type DayCount string

const (
	Act360    DayCount = "ACT/360"
	Act365F   DayCount = "ACT/365F"
	Thirty360 DayCount = "30E/360"
)

// ParseDayCount accepts the usual spellings; an empty name means ACT/365F.
func ParseDayCount(name string) (DayCount, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "ACT/365F", "ACT/365":
		return Act365F, nil
	case "ACT/360":
		return Act360, nil
	case "30E/360", "30/360":
		return Thirty360, nil
	default:
		return "", fmt.Errorf("bond: unsupported day count %q", name)
	}
}

// YearFraction is the time from start to end in years.
func (dc DayCount) YearFraction(start, end time.Time) float64 {
	switch dc {
	case Act360:
		return days(start, end) / 360.0
	case Thirty360:
		// D1 and D2 are capped at 30 (Eurobond basis).
		d1, d2 := start.Day(), end.Day()
		if d1 > 30 {
			d1 = 30
		}
		if d2 > 30 {
			d2 = 30
		}
		y1, m1 := start.Year(), int(start.Month())
		y2, m2 := end.Year(), int(end.Month())
		return float64(360*(y2-y1)+30*(m2-m1)+(d2-d1)) / 360.0
	default:
		return days(start, end) / 365.0
	}
}

func days(start, end time.Time) float64 {
	return end.Sub(start).Hours() / 24
}

// ParseDate reads a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("bond: date %q: %w", s, err)
	}
	return t, nil
}

// ToRelative re-addresses a calendar-dated bond as year offsets from
// valuation under dc. Payments on or before valuation are dropped. A set face
// value carries over.
func (b *Bond) ToRelative(valuation time.Time, dc DayCount) (*Bond, error) {
	if b.addressing == Relative {
		return nil, fmt.Errorf("bond: already %s", Relative)
	}

	cfs := make([]Cashflow, 0, len(b.cashflows))
	for _, cf := range b.cashflows {
		if !cf.Date.After(valuation) {
			continue
		}
		cf.Time = dc.YearFraction(valuation, cf.Date)
		cfs = append(cfs, cf)
	}
	if len(cfs) == 0 {
		return nil, fmt.Errorf("bond: no payments after %s: %w", valuation.Format("2006-01-02"), ErrEmptySchedule)
	}

	out, err := FromCashflows(cfs)
	if err != nil {
		return nil, err
	}
	out.face, out.hasFace = b.face, b.hasFace
	return out, nil
}
