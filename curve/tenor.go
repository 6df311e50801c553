package curve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// ParseTenor converts a tenor to years. It accepts numbers (already in years)
// and strings like "1W", "3M", "10Y", "30D" or "2.5".
func ParseTenor(v interface{}) (float64, error) {
	s, ok := v.(string)
	if !ok {
		years, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, fmt.Errorf("curve: tenor %v: %w", v, err)
		}
		return years, nil
	}

	tenor := strings.TrimSpace(strings.ToUpper(s))
	if tenor == "" {
		return 0, fmt.Errorf("curve: empty tenor")
	}

	unit := tenor[len(tenor)-1]
	scale := 0.0
	switch unit {
	case 'W':
		scale = 7.0 / 365.0
	case 'M':
		scale = 1.0 / 12.0
	case 'Y':
		scale = 1.0
	case 'D':
		scale = 1.0 / 365.0
	}
	if scale == 0 {
		years, err := strconv.ParseFloat(tenor, 64)
		if err != nil {
			return 0, fmt.Errorf("curve: tenor %q: %w", s, err)
		}
		return years, nil
	}

	n, err := strconv.ParseFloat(tenor[:len(tenor)-1], 64)
	if err != nil {
		return 0, fmt.Errorf("curve: tenor %q: %w", s, err)
	}
	return n * scale, nil
}
