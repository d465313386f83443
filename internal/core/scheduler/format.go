package scheduler

import (
	"fmt"
	"math"
)

// FormatInterval renders a day count as a short human-readable label:
// "<1m", "30m", "5h", "3d", "2w", "6mo", "1.5y". It picks the coarsest
// unit that keeps the rounded value readable; years get one decimal, all
// other units round to the nearest integer.
func FormatInterval(days float64) string {
	minutes := days * MinutesPerDay

	switch {
	case minutes < 1:
		return "<1m"
	case minutes < 60:
		return fmt.Sprintf("%dm", int(math.Round(minutes)))
	case days < 1:
		return fmt.Sprintf("%dh", int(math.Round(minutes/60)))
	case days < 14:
		return fmt.Sprintf("%dd", int(math.Round(days)))
	case days < 60:
		return fmt.Sprintf("%dw", int(math.Round(days/7)))
	case days < 365:
		return fmt.Sprintf("%dmo", int(math.Round(days/30)))
	default:
		return fmt.Sprintf("%.1fy", days/365)
	}
}
