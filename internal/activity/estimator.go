package activity

import (
	"math"
	"sort"
	"time"
)

const (
	// GapThreshold separates work sessions. A gap between consecutive
	// commits longer than this contributes nothing to the estimate.
	GapThreshold = 2 * time.Hour

	// BaseAllowance is added once for any non-empty day.
	BaseAllowance = 0.5
)

// EstimateHours turns a day's commit timestamps into an elapsed-hours
// figure: the sum of gaps no longer than GapThreshold plus BaseAllowance,
// rounded to two decimals. Input order does not matter.
func EstimateHours(timestamps []time.Time) float64 {
	if len(timestamps) == 0 {
		return 0
	}

	sorted := append([]time.Time(nil), timestamps...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	total := 0.0
	for i := 1; i < len(sorted); i++ {
		gap := sorted[i].Sub(sorted[i-1])
		if gap <= GapThreshold {
			total += gap.Hours()
		}
	}

	return Round2(total + BaseAllowance)
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
