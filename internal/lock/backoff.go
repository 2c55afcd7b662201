package lock

import (
	"math"
	gotime "time"
)

// waitInterval returns the delay before the next acquire retry: doubling
// each attempt, capped at maxInterval.
func waitInterval(attempt uint64, baseInterval, maxInterval gotime.Duration) gotime.Duration {
	interval := gotime.Duration(math.Pow(2, float64(attempt))) * baseInterval
	if maxInterval < interval {
		return maxInterval
	}
	return interval
}
