package services

import (
	"math"
	"time"
)

// allTimeEpoch is the fixed lower bound for the "all" window. Nothing in the
// system predates it.
var allTimeEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// WindowStart maps a dashboard time window to its inclusive start instant.
// Unknown values fall back to all-time.
func WindowStart(window string, now time.Time) time.Time {
	switch window {
	case "7d":
		return now.AddDate(0, 0, -7)
	case "30d":
		return now.AddDate(0, 0, -30)
	default:
		return allTimeEpoch
	}
}

// Round1 rounds to 1 decimal, half away from zero. Used for percentages.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Round2 rounds to 2 decimals, half away from zero. Used for currency.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
