package util

import "math"

// RoundTo2 rounds a float to two decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}
