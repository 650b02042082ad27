package util

import "math"

func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// RoundTo rounds v half away from zero to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
