// Package utils contains small scalar helpers shared by the control code.
package utils

import "math"

// Sign returns -1, 0 or 1 matching the sign of x.
func Sign(x float64) float64 {
	if x == 0 {
		return 0
	}
	if math.Signbit(x) {
		return -1.0
	}
	return 1.0
}

// Clamp bounds x to [min, max].
func Clamp(x, min, max float64) float64 {
	x = math.Min(x, max)
	x = math.Max(x, min)
	return x
}

// AbsInt32 returns the absolute value of x.
func AbsInt32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}
