// Package util provides small numeric helpers used across the station.
package util

import "math"

// SanitizeFloat replaces NaN and infinities with zero. Autopilot streams
// occasionally carry garbage floats while sensors are still settling.
func SanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// SanitizeFloat32 is SanitizeFloat for single-precision values.
func SanitizeFloat32(v float32) float32 {
	return float32(SanitizeFloat(float64(v)))
}

// Clamp bounds v to the closed interval [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(deg float64) float64 {
	return deg * math.Pi / 180
}

// WrapPi normalizes an angle in radians to [-pi, pi).
func WrapPi(rad float64) float64 {
	for rad >= math.Pi {
		rad -= 2 * math.Pi
	}
	for rad < -math.Pi {
		rad += 2 * math.Pi
	}
	return rad
}
