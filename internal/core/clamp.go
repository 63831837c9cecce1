// Package core provides the shared data model of the simulation: the
// snapshot, catalog records and cross-session stats. It has no external
// dependencies so every other package can build on it.
package core

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampScore restricts a doom or compliance value to [MinScore, MaxScore].
func ClampScore(val float64) float64 {
	return ClampF(val, MinScore, MaxScore)
}
